package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgetracker/risk"
)

func newCalcCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Position sizing helpers",
	}
	cmd.AddCommand(newCalcLotsCmd(rc), newCalcRiskCmd(rc))
	return cmd
}

func newCalcLotsCmd(rc *RootConfig) *cobra.Command {
	var (
		in   risk.Inputs
		pair string
	)

	cmd := &cobra.Command{
		Use:   "lots",
		Short: "Lot size for a fixed percent risk",
		Long: `Size a position so that a stop-out loses --risk percent of --balance.

Example:
  edgetracker calc lots --balance 100000 --risk 0.5 --entry 1.0850 --sl 1.0830 --tp 1.0910`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := risk.ParsePairType(pair)
			if err != nil {
				return err
			}
			in.Pair = p
			if in.Balance <= 0 {
				return fmt.Errorf("invalid --balance")
			}
			if in.RiskPct <= 0 || in.RiskPct > 100 {
				return fmt.Errorf("invalid --risk (got %v)", in.RiskPct)
			}
			if in.EntryPrice == in.StopPrice {
				return fmt.Errorf("--entry and --sl must differ")
			}

			res := risk.LotSize(in)
			return rc.emit(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "Lots:     %.2f (%.0f units)\n", res.Lots, res.Units)
				fmt.Fprintf(w, "Stop:     %.1f pips\n", res.StopPips)
				fmt.Fprintf(w, "Risk:     %.2f\n", res.RiskAmount)
				if res.RR > 0 {
					fmt.Fprintf(w, "Reward:   %.2f (R:R %.2f)\n", res.RewardAmount, res.RR)
				}
			})
		},
	}
	cmd.Flags().Float64VarP(&in.Balance, "balance", "b", 0, "account balance")
	cmd.Flags().Float64VarP(&in.RiskPct, "risk", "r", 1, "risk percent per trade")
	cmd.Flags().Float64Var(&in.EntryPrice, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&in.StopPrice, "sl", 0, "stop loss price")
	cmd.Flags().Float64Var(&in.TakeProfit, "tp", 0, "take profit price (optional)")
	cmd.Flags().StringVar(&pair, "pair", "standard", "pair type: standard, jpy, gold, crypto")
	return cmd
}

func newCalcRiskCmd(rc *RootConfig) *cobra.Command {
	var units, entry, stop, rate, balance float64

	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Cash and percent at risk for an existing position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cash := risk.PlannedRisk(units, entry, stop, rate)
			pct := risk.RiskPct(cash, balance) * 100
			out := struct {
				Risk    float64 `json:"risk"`
				Percent float64 `json:"percent"`
			}{cash, pct}
			return rc.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "Risk: %.2f (%.2f%% of %.2f)\n", cash, pct, balance)
			})
		},
	}
	cmd.Flags().Float64Var(&units, "units", 0, "position size in units")
	cmd.Flags().Float64Var(&entry, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&stop, "sl", 0, "stop loss price")
	cmd.Flags().Float64Var(&rate, "rate", 1, "quote to account currency rate")
	cmd.Flags().Float64VarP(&balance, "balance", "b", 0, "account balance")
	return cmd
}
