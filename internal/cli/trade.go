package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/engine"
	"github.com/rustyeddy/edgetracker/journal"
	"github.com/rustyeddy/edgetracker/ledger"
)

func newTradeCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record, edit and query journal trades",
		Long: `Record and edit trades and query the journal.

Examples:
  edgetracker trade record --symbol EURUSD --outcome win --profit 450 --strategy ICT --model FVG
  edgetracker trade edit 01HX... --outcome loss --profit 200
  edgetracker trade today
  edgetracker trade export --format org`,
	}
	cmd.AddCommand(
		newTradeRecordCmd(rc),
		newTradeEditCmd(rc),
		newTradeListCmd(rc),
		newTradeShowCmd(rc),
		newTradeTodayCmd(rc),
		newTradeExportCmd(rc),
	)
	return cmd
}

// draftFlags are the trade fields settable from the command line.
type draftFlags struct {
	account     string
	date        string
	symbol      string
	strategy    string
	model       string
	confluences []string
	entry       float64
	stop        float64
	takeProfit  float64
	outcome     string
	profit      float64
	notes       string
}

func (f *draftFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.symbol, "symbol", "s", "", "instrument symbol")
	fs.StringVar(&f.strategy, "strategy", "", "strategy name")
	fs.StringVar(&f.model, "model", "", "entry model")
	fs.StringSliceVar(&f.confluences, "confluence", nil, "confluence (repeatable)")
	fs.StringVar(&f.date, "date", "", "trade time, RFC3339 or YYYY-MM-DD (default now)")
	fs.Float64Var(&f.entry, "entry", 0, "entry price")
	fs.Float64Var(&f.stop, "sl", 0, "stop loss price")
	fs.Float64Var(&f.takeProfit, "tp", 0, "take profit price")
	fs.StringVarP(&f.outcome, "outcome", "o", "pending", "win, loss, be or pending")
	fs.Float64VarP(&f.profit, "profit", "p", 0, "profit amount; sign follows outcome")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
}

// apply copies every flag the user set onto d.
func (f *draftFlags) apply(fs *pflag.FlagSet, d *ledger.Draft) error {
	if fs.Changed("date") {
		t, err := parseDate(f.date)
		if err != nil {
			return err
		}
		d.Date = t
	}
	if fs.Changed("outcome") {
		o, err := ledger.ParseOutcome(f.outcome)
		if err != nil {
			return err
		}
		d.Outcome = o
	}
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("symbol", func() { d.Symbol = f.symbol })
	set("strategy", func() { d.Strategy = f.strategy })
	set("model", func() { d.EntryModel = f.model })
	set("confluence", func() { d.Confluences = f.confluences })
	set("entry", func() { d.EntryPrice = f.entry })
	set("sl", func() { d.StopLoss = f.stop })
	set("tp", func() { d.TakeProfit = f.takeProfit })
	set("profit", func() { d.ProfitAmount = f.profit })
	set("notes", func() { d.Notes = f.notes })
	return nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad --date %q: want RFC3339 or YYYY-MM-DD", s)
}

// draftFromTrade seeds an edit with the trade's current values.
func draftFromTrade(t ledger.Trade) ledger.Draft {
	return ledger.Draft{
		AccountID:    t.AccountID,
		Date:         t.Date,
		Symbol:       t.Symbol,
		Strategy:     t.Strategy,
		EntryModel:   t.EntryModel,
		Confluences:  t.Confluences,
		EntryPrice:   t.EntryPrice,
		StopLoss:     t.StopLoss,
		TakeProfit:   t.TakeProfit,
		Outcome:      t.Outcome,
		ProfitAmount: t.ProfitAmount,
		Notes:        t.Notes,
	}
}

func printResult(w io.Writer, verb string, res engine.Result) {
	t := res.Trade
	fmt.Fprintf(w, "✓ %s trade %s: %s %s %.2f (phase %d)\n", verb, t.ID, t.Symbol, t.Outcome, t.ProfitAmount, t.Phase)
	fmt.Fprintf(w, "  Balance: %.2f\n", res.Account.Balance)
	printPassed(w, res.PhasePassed)
	printRisk(w, res.Risk)
}

func newTradeRecordCmd(rc *RootConfig) *cobra.Command {
	var f draftFlags

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a trade against an account (default: selected)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := ledger.Draft{AccountID: f.account}
			if err := f.apply(cmd.Flags(), &d); err != nil {
				return err
			}
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				res, err := e.RecordTrade(d)
				if err != nil {
					return false, err
				}
				return true, rc.emit(cmd.OutOrStdout(), res, func(w io.Writer) { printResult(w, "Recorded", res) })
			})
		},
	}
	cmd.Flags().StringVarP(&f.account, "account", "a", "", "account id (default: selected)")
	f.register(cmd.Flags())
	return cmd
}

func newTradeEditCmd(rc *RootConfig) *cobra.Command {
	var f draftFlags

	cmd := &cobra.Command{
		Use:   "edit <trade-id>",
		Short: "Edit a trade; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				old, err := e.Trade(args[0])
				if err != nil {
					return false, err
				}
				d := draftFromTrade(old)
				if err := f.apply(cmd.Flags(), &d); err != nil {
					return false, err
				}
				res, err := e.EditTrade(args[0], d)
				if err != nil {
					return false, err
				}
				return true, rc.emit(cmd.OutOrStdout(), res, func(w io.Writer) { printResult(w, "Edited", res) })
			})
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newTradeListCmd(rc *RootConfig) *cobra.Command {
	var accountID string
	var phase int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades in record order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				trades := e.Trades()
				if accountID != "" {
					trades = ledger.ForAccount(trades, accountID)
				}
				if phase > 0 {
					trades = filterPhase(trades, phase)
				}
				return false, rc.emit(cmd.OutOrStdout(), trades, func(w io.Writer) { printTrades(w, trades) })
			})
		},
	}
	cmd.Flags().StringVarP(&accountID, "account", "a", "", "only this account")
	cmd.Flags().IntVar(&phase, "phase", 0, "only this phase (1-3, 4 = funded)")
	return cmd
}

func filterPhase(trades []ledger.Trade, phase int) []ledger.Trade {
	var out []ledger.Trade
	for _, t := range trades {
		if t.Phase == phase {
			out = append(out, t)
		}
	}
	return out
}

func newTradeShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show a stored trade as an Org-mode entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rc.openStore()
			if err != nil {
				return err
			}
			defer j.Close()

			t, err := j.GetTrade(cmd.Context(), rc.cfg.User, args[0])
			if err != nil {
				return fmt.Errorf("get trade: %w", err)
			}
			return rc.emit(cmd.OutOrStdout(), t, func(w io.Writer) { fmt.Fprint(w, journal.FormatTradeOrg(t)) })
		},
	}
}

func newTradeTodayCmd(rc *RootConfig) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "today [account-id]",
		Short: "List an account's trades for the current UTC day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if day == "" {
				day = account.Day(time.Now())
			}
			return rc.session(cmd.Context(), func(e *engine.Engine, j *journal.SQLite) (bool, error) {
				a, err := accountArg(e, args)
				if err != nil {
					return false, err
				}
				trades, err := j.ListTradesOnDay(cmd.Context(), rc.cfg.User, a.ID, day)
				if err != nil {
					return false, err
				}
				return false, rc.emit(cmd.OutOrStdout(), trades, func(w io.Writer) {
					if len(trades) == 0 {
						fmt.Fprintf(w, "No trades for %s on %s\n", a.Name, day)
						return
					}
					printTrades(w, trades)
				})
			})
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "UTC day YYYY-MM-DD (default today)")
	return cmd
}

func newTradeExportCmd(rc *RootConfig) *cobra.Command {
	var (
		accountID string
		format    string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades as CSV or Org-mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "csv" && format != "org" {
				return fmt.Errorf("--format must be csv or org")
			}

			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				trades := e.Trades()
				if accountID != "" {
					trades = ledger.ForAccount(trades, accountID)
				}

				w := cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return false, err
					}
					defer f.Close()
					w = f
				}

				if format == "org" {
					_, err := io.WriteString(w, journal.FormatTradesOrg(trades))
					return false, err
				}
				return false, journal.WriteTradesCSV(w, trades)
			})
		},
	}
	cmd.Flags().StringVarP(&accountID, "account", "a", "", "only this account")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or org")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}
