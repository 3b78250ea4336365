package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgetracker/engine"
	"github.com/rustyeddy/edgetracker/journal"
	"github.com/rustyeddy/edgetracker/risk"
)

func newPhaseCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Move accounts through evaluation steps",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "advance [account-id]",
		Short: "Advance an account to its next step, or to funded",
		Long: `Advance an account after its phase target has been reached.

The balance and daily starting balance restart from the starting balance.
Trades keep the phase they were recorded in.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				a, err := accountArg(e, args)
				if err != nil {
					return false, err
				}
				a, err = e.AdvancePhase(a.ID)
				if err != nil {
					return false, err
				}
				return true, rc.emit(cmd.OutOrStdout(), a, func(w io.Writer) {
					fmt.Fprintf(w, "✓ %s is now %s\n", a.Name, stageLabel(a))
					printAccount(w, a)
				})
			})
		},
	})
	return cmd
}

func newRiskCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Query the daily risk guard",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status [account-id]",
		Short: "Show today's risk guard alert for an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				a, err := accountArg(e, args)
				if err != nil {
					return false, err
				}
				st, err := e.CurrentRiskStatus(a.ID)
				if err != nil {
					return false, err
				}
				return false, rc.emit(cmd.OutOrStdout(), st, func(w io.Writer) {
					printRisk(w, st)
					if st.Severity == risk.Critical {
						fmt.Fprintln(w, "Stop trading for today.")
					}
				})
			})
		},
	})
	return cmd
}
