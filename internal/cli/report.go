package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgetracker/engine"
	"github.com/rustyeddy/edgetracker/journal"
	"github.com/rustyeddy/edgetracker/ledger"
	"github.com/rustyeddy/edgetracker/report"
)

func newReportCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Dashboard, strategy matrix and P/L calendar",
	}
	cmd.AddCommand(
		newReportSummaryCmd(rc),
		newReportStrategiesCmd(rc),
		newReportCalendarCmd(rc),
	)
	return cmd
}

func newReportSummaryCmd(rc *RootConfig) *cobra.Command {
	var (
		phase int
		org   bool
		notes []string
	)

	cmd := &cobra.Command{
		Use:   "summary [account-id]",
		Short: "Phase dashboard for an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				a, err := accountArg(e, args)
				if err != nil {
					return false, err
				}
				now := time.Now()
				s := report.Summarize(a, e.Trades(), phase, now)
				w := cmd.OutOrStdout()

				if org {
					pr := report.PhaseReport{
						Summary:    s,
						Strategies: report.Strategies(ledger.InPhase(e.Trades(), a.ID, s.Phase), ""),
						Created:    now,
						Notes:      notes,
					}
					return false, pr.WriteOrg(w)
				}
				return false, rc.emit(w, s, func(w io.Writer) { printSummary(w, s) })
			})
		},
	}
	cmd.Flags().IntVar(&phase, "phase", 0, "phase to report (default: current)")
	cmd.Flags().BoolVar(&org, "org", false, "render an Org-mode review entry")
	cmd.Flags().StringArrayVar(&notes, "note", nil, "observation for the Org review (repeatable)")
	return cmd
}

func printSummary(w io.Writer, s report.Summary) {
	label := fmt.Sprintf("Phase %d", s.Phase)
	if s.Phase == 4 {
		label = "Funded"
	}
	fmt.Fprintf(w, "%s: %s\n", s.AccountName, label)
	fmt.Fprintf(w, "  P/L:           %.2f / %.2f (%.0f%%)\n", s.PnL, s.ProfitTarget, s.Progress)
	fmt.Fprintf(w, "  Today:         %.2f (max daily loss %.2f)\n", s.TodayPnL, s.MaxDailyLoss)
	fmt.Fprintf(w, "  Drawdown:      %.2f (max %.2f)\n", s.CurrentDrawdown, s.MaxDrawdown)
	fmt.Fprintf(w, "  Trades:        %d (%d W / %d L / %d BE), win rate %.0f%%\n", s.Trades, s.Wins, s.Losses, s.BreakEvens, s.WinRate)
	fmt.Fprintf(w, "  Avg win/loss:  %.2f / %.2f\n", s.AvgWin, s.AvgLoss)
	if s.CanAdvance {
		fmt.Fprintf(w, "  Target reached: run `edgetracker phase advance %s`\n", s.AccountID)
	}
}

func newReportStrategiesCmd(rc *RootConfig) *cobra.Command {
	var accountID, model string

	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Strategy and entry model performance, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				trades := e.Trades()
				if accountID != "" {
					trades = ledger.ForAccount(trades, accountID)
				}
				stats := report.Strategies(trades, model)
				return false, rc.emit(cmd.OutOrStdout(), stats, func(w io.Writer) {
					if len(stats) == 0 {
						fmt.Fprintf(w, "No trades. Models: %v\n", report.Models(trades))
						return
					}
					for _, s := range stats {
						fmt.Fprintf(w, "%-20s %-12s %3d trades  %5.1f%% win  %10.2f  %.2f avg R:R\n",
							s.Strategy, s.EntryModel, s.Trades, s.WinRate, s.PnL, s.AvgRR)
					}
				})
			})
		},
	}
	cmd.Flags().StringVarP(&accountID, "account", "a", "", "only this account")
	cmd.Flags().StringVar(&model, "model", "", "only this entry model")
	return cmd
}

func newReportCalendarCmd(rc *RootConfig) *cobra.Command {
	var accountID, month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Daily and weekly P/L for a UTC month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now().UTC()
			if month != "" {
				m, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("bad --month %q: want YYYY-MM", month)
				}
				at = m
			}

			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				trades := e.Trades()
				if accountID != "" {
					trades = ledger.ForAccount(trades, accountID)
				}
				cal := report.Calendar(trades, at.Year(), at.Month())
				return false, rc.emit(cmd.OutOrStdout(), cal, func(w io.Writer) { printCalendar(w, cal) })
			})
		},
	}
	cmd.Flags().StringVarP(&accountID, "account", "a", "", "only this account")
	cmd.Flags().StringVar(&month, "month", "", "month YYYY-MM (default current)")
	return cmd
}

func printCalendar(w io.Writer, m report.Month) {
	fmt.Fprintf(w, "%s %d  (%d trades, %.2f)\n", m.Month, m.Year, m.Trades, m.PnL)
	fmt.Fprintln(w, "      Sun       Mon       Tue       Wed       Thu       Fri       Sat  |      Week")
	for _, wk := range m.Weeks {
		for _, d := range wk.Days {
			switch {
			case d == nil:
				fmt.Fprintf(w, "%10s", "")
			case d.Trades == 0:
				fmt.Fprintf(w, "%4d%6s", d.Day, "")
			default:
				fmt.Fprintf(w, "%2d%8.0f", d.Day, d.PnL)
			}
		}
		fmt.Fprintf(w, "  |%10.2f\n", wk.PnL)
	}
}
