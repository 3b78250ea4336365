package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgetracker/account"
	"github.com/rustyeddy/edgetracker/engine"
	"github.com/rustyeddy/edgetracker/journal"
)

func newAccountCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Create, list and select evaluation accounts",
	}
	cmd.AddCommand(
		newAccountCreateCmd(rc),
		newAccountListCmd(rc),
		newAccountSelectCmd(rc),
		newAccountShowCmd(rc),
	)
	return cmd
}

func newAccountCreateCmd(rc *RootConfig) *cobra.Command {
	var (
		cfg     account.Config
		typ     string
		targets [3]float64
		dds     [3]float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an evaluation account",
		Long: `Create an account for a funding program.

Personal and Instant programs need step 1 targets; 2-Step adds step 2 and
3-Step adds step 3.

Example:
  edgetracker account create --name "FTMO 100k" --type 2-step --balance 100000 \
    --max-dd 10 --step1-target 10 --step1-dd 5 --step2-target 5 --step2-dd 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := account.ParseType(typ)
			if err != nil {
				return err
			}
			cfg.Type = t

			steps := []**account.StepConfig{&cfg.Step1, &cfg.Step2, &cfg.Step3}
			for i := range steps {
				if cmd.Flags().Changed(fmt.Sprintf("step%d-target", i+1)) || cmd.Flags().Changed(fmt.Sprintf("step%d-dd", i+1)) {
					*steps[i] = &account.StepConfig{ProfitTarget: targets[i], DailyDrawdownLimit: dds[i]}
				}
			}

			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				a, err := e.CreateAccount(cfg)
				if err != nil {
					return false, err
				}
				return true, rc.emit(cmd.OutOrStdout(), a, func(w io.Writer) {
					fmt.Fprintln(w, "✓ Created account")
					printAccount(w, a)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&cfg.Name, "name", "n", "", "account name (required)")
	cmd.Flags().StringVarP(&typ, "type", "t", "2-step", "program type: instant, 2-step, 3-step, personal")
	cmd.Flags().Float64VarP(&cfg.StartingBalance, "balance", "b", 0, "starting balance (required)")
	cmd.Flags().Float64Var(&cfg.MaxDrawdownPercent, "max-dd", 10, "max overall drawdown percent")
	for i := 0; i < 3; i++ {
		cmd.Flags().Float64Var(&targets[i], fmt.Sprintf("step%d-target", i+1), 0, fmt.Sprintf("step %d profit target percent", i+1))
		cmd.Flags().Float64Var(&dds[i], fmt.Sprintf("step%d-dd", i+1), 0, fmt.Sprintf("step %d daily drawdown limit percent", i+1))
	}
	return cmd
}

func newAccountListCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts (* marks the selected one)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				accounts := e.Accounts()
				return false, rc.emit(cmd.OutOrStdout(), accounts, func(w io.Writer) {
					if len(accounts) == 0 {
						fmt.Fprintln(w, "No accounts yet. Create one with `edgetracker account create`.")
						return
					}
					selected := ""
					if a, ok := e.Selected(); ok {
						selected = a.ID
					}
					printAccounts(w, accounts, selected)
				})
			})
		},
	}
}

func newAccountSelectCmd(rc *RootConfig) *cobra.Command {
	var tab string

	cmd := &cobra.Command{
		Use:   "select <account-id>",
		Short: "Make an account the default target for new trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				if err := e.Select(args[0]); err != nil {
					return false, err
				}
				if tab != "" {
					e.SetTab(tab)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Selected %s\n", args[0])
				return true, nil
			})
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "", "UI tab to restore on the next load")
	return cmd
}

func newAccountShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show [account-id]",
		Short: "Show an account (default: selected)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.session(cmd.Context(), func(e *engine.Engine, _ *journal.SQLite) (bool, error) {
				a, err := accountArg(e, args)
				if err != nil {
					return false, err
				}
				return false, rc.emit(cmd.OutOrStdout(), a, func(w io.Writer) { printAccount(w, a) })
			})
		},
	}
}

// accountArg returns the account named by args[0], or the selected one.
func accountArg(e *engine.Engine, args []string) (account.Account, error) {
	if len(args) > 0 && args[0] != "" {
		return e.Account(args[0])
	}
	a, ok := e.Selected()
	if !ok {
		return account.Account{}, fmt.Errorf("no account selected: %w", engine.ErrAccountNotFound)
	}
	return a, nil
}
