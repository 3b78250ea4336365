package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgetracker/config"
)

func newConfigCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  edgetracker config init -o edgetracker.yaml
  edgetracker config validate -f edgetracker.yaml`,
	}

	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Created default configuration: %s\n", output)
			fmt.Fprintf(w, "  edgetracker --config %s account list\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "edgetracker.yaml", "output config file path")

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(w, "  User:    %s\n", cfg.User)
			fmt.Fprintf(w, "  Journal: %s\n", cfg.Journal.DBPath)
			fmt.Fprintf(w, "  Limits:  %d trades/day, %d losses/day, %d loss streak\n",
				cfg.RiskLimits.MaxTradesPerDay, cfg.RiskLimits.MaxLossesPerDay, cfg.RiskLimits.MaxConsecutiveLosses)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
