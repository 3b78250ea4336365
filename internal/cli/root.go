package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/edgetracker/config"
	"github.com/rustyeddy/edgetracker/engine"
	"github.com/rustyeddy/edgetracker/journal"
	"github.com/rustyeddy/edgetracker/pkg/id"
	"github.com/rustyeddy/edgetracker/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// RootConfig holds the persistent flags shared by every subcommand.
type RootConfig struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	User       string
	Pretty     bool
	JSON       bool

	cfg *config.Config
	log zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "edgetracker",
		Short:         "Edgetracker: funding evaluation journal and risk guard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite journal database (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&rc.User, "user", "", "Workspace owner (overrides config)")
	cmd.PersistentFlags().BoolVar(&rc.Pretty, "pretty", false, "Human friendly log output")
	cmd.PersistentFlags().BoolVar(&rc.JSON, "json", false, "Print results as JSON")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return rc.load(cmd)
	}

	cmd.AddCommand(
		newAccountCmd(rc),
		newTradeCmd(rc),
		newPhaseCmd(rc),
		newRiskCmd(rc),
		newReportCmd(rc),
		newCalcCmd(rc),
		newConfigCmd(rc),
		newServeCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "edgetracker (%s)\n", Version)
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// load resolves configuration in order: defaults, config file,
// environment, then explicit flags.
func (rc *RootConfig) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if rc.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(rc.ConfigPath); err != nil {
			return err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Journal.DBPath = rc.DBPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = rc.LogLevel
	}
	if flags.Changed("user") {
		cfg.User = rc.User
	}
	if flags.Changed("pretty") {
		cfg.Log.Pretty = rc.Pretty
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rc.cfg = cfg
	rc.log = logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Out:    cmd.ErrOrStderr(),
	})
	logger.SetGlobalLogger(rc.log)
	return nil
}

func (rc *RootConfig) engineOptions() (engine.Options, error) {
	ids, err := id.ForScheme(rc.cfg.Engine.IDScheme)
	if err != nil {
		return engine.Options{}, err
	}
	opts := engine.DefaultOptions()
	opts.IDs = ids
	opts.ReevaluateOnEdit = rc.cfg.Engine.ReevaluateOnEdit
	opts.RiskLimits = rc.cfg.RiskLimits
	return opts, nil
}

func (rc *RootConfig) openStore() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(rc.cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

// session loads the user's workspace, runs fn against an engine built
// over it, and saves the workspace back when fn reports a change.
func (rc *RootConfig) session(ctx context.Context, fn func(e *engine.Engine, j *journal.SQLite) (bool, error)) error {
	j, err := rc.openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	ws, err := j.Load(ctx, rc.cfg.User)
	if err != nil {
		return err
	}
	opts, err := rc.engineOptions()
	if err != nil {
		return err
	}
	e := engine.New(ws, opts)

	mutated, err := fn(e, j)
	if err != nil || !mutated {
		return err
	}
	if err := j.Save(ctx, rc.cfg.User, e.Snapshot()); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}

// emit prints v as JSON when --json is set, otherwise runs text.
func (rc *RootConfig) emit(w io.Writer, v any, text func(w io.Writer)) error {
	if rc.JSON {
		return writeJSON(w, v)
	}
	text(w)
	return nil
}
