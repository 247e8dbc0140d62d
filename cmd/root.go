package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alesfias96/student-performance-ai/internal/config"
	"github.com/alesfias96/student-performance-ai/internal/logging"
	"github.com/alesfias96/student-performance-ai/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studentperf",
	Short: "Diagnose student performance and recommend practice",
	Long: `studentperf scores answer records per student and topic, classifies each
student's level and strengths, and produces explained, prioritized practice
recommendations. Without a subcommand it runs on a synthetic cohort.`,
	SilenceUsage: true,
	RunE:         runSimulated,
}

// Execute runs the root command. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to YAML config file (overrides "+config.EnvConfigPath+" env var)")
	pf.String("db", "", "Path to SQLite database file (overrides STUDENTPERF_DB env var)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Also write JSON logs to this rotating file")

	addRunFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then STUDENTPERF_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// loadConfig reads --config (or its env var) over the defaults and applies
// the environment overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the command logger. The caller syncs it.
func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	file, _ := cmd.Flags().GetString("log-file")
	log, err := logging.New(logging.Options{Level: level, File: file, Console: cmd.ErrOrStderr()})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// setup loads config and the logger shared by every data command.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := newLogger(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func mkdirOut(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}
