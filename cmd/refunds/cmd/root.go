package cmd

import (
	"fmt"
	"os"

	"github.com/Togather-Foundation/refunds/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cli holds state shared by subcommands once flags and env are resolved.
type cli struct {
	// Global flags
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg    config.Config
	logger zerolog.Logger
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:   "refunds",
		Short: "Refunds - normalize and validate refund requests against deadline policy",
		Long: `Refunds converts customer refund requests from their local time zone and
date format into UK time, then decides whether each request was registered
within the time limit for its channel and policy.

Phone requests only count from the next business-hours opening; web-app
requests count immediately. The policy (old or new) follows the customer's
sign-up date.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "policy file path (optional, uses embedded tables by default)")
	root.PersistentFlags().StringVar(&app.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&app.logFormat, "log-format", "", "log format (json, console) (default: json)")

	root.AddCommand(newValidateCommand(app))
	root.AddCommand(newTablesCommand(app))
	root.AddCommand(newVersionCommand())
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(c.envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.configPath != "" {
		cfg.PolicyFile = c.configPath
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}
	c.cfg = cfg
	c.logger = config.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	return nil
}
