package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/config"
	logpkg "github.com/kailas-cloud/pagerag/internal/logger"
	"github.com/kailas-cloud/pagerag/internal/version"
)

// cli holds state shared by every subcommand after PersistentPreRunE.
type cli struct {
	env        string
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "pagerag",
		Short:         "Page-level question answering over a clinical PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.Date),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.env, "env", "", "config environment (local, dev, docker, prod); defaults to $ENV or local")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "explicit config file path")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newExtractCmd(c),
		newIndexCmd(c),
		newAskCmd(c),
		newServeCmd(c),
	)
	return root
}

// setup loads .env, the config file and the logger.
func (c *cli) setup() error {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	if c.env == "" {
		c.env = config.GetEnv()
	}

	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.Load(c.env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := c.cfg.Logging.Level
	if c.logLevel != "" {
		level = c.logLevel
	}
	c.logger, err = logpkg.NewLogger(c.env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}
