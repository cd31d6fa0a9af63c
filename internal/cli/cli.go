package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/uwassert"
	"github.com/happyhackingspace/uwassert/internal/banner"
)

// CLI encapsulates the command-line interface with its dependencies.
type CLI struct {
	version     string
	verbose     bool
	silent      bool
	configFile  string
	initialized bool
	rootCmd     *cobra.Command
}

// New creates a new CLI instance with the given version string.
func New(version string) *CLI {
	c := &CLI{version: version}
	c.setupCommands()
	return c
}

// setupCommands initializes all CLI commands and their configurations.
func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:          "uwassert",
		Short:        "Clinical assertion classifier",
		Version:      c.version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.initApp()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	c.rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose/debug output")
	c.rootCmd.PersistentFlags().BoolVarP(&c.silent, "silent", "s", false, "Suppress all logging and banner")
	c.rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "Path to YAML config file (UWASSERT_* env vars also apply)")

	defaultHelp := c.rootCmd.HelpFunc()
	c.rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		c.initApp()
		defaultHelp(cmd, args)
	})

	c.rootCmd.AddCommand(c.newPredictCommand())
	c.rootCmd.AddCommand(c.newBatchCommand())
	c.rootCmd.AddCommand(c.newEvaluateCommand())
	c.rootCmd.AddCommand(c.newFeaturesCommand())
	c.rootCmd.AddCommand(c.newConfigCommand())
	c.rootCmd.AddCommand(c.newUpCommand())
}

// Run executes the CLI and returns any error.
func (c *CLI) Run() error {
	return c.rootCmd.Execute()
}

// initApp initializes logging and prints the banner.
func (c *CLI) initApp() {
	if c.initialized {
		return
	}
	c.initialized = true

	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	if c.silent {
		level = slog.Level(100)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
	if !c.silent {
		fmt.Fprint(os.Stderr, banner.Banner(c.version))
	}
}

// config loads the effective configuration from --config and the environment.
func (c *CLI) config() (uwassert.Config, error) {
	return uwassert.LoadConfig(c.configFile)
}

// loadClassifier builds a classifier from the effective configuration.
func (c *CLI) loadClassifier() (*uwassert.Classifier, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	cl, err := uwassert.New(cfg)
	if err != nil {
		return nil, err
	}
	slog.Debug("Classifier loaded", "resources", cfg.ResourceDir, "duration", time.Since(start))
	return cl, nil
}
