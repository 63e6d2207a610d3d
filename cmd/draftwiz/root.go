package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/draftwizard"
	"github.com/aretw0/draftwizard/internal/cli"
	"github.com/aretw0/draftwizard/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "draftwiz",
	Short: "draftwiz manages campaign drafts for the ad wizard",
	Long: `draftwiz serves the campaign draft wizard over HTTP and inspects the drafts it
has persisted. Settings come from DRAFTWIZ_* environment variables; flags override them.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("store", "", "Draft store: memory, file or redis")
	rootCmd.PersistentFlags().String("dir", "", "Directory of the file store")
	rootCmd.PersistentFlags().String("redis-addr", "", "Address of the redis store")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store, _ = flags.GetString("store")
	}
	if flags.Changed("dir") {
		cfg.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	return cfg, cfg.Validate()
}

// setup builds the logger and wizard for a command, exiting on failure.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, *draftwizard.Wizard) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger := cli.NewLogger(cfg)
	wiz, err := cli.BuildWizard(cfg, logger)
	if err != nil {
		fmt.Printf("Error initializing draftwiz: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, wiz
}
