package main

import (
	"fmt"
	"os"

	"github.com/rsclarke/citybus/internal/client"
	"github.com/rsclarke/citybus/internal/config"
	"github.com/spf13/cobra"
)

type clientConfig struct {
	configPath string
	appVersion int
	dbURL      string
	liveURL    string
	outDir     string
	extractor  string
	ledger     string
}

func addClientFlags(cmd *cobra.Command, cfg *clientConfig) {
	cmd.Flags().StringVar(&cfg.configPath, "config", os.Getenv("CITYBUS_CONFIG"), "path to a YAML config file")
	cmd.Flags().IntVar(&cfg.appVersion, "app-version", 0, "app version sent as the v parameter")
	cmd.Flags().StringVar(&cfg.dbURL, "db-url", "", "database API base URL")
	cmd.Flags().StringVar(&cfg.liveURL, "live-url", "", "live positions API base URL")
	cmd.Flags().StringVar(&cfg.outDir, "out", "", "directory for downloaded archives")
	cmd.Flags().StringVar(&cfg.extractor, "extractor", "", "7-Zip compatible binary")
	cmd.Flags().StringVar(&cfg.ledger, "ledger", "", "SQLite file recording fetch history")
}

// load merges flags over the file and environment configuration.
func (cfg *clientConfig) load() (config.Config, error) {
	c, err := config.Load(cfg.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.appVersion != 0 {
		c.AppVersion = cfg.appVersion
	}
	if cfg.dbURL != "" {
		c.DBBaseURL = cfg.dbURL
	}
	if cfg.liveURL != "" {
		c.LiveBaseURL = cfg.liveURL
	}
	if cfg.outDir != "" {
		c.OutputDir = cfg.outDir
	}
	if cfg.extractor != "" {
		c.Extractor = cfg.extractor
	}
	if cfg.ledger != "" {
		c.LedgerPath = cfg.ledger
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

func (cfg *clientConfig) newClient() (*client.Client, config.Config, error) {
	c, err := cfg.load()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return client.NewClient(c, logger), c, nil
}
