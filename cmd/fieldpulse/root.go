// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/fieldpulse/internal/config"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/version"
	"github.com/spf13/cobra"
)

// cli is the state shared by every subcommand once the root pre-run has
// loaded the configuration.
type cli struct {
	configPath string
	logLevel   string
	lookupEnv  config.LookupFunc

	loader *config.Loader
	cfg    config.AppConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{lookupEnv: os.LookupEnv}

	root := &cobra.Command{
		Use:           "fieldpulse",
		Short:         "Field-force retention engine",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to config file (YAML)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newServeCmd(c),
		newCatalogCmd(c),
		newConfigCmd(c),
		newTransitionCmd(c),
		newReassessCmd(c),
		newPlanCmd(c),
		newRankCmd(c),
		newBriefingCmd(c),
		newClassifyCmd(c),
		newHealthcheckCmd(),
		newVersionCmd(),
	)
	return root
}

// init loads configuration (ENV > file > defaults) and configures logging.
// Logs go to stderr so command output on stdout stays machine-readable.
func (c *cli) init(cmd *cobra.Command) error {
	path := strings.TrimSpace(c.configPath)
	if path == "" {
		if v, ok := c.lookupEnv("FIELDPULSE_CONFIG"); ok {
			path = strings.TrimSpace(v)
		}
	}
	c.loader = config.NewLoaderWithEnv(path, version.Version, c.lookupEnv)
	cfg, err := c.loader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	c.cfg = cfg

	xglog.Reset(xglog.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cmd.ErrOrStderr(),
		Service: "fieldpulse",
		Version: version.Version,
	})
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
