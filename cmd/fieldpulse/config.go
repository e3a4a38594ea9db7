// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/fieldpulse/internal/config"
	"github.com/ManuGH/fieldpulse/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate, dump and initialise configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(c), newConfigDumpCmd(c), newConfigInitCmd())
	return cmd
}

// skipInit lets a command run without the root configuration load, for
// commands that must report a broken config instead of failing on it.
func skipInit(*cobra.Command, []string) error { return nil }

func newConfigValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:               "validate [file]",
		Short:             "Validate a config file (defaults, file and environment)",
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: skipInit,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if len(args) > 0 {
				path = args[0]
			}
			if strings.TrimSpace(path) == "" {
				return errors.New("no config file given (pass a path or --config)")
			}
			loader := config.NewLoaderWithEnv(path, version.Version, c.lookupEnv)
			if _, err := loader.Load(); err != nil {
				return fmt.Errorf("configuration error in %s: %w", path, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", path)
			return err
		},
	}
}

func newConfigDumpCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg
			if cfg.Cache.RedisPassword != "" {
				cfg.Cache.RedisPassword = "***"
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(strings.TrimSpace(format)) {
			case "yaml", "yml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(cfg); err != nil {
					return fmt.Errorf("encode YAML: %w", err)
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			default:
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:               "init <file>",
		Short:             "Write a config file populated with the defaults",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: skipInit,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.NewManager(path).Save(config.Defaults()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
