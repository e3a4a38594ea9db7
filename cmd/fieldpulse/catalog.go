// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
)

func newCatalogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate playbook catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd(c), newCatalogListCmd(c), newCatalogExportCmd(c))
	return cmd
}

// catalogFor loads path, or the configured catalog, or the built-in defaults.
func (c *cli) catalogFor(args []string) (*playbook.Catalog, string, error) {
	path := c.cfg.Catalog.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return playbook.Default(), "built-in catalog", nil
	}
	catalog, err := playbook.LoadFile(path, agent.FactSchema())
	if err != nil {
		return nil, path, err
	}
	return catalog, path, nil
}

func newCatalogValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a YAML or CUE catalog against the fact schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, source, err := c.catalogFor(args)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d playbooks: %s)\n",
				source, catalog.Len(), strings.Join(catalog.IDs(), ", "))
			return err
		},
	}
}

func newCatalogListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list [file]",
		Short: "List playbooks in evaluation order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := c.catalogFor(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, pb := range catalog.Playbooks() {
				if _, err := fmt.Fprintf(out, "%-28s %d steps  %s\n", pb.ID, len(pb.Steps), pb.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newCatalogExportCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the resolved catalog as YAML",
		Long:  "Resolves includeDefaults and CUE sources into a plain YAML catalog.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := c.catalogFor(args)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := catalog.Encode(&buf); err != nil {
				return fmt.Errorf("encode catalog: %w", err)
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			return renameio.WriteFile(output, buf.Bytes(), 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}
