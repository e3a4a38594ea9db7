// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/domain/agent"
	xglog "github.com/ManuGH/fieldpulse/internal/log"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/ManuGH/fieldpulse/internal/service"
	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
)

// ioFlags are shared by every command that reads a JSON document and writes
// a JSON result.
type ioFlags struct {
	input  string
	output string
}

func (f *ioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "-", "JSON input file, - for stdin")
	cmd.Flags().StringVarP(&f.output, "output", "o", "-", "JSON output file, - for stdout")
}

// read decodes exactly one JSON document. Unknown fields are rejected.
func (f *ioFlags) read(cmd *cobra.Command, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if f.input != "" && f.input != "-" {
		// #nosec G304 -- operator-supplied input path
		file, err := os.Open(f.input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		r = file
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("decode input: empty document")
		}
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

// write renders v as indented JSON. Files are replaced atomically.
func (f *ioFlags) write(cmd *cobra.Command, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if f.output == "" || f.output == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := renameio.WriteFile(f.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// engine builds a service for one-shot commands: no cache and no dispatch.
func (c *cli) engine() (*service.Service, error) {
	catalog := playbook.Default()
	if c.cfg.Catalog.Path != "" {
		loaded, err := playbook.LoadFile(c.cfg.Catalog.Path, agent.FactSchema())
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		catalog = loaded
	}
	return service.New(service.Deps{
		Engine:  c.cfg.Engine,
		Catalog: catalog,
		Logger:  xglog.WithComponent("service"),
	})
}

// runEngine decodes In, runs op against a fresh service and writes the result.
func runEngine[In, Out any](c *cli, f *ioFlags, cmd *cobra.Command, op func(*service.Service, In) (Out, error)) error {
	var in In
	if err := f.read(cmd, &in); err != nil {
		return err
	}
	svc, err := c.engine()
	if err != nil {
		return err
	}
	defer svc.Close()

	out, err := op(svc, in)
	if err != nil {
		return err
	}
	return f.write(cmd, out)
}

func newTransitionCmd(c *cli) *cobra.Command {
	var f ioFlags
	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Apply a lifecycle event to a state",
		Long: `Reads {"agent_id","from","event":{...},"advance"} and prints the transition.
With "advance": true an inactivity event walks every threshold it crosses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEngine(c, &f, cmd, func(svc *service.Service, req service.TransitionRequest) (any, error) {
				return svc.Transition(cmd.Context(), req)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newReassessCmd(c *cli) *cobra.Command {
	var f ioFlags
	cmd := &cobra.Command{
		Use:   "reassess",
		Short: "Advance an agent snapshot by its inactivity and plan outreach",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEngine(c, &f, cmd, func(svc *service.Service, snap agent.Snapshot) (service.Assessment, error) {
				return svc.Reassess(cmd.Context(), snap)
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newPlanCmd(c *cli) *cobra.Command {
	var f ioFlags
	var selectOnly bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Select playbooks for an agent snapshot and build the action plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEngine(c, &f, cmd, func(svc *service.Service, snap agent.Snapshot) (any, error) {
				if selectOnly {
					selected, err := svc.SelectPlaybooks(cmd.Context(), snap)
					if selected == nil {
						selected = []playbook.Playbook{}
					}
					return selected, err
				}
				return svc.Plan(cmd.Context(), snap)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&selectOnly, "select-only", false, "print the matching playbooks instead of actions")
	return cmd
}

func newRankCmd(c *cli) *cobra.Command {
	var f ioFlags
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank dormant agents for coordinator attention (top 5)",
		Long:  `Reads a JSON array of candidates and prints at most five priority scores.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEngine(c, &f, cmd, func(svc *service.Service, candidates []adm.Candidate) ([]adm.PriorityScore, error) {
				return svc.Rank(cmd.Context(), candidates), nil
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newBriefingCmd(c *cli) *cobra.Command {
	var f ioFlags
	var portfolio bool
	cmd := &cobra.Command{
		Use:   "briefing",
		Short: "Assemble a coordinator's daily briefing",
		Long: `Reads one briefing request, or with --portfolio an array of them, and prints
the briefings in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if portfolio {
				return runEngine(c, &f, cmd, func(svc *service.Service, reqs []service.BriefingRequest) ([]adm.Briefing, error) {
					return svc.PortfolioBriefings(cmd.Context(), reqs)
				})
			}
			return runEngine(c, &f, cmd, func(svc *service.Service, req service.BriefingRequest) (adm.Briefing, error) {
				return svc.Briefing(cmd.Context(), req)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&portfolio, "portfolio", false, "input is an array of briefing requests")
	return cmd
}

func newClassifyCmd(c *cli) *cobra.Command {
	var f ioFlags
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a coordinator's outreach metrics into an effectiveness tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEngine(c, &f, cmd, func(svc *service.Service, m adm.Metrics) (map[string]adm.Tier, error) {
				tier, err := svc.Classify(cmd.Context(), "", m)
				return map[string]adm.Tier{"tier": tier}, err
			})
		},
	}
	f.register(cmd)
	return cmd
}
