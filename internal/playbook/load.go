// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playbook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/ManuGH/fieldpulse/internal/condition"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk catalog format shared by YAML and CUE sources.
type Document struct {
	// IncludeDefaults prepends the built-in playbooks.
	IncludeDefaults bool       `yaml:"includeDefaults" json:"includeDefaults"`
	Playbooks       []Playbook `yaml:"playbooks" json:"playbooks"`
}

// LoadFile reads a catalog from a .yaml, .yml or .cue file.
func LoadFile(path string, schema condition.Schema) (*Catalog, error) {
	// #nosec G304 -- catalog paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return LoadCUE(data, filepath.Base(path), schema)
	case ".yaml", ".yml":
		return LoadYAML(bytes.NewReader(data), schema)
	}
	return nil, fmt.Errorf("%w: unsupported catalog file %q", ErrInvalidCatalog, path)
}

// LoadYAML decodes a strict single-document YAML catalog.
func LoadYAML(r io.Reader, schema condition.Schema) (*Catalog, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog document", ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: strict catalog parse error: %w", ErrInvalidCatalog, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: catalog contains multiple documents or trailing content", ErrInvalidCatalog)
	}
	return doc.Catalog(schema)
}

// LoadCUE compiles a CUE catalog and decodes its JSON export.
// CUE constraints in the source are checked before catalog validation runs.
func LoadCUE(data []byte, filename string, schema condition.Schema) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("%w: compile %s: %w", ErrInvalidCatalog, filename, err)
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("%w: validate %s: %w", ErrInvalidCatalog, filename, err)
	}
	if !v.LookupPath(cue.ParsePath("playbooks")).Exists() {
		return nil, fmt.Errorf("%w: %s has no playbooks field", ErrInvalidCatalog, filename)
	}

	// Export fails on non-concrete values; definitions and hidden fields are dropped.
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: export %s: %w", ErrInvalidCatalog, filename, err)
	}
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalidCatalog, filename, err)
	}
	return doc.Catalog(schema)
}

// Catalog validates the document into a catalog.
func (d Document) Catalog(schema condition.Schema) (*Catalog, error) {
	playbooks := d.Playbooks
	if d.IncludeDefaults {
		playbooks = append(DefaultPlaybooks(), playbooks...)
	}
	return NewCatalog(schema, playbooks...)
}

// Encode writes the catalog as a YAML document LoadYAML accepts.
func (c *Catalog) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Playbooks: c.Playbooks()}); err != nil {
		return err
	}
	return enc.Close()
}
