package condition

import (
	"fmt"
	"slices"
	"time"
)

// FieldType is the value type of a whitelisted fact.
type FieldType string

const (
	TypeNumber FieldType = "number"
	TypeString FieldType = "string"
	TypeBool   FieldType = "bool"
	TypeDate   FieldType = "date"
	TypeSet    FieldType = "set"
)

// FieldDef declares a fact a condition may reference.
// Allowed, when set, restricts string and set literals to a closed vocabulary.
type FieldDef struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Allowed     []string  `json:"allowed,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Schema is the field whitelist. The zero value admits no fields.
// Schemas are immutable; With returns an extended copy.
type Schema struct {
	fields map[string]FieldDef
	order  []string
}

// NewSchema builds a schema, rejecting duplicate or untyped fields.
func NewSchema(defs ...FieldDef) (Schema, error) {
	return Schema{}.With(defs...)
}

// MustSchema is NewSchema for static definitions.
func MustSchema(defs ...FieldDef) Schema {
	s, err := NewSchema(defs...)
	if err != nil {
		panic(err)
	}
	return s
}

// With returns a copy of s extended by defs.
func (s Schema) With(defs ...FieldDef) (Schema, error) {
	out := Schema{
		fields: make(map[string]FieldDef, len(s.fields)+len(defs)),
		order:  slices.Clone(s.order),
	}
	for k, v := range s.fields {
		out.fields[k] = v
	}
	for _, def := range defs {
		if def.Name == "" {
			return Schema{}, fmt.Errorf("schema: field without name")
		}
		switch def.Type {
		case TypeNumber, TypeString, TypeBool, TypeDate, TypeSet:
		default:
			return Schema{}, fmt.Errorf("schema: field %q has invalid type %q", def.Name, def.Type)
		}
		if _, dup := out.fields[def.Name]; dup {
			return Schema{}, fmt.Errorf("schema: duplicate field %q", def.Name)
		}
		def.Allowed = slices.Clone(def.Allowed)
		out.fields[def.Name] = def
		out.order = append(out.order, def.Name)
	}
	return out, nil
}

// Lookup returns the definition of name.
func (s Schema) Lookup(name string) (FieldDef, bool) {
	def, ok := s.fields[name]
	return def, ok
}

// Fields returns the definitions in declaration order.
func (s Schema) Fields() []FieldDef {
	out := make([]FieldDef, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.fields[name])
	}
	return out
}

// Facts is the read side of a fact snapshot.
type Facts interface {
	// Fact returns the value of a whitelisted field; ok is false when the
	// fact is absent from the snapshot.
	Fact(name string) (value any, ok bool)
	// ReferenceTime is the "as of" instant temporal operators measure against.
	ReferenceTime() time.Time
}

// StaticFacts is a map-backed Facts implementation.
type StaticFacts struct {
	Values map[string]any
	AsOf   time.Time
}

func (f StaticFacts) Fact(name string) (any, bool) {
	v, ok := f.Values[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (f StaticFacts) ReferenceTime() time.Time { return f.AsOf }
