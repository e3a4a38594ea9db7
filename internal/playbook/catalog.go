package playbook

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ManuGH/fieldpulse/internal/condition"
)

var (
	ErrInvalidCatalog  = errors.New("invalid playbook catalog")
	ErrUnknownPlaybook = errors.New("unknown playbook")
)

// Catalog is an ordered, read-only set of playbooks validated against a fact
// schema. Safe for concurrent use.
type Catalog struct {
	schema    condition.Schema
	playbooks []Playbook
	index     map[string]int
}

// NewCatalog validates every trigger, guard and fact reference against schema.
// Insertion order is selection order.
func NewCatalog(schema condition.Schema, playbooks ...Playbook) (*Catalog, error) {
	c := &Catalog{
		schema:    schema,
		playbooks: make([]Playbook, 0, len(playbooks)),
		index:     make(map[string]int, len(playbooks)),
	}
	for _, pb := range playbooks {
		if err := validatePlaybook(pb, schema); err != nil {
			return nil, err
		}
		if _, dup := c.index[pb.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate playbook id %q", ErrInvalidCatalog, pb.ID)
		}
		c.index[pb.ID] = len(c.playbooks)
		c.playbooks = append(c.playbooks, pb.clone())
	}
	return c, nil
}

// With returns a new catalog with playbooks appended.
func (c *Catalog) With(playbooks ...Playbook) (*Catalog, error) {
	return NewCatalog(c.schema, append(c.Playbooks(), playbooks...)...)
}

// Schema returns the fact schema the catalog was validated against.
func (c *Catalog) Schema() condition.Schema { return c.schema }

// Len returns the number of playbooks.
func (c *Catalog) Len() int { return len(c.playbooks) }

// Playbooks returns copies of the playbooks in catalog order.
func (c *Catalog) Playbooks() []Playbook {
	out := make([]Playbook, len(c.playbooks))
	for i, pb := range c.playbooks {
		out[i] = pb.clone()
	}
	return out
}

// IDs returns playbook IDs in catalog order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.playbooks))
	for i, pb := range c.playbooks {
		out[i] = pb.ID
	}
	return out
}

// Get returns the playbook with id.
func (c *Catalog) Get(id string) (Playbook, error) {
	i, ok := c.index[id]
	if !ok {
		return Playbook{}, fmt.Errorf("%w: %q", ErrUnknownPlaybook, id)
	}
	return c.playbooks[i].clone(), nil
}

func validatePlaybook(pb Playbook, schema condition.Schema) error {
	if pb.ID == "" {
		return fmt.Errorf("%w: playbook without id", ErrInvalidCatalog)
	}
	if err := condition.Validate(pb.Trigger, schema); err != nil {
		return fmt.Errorf("%w: playbook %q trigger: %w", ErrInvalidCatalog, pb.ID, err)
	}
	for i, step := range pb.Steps {
		if !step.Action.Valid() {
			return fmt.Errorf("%w: playbook %q step %d: unknown action %q", ErrInvalidCatalog, pb.ID, i, step.Action)
		}
		if step.Guard != nil {
			if err := condition.Validate(*step.Guard, schema); err != nil {
				return fmt.Errorf("%w: playbook %q step %d guard: %w", ErrInvalidCatalog, pb.ID, i, err)
			}
		}
		for key, v := range step.Params {
			if err := validateParam(v, schema); err != nil {
				return fmt.Errorf("%w: playbook %q step %d param %q: %w", ErrInvalidCatalog, pb.ID, i, key, err)
			}
		}
	}
	return nil
}

func validateParam(v any, schema condition.Schema) error {
	if field, _, ok := factRef(v); ok {
		if _, known := schema.Lookup(field); !known {
			return fmt.Errorf("%w: %q", condition.ErrUnknownField, field)
		}
		return nil
	}
	if v == nil {
		return errors.New("null value")
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	}
	return fmt.Errorf("value %v (%T) is not a primitive", v, v)
}
