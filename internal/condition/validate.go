package condition

import (
	"fmt"
	"slices"
)

// Validate checks c against the schema without looking at any facts.
// It reports the first defect in tree order.
func Validate(c Condition, schema Schema) error {
	return validateNode(c, schema, "$", 1)
}

func validateNode(c Condition, schema Schema, path string, depth int) error {
	if depth > MaxDepth {
		return newError(ErrMalformedCondition, path, c, fmt.Sprintf("nesting exceeds %d levels", MaxDepth))
	}
	switch c.NodeKind() {
	case KindCompare:
		if len(c.Children) > 0 {
			return newError(ErrMalformedCondition, path, c, "comparison with children")
		}
		return validateLeaf(c, schema, path)
	case KindAnd, KindOr:
		if c.Field != "" || c.Op != "" {
			return newError(ErrMalformedCondition, path, c, "combinator with comparison attributes")
		}
		if len(c.Children) == 0 {
			return newError(ErrMalformedCondition, path, c, fmt.Sprintf("%q without children", c.Kind))
		}
	case KindNot:
		if c.Field != "" || c.Op != "" {
			return newError(ErrMalformedCondition, path, c, "combinator with comparison attributes")
		}
		if len(c.Children) != 1 {
			return newError(ErrMalformedCondition, path, c, fmt.Sprintf("\"not\" needs exactly one child, got %d", len(c.Children)))
		}
	case "":
		return newError(ErrMalformedCondition, path, c, "node without kind or field")
	default:
		return newError(ErrMalformedCondition, path, c, fmt.Sprintf("unknown kind %q", c.Kind))
	}
	for i, child := range c.Children {
		if err := validateNode(child, schema, childPath(path, i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func childPath(path string, i int) string {
	return fmt.Sprintf("%s.children[%d]", path, i)
}

func validateLeaf(c Condition, schema Schema, path string) error {
	if c.Field == "" {
		return newError(ErrMalformedCondition, path, c, "comparison without field")
	}
	if !c.Op.Supported() {
		return newError(ErrUnsupportedOperator, path, c, "")
	}
	def, ok := schema.Lookup(c.Field)
	if !ok {
		return newError(ErrUnknownField, path, c, "")
	}

	mismatch := func(detail string) error {
		return newError(ErrTypeMismatch, path, c, detail)
	}

	switch c.Op {
	case OpEq, OpNeq:
		if def.Type == TypeDate || def.Type == TypeSet {
			return mismatch(fmt.Sprintf("%s field does not support %s", def.Type, c.Op))
		}
		v, ok := toScalar(c.Value)
		if !ok || v.kind != def.Type {
			return mismatch(fmt.Sprintf("value must be a %s", def.Type))
		}
		return checkAllowed(def, v, mismatch)

	case OpLt, OpLte, OpGt, OpGte:
		if def.Type != TypeNumber {
			return mismatch(fmt.Sprintf("ordering on %s field", def.Type))
		}
		if v, ok := toScalar(c.Value); !ok || v.kind != TypeNumber {
			return mismatch("value must be a number")
		}

	case OpIn:
		if def.Type == TypeDate || def.Type == TypeSet {
			return mismatch(fmt.Sprintf("%s field does not support %s", def.Type, c.Op))
		}
		values, ok := toList(c.Value)
		if !ok || len(values) == 0 {
			return mismatch("value must be a non-empty list")
		}
		for _, v := range values {
			if v.kind != def.Type {
				return mismatch(fmt.Sprintf("list elements must be %s", def.Type))
			}
			if err := checkAllowed(def, v, mismatch); err != nil {
				return err
			}
		}

	case OpContains:
		if def.Type != TypeString && def.Type != TypeSet {
			return mismatch(fmt.Sprintf("contains on %s field", def.Type))
		}
		v, ok := toScalar(c.Value)
		if !ok || v.kind != TypeString {
			return mismatch("value must be a string")
		}
		if def.Type == TypeSet {
			return checkAllowed(def, v, mismatch)
		}

	case OpDaysSinceGte, OpDaysSinceLte:
		if def.Type != TypeDate {
			return mismatch(fmt.Sprintf("%s on %s field", c.Op, def.Type))
		}
		if v, ok := toScalar(c.Value); !ok || v.kind != TypeNumber {
			return mismatch("value must be a number of days")
		}
	}
	return nil
}

func checkAllowed(def FieldDef, v scalar, mismatch func(string) error) error {
	if len(def.Allowed) == 0 || v.kind != TypeString {
		return nil
	}
	if !slices.Contains(def.Allowed, v.str) {
		return mismatch(fmt.Sprintf("%q is not one of %v", v.str, def.Allowed))
	}
	return nil
}
