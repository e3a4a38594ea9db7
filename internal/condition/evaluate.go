package condition

import (
	"fmt"
	"strings"
)

// Evaluate decides c against facts.
//
// The whole tree is validated first, so authoring defects surface even in
// branches that short-circuiting would skip. A leaf referencing an absent fact
// fails with ErrMissingFact; the evaluator never folds "unknown" into false.
func Evaluate(c Condition, facts Facts, schema Schema) (bool, error) {
	if err := Validate(c, schema); err != nil {
		return false, err
	}
	return eval(c, facts, schema, "$")
}

func eval(c Condition, facts Facts, schema Schema, path string) (bool, error) {
	switch c.NodeKind() {
	case KindAnd:
		for i, child := range c.Children {
			ok, err := eval(child, facts, schema, childPath(path, i))
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil

	case KindOr:
		for i, child := range c.Children {
			ok, err := eval(child, facts, schema, childPath(path, i))
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case KindNot:
		ok, err := eval(c.Children[0], facts, schema, childPath(path, 0))
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
	return compare(c, facts, schema, path)
}

func compare(c Condition, facts Facts, schema Schema, path string) (bool, error) {
	def, _ := schema.Lookup(c.Field)
	raw, ok := facts.Fact(c.Field)
	if !ok || raw == nil {
		return false, newError(ErrMissingFact, path, c, "")
	}

	badFact := func() error {
		return newError(ErrTypeMismatch, path, c, fmt.Sprintf("fact value %v (%T) is not a %s", raw, raw, def.Type))
	}

	switch c.Op {
	case OpEq, OpNeq:
		fact, ok := toScalar(raw)
		if !ok || fact.kind != def.Type {
			return false, badFact()
		}
		want, _ := toScalar(c.Value)
		equal := fact.equal(want)
		if c.Op == OpNeq {
			return !equal, nil
		}
		return equal, nil

	case OpLt, OpLte, OpGt, OpGte:
		fact, ok := toScalar(raw)
		if !ok || fact.kind != TypeNumber {
			return false, badFact()
		}
		want, _ := toScalar(c.Value)
		return order(c.Op, fact.num, want.num), nil

	case OpIn:
		fact, ok := toScalar(raw)
		if !ok || fact.kind != def.Type {
			return false, badFact()
		}
		values, _ := toList(c.Value)
		for _, v := range values {
			if fact.equal(v) {
				return true, nil
			}
		}
		return false, nil

	case OpContains:
		want, _ := toScalar(c.Value)
		if def.Type == TypeSet {
			elems, ok := toList(raw)
			if !ok {
				return false, badFact()
			}
			for _, e := range elems {
				if e.equal(want) {
					return true, nil
				}
			}
			return false, nil
		}
		fact, ok := toScalar(raw)
		if !ok || fact.kind != TypeString {
			return false, badFact()
		}
		return strings.Contains(fact.str, want.str), nil

	case OpDaysSinceGte, OpDaysSinceLte:
		since, ok := toTime(raw)
		if !ok {
			return false, badFact()
		}
		ref := facts.ReferenceTime()
		if ref.IsZero() {
			return false, newError(ErrMissingFact, path, c, "snapshot has no reference time")
		}
		days := float64(wholeDaysBetween(since, ref))
		want, _ := toScalar(c.Value)
		if c.Op == OpDaysSinceGte {
			return days >= want.num, nil
		}
		return days <= want.num, nil
	}

	// Unreachable after Validate.
	return false, newError(ErrUnsupportedOperator, path, c, "")
}

func order(op Operator, a, b float64) bool {
	switch op {
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	case OpGt:
		return a > b
	default:
		return a >= b
	}
}
