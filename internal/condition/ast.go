package condition

// Kind tags a condition node.
type Kind string

const (
	KindCompare Kind = "cmp"
	KindAnd     Kind = "and"
	KindOr      Kind = "or"
	KindNot     Kind = "not"
)

// Operator is a comparison operator of a leaf node. The set is closed.
type Operator string

const (
	OpEq           Operator = "eq"
	OpNeq          Operator = "neq"
	OpLt           Operator = "lt"
	OpLte          Operator = "lte"
	OpGt           Operator = "gt"
	OpGte          Operator = "gte"
	OpIn           Operator = "in"
	OpContains     Operator = "contains"
	OpDaysSinceGte Operator = "days_since_gte"
	OpDaysSinceLte Operator = "days_since_lte"
)

// Supported reports whether o belongs to the operator whitelist.
func (o Operator) Supported() bool {
	switch o {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpIn, OpContains, OpDaysSinceGte, OpDaysSinceLte:
		return true
	}
	return false
}

// Operators returns the operator whitelist.
func Operators() []Operator {
	return []Operator{OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpIn, OpContains, OpDaysSinceGte, OpDaysSinceLte}
}

// MaxDepth bounds the nesting of a condition tree.
const MaxDepth = 32

// Condition is a node of a rule expression tree: either a comparison leaf
// {field, op, value} or a boolean combinator over Children.
// Conditions are plain data; they are never compiled to code.
type Condition struct {
	Kind     Kind        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Field    string      `json:"field,omitempty" yaml:"field,omitempty"`
	Op       Operator    `json:"op,omitempty" yaml:"op,omitempty"`
	Value    any         `json:"value,omitempty" yaml:"value,omitempty"`
	Children []Condition `json:"children,omitempty" yaml:"children,omitempty"`
}

// NodeKind returns the effective kind. Leaves authored without an explicit
// kind are comparisons.
func (c Condition) NodeKind() Kind {
	if c.Kind == "" && c.Field != "" {
		return KindCompare
	}
	return c.Kind
}

// Fields returns the distinct field names referenced by c, in tree order.
func Fields(c Condition) []string {
	seen := make(map[string]struct{})
	var out []string
	var walk func(Condition, int)
	walk = func(n Condition, depth int) {
		if depth > MaxDepth {
			return
		}
		if n.Field != "" {
			if _, ok := seen[n.Field]; !ok {
				seen[n.Field] = struct{}{}
				out = append(out, n.Field)
			}
		}
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	walk(c, 1)
	return out
}

func leaf(field string, op Operator, value any) Condition {
	return Condition{Kind: KindCompare, Field: field, Op: op, Value: value}
}

func Eq(field string, value any) Condition  { return leaf(field, OpEq, value) }
func Neq(field string, value any) Condition { return leaf(field, OpNeq, value) }
func Lt(field string, value any) Condition  { return leaf(field, OpLt, value) }
func Lte(field string, value any) Condition { return leaf(field, OpLte, value) }
func Gt(field string, value any) Condition  { return leaf(field, OpGt, value) }
func Gte(field string, value any) Condition { return leaf(field, OpGte, value) }

// In matches when the fact equals any of values.
func In(field string, values ...any) Condition { return leaf(field, OpIn, values) }

// Contains matches a substring of a string fact or an element of a set fact.
func Contains(field string, value any) Condition { return leaf(field, OpContains, value) }

// DaysSinceGte matches when at least days whole days passed since a date fact.
func DaysSinceGte(field string, days int) Condition { return leaf(field, OpDaysSinceGte, days) }

// DaysSinceLte matches when at most days whole days passed since a date fact.
func DaysSinceLte(field string, days int) Condition { return leaf(field, OpDaysSinceLte, days) }

func And(children ...Condition) Condition { return Condition{Kind: KindAnd, Children: children} }
func Or(children ...Condition) Condition  { return Condition{Kind: KindOr, Children: children} }
func Not(child Condition) Condition       { return Condition{Kind: KindNot, Children: []Condition{child}} }
