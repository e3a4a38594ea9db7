package condition

import (
	"reflect"
	"time"
)

// scalar is a normalized comparison operand.
type scalar struct {
	kind FieldType
	num  float64
	str  string
	b    bool
}

// toScalar normalizes ints, floats, strings (including named string types such
// as enum values) and bools. Everything else is rejected.
func toScalar(v any) (scalar, bool) {
	if v == nil {
		return scalar{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalar{kind: TypeNumber, num: float64(rv.Int())}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalar{kind: TypeNumber, num: float64(rv.Uint())}, true
	case reflect.Float32, reflect.Float64:
		return scalar{kind: TypeNumber, num: rv.Float()}, true
	case reflect.String:
		return scalar{kind: TypeString, str: rv.String()}, true
	case reflect.Bool:
		return scalar{kind: TypeBool, b: rv.Bool()}, true
	case reflect.Pointer:
		if rv.IsNil() {
			return scalar{}, false
		}
		return toScalar(rv.Elem().Interface())
	}
	return scalar{}, false
}

func (a scalar) equal(b scalar) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case TypeNumber:
		return a.num == b.num
	case TypeString:
		return a.str == b.str
	case TypeBool:
		return a.b == b.b
	}
	return false
}

// toList normalizes any slice or array value into scalars.
func toList(v any) ([]scalar, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]scalar, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, ok := toScalar(rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, time.DateOnly}

// toTime accepts time values and ISO-8601 strings.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// wholeDaysBetween returns the number of complete 24h periods from since to ref.
func wholeDaysBetween(since, ref time.Time) int {
	d := ref.Sub(since)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}
