package model

import (
	"fmt"
	"strconv"
)

// Value is a scalar variable value: either a bool or a string.
type Value struct {
	kind Kind
	b    bool
	s    string
}

// BoolValue returns a bool Value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{kind: KindString, s: s}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind {
	return v.kind
}

// Bool returns the boolean payload. It is false for string values.
func (v Value) Bool() bool {
	return v.b
}

// Str returns the string payload. It is empty for bool values.
func (v Value) Str() string {
	return v.s
}

// Interface returns the payload as a bool or a string.
func (v Value) Interface() interface{} {
	if v.kind == KindBool {
		return v.b
	}
	return v.s
}

// String formats the value for display.
func (v Value) String() string {
	if v.kind == KindBool {
		return strconv.FormatBool(v.b)
	}
	return v.s
}

// ValueFromInterface converts a decoded configuration scalar into a Value.
// Strings and bools map directly; integers and floats become strings.
func ValueFromInterface(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return BoolValue(v), nil
	case string:
		return StringValue(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return StringValue(fmt.Sprintf("%d", v)), nil
	case float32, float64:
		return StringValue(fmt.Sprintf("%v", v)), nil
	case Value:
		return v, nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Coerce converts raw into a Value of the given kind.
// Strings "true"/"false" (any case accepted by strconv.ParseBool) satisfy bool.
func Coerce(raw interface{}, kind Kind) (Value, error) {
	v, err := ValueFromInterface(raw)
	if err != nil {
		return Value{}, err
	}
	if v.kind == kind {
		return v, nil
	}
	if kind == KindBool {
		b, err := strconv.ParseBool(v.s)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not a bool", v.s)
		}
		return BoolValue(b), nil
	}
	return Value{}, fmt.Errorf("expected a string, got bool %v", v.b)
}
