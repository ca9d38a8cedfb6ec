package lang

import (
	"strconv"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

const (
	KindUnit Kind = iota
	KindI32
	KindBool
	KindString
)

// String returns the name of the kind as written in source type annotations.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "()"
	case KindI32:
		return "i32"
	case KindBool:
		return "bool"
	case KindString:
		return "String"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the result of evaluating an expression: a 32-bit signed integer, a
// boolean, a string, or unit.
//
// A typed value may also be absent. Absent values only appear as the
// placeholder of a declared parameter before a call binds it; evaluation never
// produces one.
//
// The zero Value is unit.
type Value struct {
	s    string
	i    int32
	kind Kind
	b    bool
	set  bool
}

// Int returns an integer value.
func Int(n int32) Value { return Value{kind: KindI32, i: n, set: true} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b, set: true} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s, set: true} }

// Unit returns the unit value.
func Unit() Value { return Value{kind: KindUnit, set: true} }

// Absent returns the unbound placeholder for kind. Absent(KindUnit) is unit.
func Absent(kind Kind) Value {
	return Value{kind: kind, set: kind == KindUnit}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is a declared-but-unbound placeholder.
func (v Value) IsAbsent() bool { return !v.set && v.kind != KindUnit }

// IsUnit reports whether v is the unit value.
func (v Value) IsUnit() bool { return v.kind == KindUnit }

// AsInt returns the integer held by v and whether v is a present integer.
func (v Value) AsInt() (int32, bool) { return v.i, v.kind == KindI32 && v.set }

// AsBool returns the boolean held by v and whether v is a present boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool && v.set }

// AsString returns the string held by v and whether v is a present string.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString && v.set
}

// Equal reports whether v and o hold the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || v.IsAbsent() != o.IsAbsent() {
		return false
	}

	if v.IsAbsent() {
		return true
	}

	switch v.kind {
	case KindI32:
		return v.i == o.i
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	default:
		return true
	}
}

// String renders v the way the print builtin writes it. Absent values render
// as the empty string.
func (v Value) String() string {
	if v.IsAbsent() {
		return ""
	}

	switch v.kind {
	case KindI32:
		return strconv.FormatInt(int64(v.i), 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	default:
		return "()"
	}
}

// Literal renders v as source text that lexes back to the same value.
func (v Value) Literal() string {
	switch v.kind {
	case KindString:
		return `"` + v.s + `"`
	default:
		return v.String()
	}
}

// Native converts v to the corresponding Go value: int32, bool, string, or
// nil for unit and absent values.
func (v Value) Native() any {
	if v.IsAbsent() {
		return nil
	}

	switch v.kind {
	case KindI32:
		return v.i
	case KindBool:
		return v.b
	case KindString:
		return v.s
	default:
		return nil
	}
}

// Env maps variable names to values.
type Env map[string]Value

// ArgList is the ordered list of evaluated arguments passed to a function.
type ArgList []Value

// Native is a host-supplied function. Natives receive their arguments already
// evaluated and are never arity-checked.
type Native func(args ArgList) Value

// Natives maps function names to host-supplied implementations.
type Natives map[string]Native
