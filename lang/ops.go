package lang

import (
	"math"
)

// opKey selects a row of the operator table.
type opKey struct {
	kind Kind
	op   Opcode
}

// opFunc computes the result of a binary operation on two present values of
// the same kind. A failing operation returns a non-nil error kind.
type opFunc func(l, r Value) (Value, *RuntimeErrorKind)

// operators holds the valid (operand kind, opcode) combinations.
var operators = map[opKey]opFunc{
	{KindI32, OpAdd}: intArith(func(a, b int64) int64 { return a + b }),
	{KindI32, OpSub}: intArith(func(a, b int64) int64 { return a - b }),
	{KindI32, OpMul}: intArith(func(a, b int64) int64 { return a * b }),
	{KindI32, OpDiv}: intDivide(func(a, b int64) int64 { return a / b }),
	{KindI32, OpMod}: intDivide(func(a, b int64) int64 { return a % b }),
	{KindI32, OpEq}:  intCompare(func(a, b int32) bool { return a == b }),
	{KindI32, OpNe}:  intCompare(func(a, b int32) bool { return a != b }),
	{KindI32, OpLt}:  intCompare(func(a, b int32) bool { return a < b }),
	{KindI32, OpLe}:  intCompare(func(a, b int32) bool { return a <= b }),
	{KindI32, OpGt}:  intCompare(func(a, b int32) bool { return a > b }),
	{KindI32, OpGe}:  intCompare(func(a, b int32) bool { return a >= b }),

	{KindBool, OpEq}:  boolOp(func(a, b bool) bool { return a == b }),
	{KindBool, OpNe}:  boolOp(func(a, b bool) bool { return a != b }),
	{KindBool, OpAnd}: boolOp(func(a, b bool) bool { return a && b }),
	{KindBool, OpOr}:  boolOp(func(a, b bool) bool { return a || b }),

	{KindString, OpEq}: stringOp(func(a, b string) bool { return a == b }),
	{KindString, OpNe}: stringOp(func(a, b string) bool { return a != b }),
}

// operandKinds are the kinds that appear in the operator table.
var operandKinds = map[Kind]bool{KindI32: true, KindBool: true, KindString: true}

// Apply evaluates l op r. It fails with [InvalidOperands] when the operands
// are of different kinds, are unit, or are absent; with [InvalidOpcode] when
// op is not defined for the operands' kind; and with [DivisionByZero] or
// [IntegerOverflow] for integer results that cannot be represented.
func Apply(op Opcode, l, r Value) (Value, error) {
	v, kind := apply(op, l, r)
	if kind != nil {
		return Value{}, runtimeError(*kind, 0)
	}

	return v, nil
}

func apply(op Opcode, l, r Value) (Value, *RuntimeErrorKind) {
	if l.Kind() != r.Kind() || !operandKinds[l.Kind()] ||
		l.IsAbsent() || r.IsAbsent() {
		return Value{}, errKind(InvalidOperands)
	}

	fn, ok := operators[opKey{l.Kind(), op}]
	if !ok {
		return Value{}, errKind(InvalidOpcode)
	}

	return fn(l, r)
}

func errKind(k RuntimeErrorKind) *RuntimeErrorKind { return &k }

// intArith computes in 64 bits and fails if the result leaves int32 range.
func intArith(f func(a, b int64) int64) opFunc {
	return func(l, r Value) (Value, *RuntimeErrorKind) {
		a, _ := l.AsInt()
		b, _ := r.AsInt()

		n := f(int64(a), int64(b))
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Value{}, errKind(IntegerOverflow)
		}

		return Int(int32(n)), nil
	}
}

// intDivide guards the divisor before truncating division or remainder.
func intDivide(f func(a, b int64) int64) opFunc {
	checked := intArith(f)

	return func(l, r Value) (Value, *RuntimeErrorKind) {
		if b, _ := r.AsInt(); b == 0 {
			return Value{}, errKind(DivisionByZero)
		}

		return checked(l, r)
	}
}

func intCompare(f func(a, b int32) bool) opFunc {
	return func(l, r Value) (Value, *RuntimeErrorKind) {
		a, _ := l.AsInt()
		b, _ := r.AsInt()

		return Bool(f(a, b)), nil
	}
}

func boolOp(f func(a, b bool) bool) opFunc {
	return func(l, r Value) (Value, *RuntimeErrorKind) {
		a, _ := l.AsBool()
		b, _ := r.AsBool()

		return Bool(f(a, b)), nil
	}
}

func stringOp(f func(a, b string) bool) opFunc {
	return func(l, r Value) (Value, *RuntimeErrorKind) {
		a, _ := l.AsString()
		b, _ := r.AsString()

		return Bool(f(a, b)), nil
	}
}
