package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// run parses src and executes it.
func run(t *testing.T, src string, globals Env, natives Natives, opts ...Option) (Value, error) {
	t.Helper()

	return Execute(t.Context(), mustParse(t, src), globals, natives, opts...)
}

// TestExecute_Values verifies successful evaluation results.
func TestExecute_Values(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Value
	}{
		{
			name: "addition",
			src:  "fn main() { 1 + 2 }",
			want: Int(3),
		},
		{
			name: "assignment rebinds",
			src:  "fn main() { x = 5; x = x + 1; x }",
			want: Int(6),
		},
		{
			name: "if true",
			src:  "fn main() { if true { 1 } else { 2 } }",
			want: Int(1),
		},
		{
			name: "else if chain",
			src:  "fn main() { if false { 1 } else if true { 2 } else { 3 } }",
			want: Int(2),
		},
		{
			name: "final else",
			src:  "fn main() { if false { 1 } else if false { 2 } else { 3 } }",
			want: Int(3),
		},
		{
			name: "if without matching branch is unit",
			src:  "fn main() { if 1 > 2 { 1 } }",
			want: Unit(),
		},
		{
			name: "branches may differ in type",
			src:  `fn main() { if false { 1 } else { "one" } }`,
			want: String("one"),
		},
		{
			name: "logical and",
			src:  "fn main() { true && false }",
			want: Bool(false),
		},
		{
			name: "logical or",
			src:  "fn main() { false || true }",
			want: Bool(true),
		},
		{
			name: "truncating division",
			src:  "fn main() { 7 / 2 }",
			want: Int(3),
		},
		{
			name: "modulo",
			src:  "fn main() { 7 % 2 }",
			want: Int(1),
		},
		{
			name: "negative division truncates toward zero",
			src:  "fn main() { (0 - 7) / 2 }",
			want: Int(-3),
		},
		{
			name: "negative modulo keeps dividend sign",
			src:  "fn main() { (0 - 7) % 2 }",
			want: Int(-1),
		},
		{
			name: "string equality",
			src:  `fn main() { "a" == "a" }`,
			want: Bool(true),
		},
		{
			name: "string inequality",
			src:  `fn main() { "a" != "b" }`,
			want: Bool(true),
		},
		{
			name: "user function call",
			src:  "fn add(a: i32, b: i32) => i32 { a + b } fn main() { add(2, 3) }",
			want: Int(5),
		},
		{
			name: "recursion",
			src: `
				fn fact(n: i32) => i32 { if n <= 1 { 1 } else { n * fact(n - 1) } }
				fn main() { fact(10) }`,
			want: Int(3628800),
		},
		{
			name: "mutual recursion",
			src: `
				fn even(n: i32) => bool { if n == 0 { true } else { odd(n - 1) } }
				fn odd(n: i32) => bool { if n == 0 { false } else { even(n - 1) } }
				fn main() { even(10) }`,
			want: Bool(true),
		},
		{
			name: "parameters are locals",
			src:  "fn inc(n: i32) { n = n + 1; n } fn main() { n = 1; inc(n) + n }",
			want: Int(3),
		},
		{
			name: "expression statements are evaluated",
			src:  "fn main() { 1 + 1; 2 }",
			want: Int(2),
		},
		{
			name: "if inside expression",
			src:  "fn main() { 1 + if true { 2 } else { 3 } }",
			want: Int(3),
		},
		{
			name: "largest int32",
			src:  "fn main() { 2147483646 + 1 }",
			want: Int(2147483647),
		},
		{
			name: "smallest int32",
			src:  "fn main() { 0 - 2147483647 - 1 }",
			want: Int(-2147483648),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.src, nil, nil)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("Execute() = %v (%v), want %v (%v)",
					got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

// TestExecute_Errors verifies runtime error kinds, names and positions.
func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     *RuntimeError
		position int
		errName  string
	}{
		{
			name:    "undefined function",
			src:     "fn main() { foo() }",
			want:    ErrUndefinedFunction,
			errName: "foo",
			// position of the call
			position: 12,
		},
		{
			name:     "undefined variable",
			src:      "fn main() { y }",
			want:     ErrUndefinedVariable,
			errName:  "y",
			position: 12,
		},
		{
			name:     "no main",
			src:      "fn start() { 1 }",
			want:     ErrNoMain,
			position: 0,
		},
		{
			name:     "too few arguments",
			src:      "fn add(a: i32, b: i32) { a + b } fn main() { add(1) }",
			want:     ErrWrongNumberOfArguments,
			errName:  "add",
			position: 45,
		},
		{
			name:     "too many arguments",
			src:      "fn one() { 1 } fn main() { one(1) }",
			want:     ErrWrongNumberOfArguments,
			errName:  "one",
			position: 27,
		},
		{
			name:     "int compared to string",
			src:      `fn main() { 1 == "1" }`,
			want:     ErrInvalidOperands,
			position: 12,
		},
		{
			name:     "unit operand",
			src:      `fn main() { (if false { 1 }) == 1 }`,
			want:     ErrInvalidOperands,
			position: 13,
		},
		{
			name:     "bool addition",
			src:      "fn main() { true + false }",
			want:     ErrInvalidOpcode,
			position: 12,
		},
		{
			name:     "string ordering",
			src:      `fn main() { "a" < "b" }`,
			want:     ErrInvalidOpcode,
			position: 12,
		},
		{
			name:     "int logical and",
			src:      "fn main() { 1 && 0 }",
			want:     ErrInvalidOpcode,
			position: 12,
		},
		{
			name:     "non-boolean condition",
			src:      "fn main() { if 1 { 2 } }",
			want:     ErrBooleanExpected,
			position: 15,
		},
		{
			name:     "non-boolean else-if condition",
			src:      `fn main() { if false { 1 } else if "x" { 2 } }`,
			want:     ErrBooleanExpected,
			position: 35,
		},
		{
			name:     "division by zero",
			src:      "fn main() { 1 / 0 }",
			want:     ErrDivisionByZero,
			position: 12,
		},
		{
			name:     "modulo by zero",
			src:      "fn main() { 1 % (1 - 1) }",
			want:     ErrDivisionByZero,
			position: 12,
		},
		{
			name:     "addition overflow",
			src:      "fn main() { 2147483647 + 1 }",
			want:     ErrIntegerOverflow,
			position: 12,
		},
		{
			name:     "multiplication overflow",
			src:      "fn main() { 65536 * 65536 }",
			want:     ErrIntegerOverflow,
			position: 12,
		},
		{
			name:     "smallest int32 divided by minus one",
			src:      "fn main() { m = 0 - 2147483647 - 1; m / (0 - 1) }",
			want:     ErrIntegerOverflow,
			position: 36,
		},
		{
			name:     "locals are not visible to callees",
			src:      "fn g() { x } fn main() { x = 1; g() }",
			want:     ErrUndefinedVariable,
			errName:  "x",
			position: 9,
		},
		{
			name:     "error inside argument stops the call",
			src:      "fn main() { print(1 / 0) }",
			want:     ErrDivisionByZero,
			position: 18,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.src, nil, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.want)
			}

			var re *RuntimeError
			if !errors.As(err, &re) {
				t.Fatalf("Execute() error %T is not *RuntimeError", err)
			}

			if re.Name != tt.errName {
				t.Errorf("Name = %q, want %q", re.Name, tt.errName)
			}

			if re.Position != tt.position {
				t.Errorf("Position = %d, want %d", re.Position, tt.position)
			}
		})
	}
}

// TestExecute_GlobalsShadowLocals verifies globals win for read access and
// are never written by assignment.
func TestExecute_GlobalsShadowLocals(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "local assigned", src: "fn main() { x = 1; x }"},
		{name: "parameter", src: "fn f(x: i32) { x } fn main() { f(1) }"},
		{name: "reassigned", src: "fn main() { x = 1; x = x + 1; x }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			globals := Env{"x": Int(42)}

			got, err := run(t, tt.src, globals, nil)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			if !got.Equal(Int(42)) {
				t.Errorf("Execute() = %v, want 42", got)
			}

			if !globals["x"].Equal(Int(42)) || len(globals) != 1 {
				t.Errorf("globals modified: %v", globals)
			}
		})
	}
}

// TestExecute_Natives verifies native resolution and argument handling.
func TestExecute_Natives(t *testing.T) {
	t.Run("args evaluated left to right", func(t *testing.T) {
		var order []int32

		natives := Natives{
			"rec": func(args ArgList) Value {
				n, _ := args[0].AsInt()
				order = append(order, n)

				return args[0]
			},
			"sum": func(args ArgList) Value {
				var total int32
				for _, a := range args {
					n, _ := a.AsInt()
					total += n
				}

				return Int(total)
			},
		}

		got, err := run(t, "fn main() { sum(rec(1), rec(2), rec(3)) }", nil, natives)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if !got.Equal(Int(6)) {
			t.Errorf("Execute() = %v, want 6", got)
		}

		if diff := cmp.Diff([]int32{1, 2, 3}, order); diff != "" {
			t.Errorf("evaluation order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("natives resolve before user functions", func(t *testing.T) {
		natives := Natives{
			"f": func(ArgList) Value { return String("native") },
		}

		got, err := run(t, `fn f() { "user" } fn main() { f() }`, nil, natives)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if !got.Equal(String("native")) {
			t.Errorf("Execute() = %v, want native", got)
		}
	})

	t.Run("natives are not arity checked", func(t *testing.T) {
		var count int

		natives := Natives{
			"count": func(args ArgList) Value {
				count = len(args)

				return Unit()
			},
		}

		_, err := run(t, `fn main() { count(1, true, "three", count()) }`, nil, natives)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if count != 4 {
			t.Errorf("native received %d args, want 4", count)
		}
	})

	t.Run("no short circuit", func(t *testing.T) {
		var calls int

		natives := Natives{
			"side": func(ArgList) Value {
				calls++

				return Bool(true)
			},
		}

		src := "fn main() { a = false && side(); b = true || side(); a || b }"

		got, err := run(t, src, nil, natives)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if !got.Equal(Bool(true)) {
			t.Errorf("Execute() = %v, want true", got)
		}

		if calls != 2 {
			t.Errorf("side() called %d times, want 2", calls)
		}
	})
}

// TestExecute_MaxDepth verifies the call depth bound.
func TestExecute_MaxDepth(t *testing.T) {
	src := "fn down(n: i32) { if n == 0 { 0 } else { down(n - 1) } } fn main() { down(50) }"

	if _, err := run(t, src, nil, nil, WithMaxDepth(100)); err != nil {
		t.Fatalf("Execute() within bound error = %v", err)
	}

	_, err := run(t, src, nil, nil, WithMaxDepth(10))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("Execute() error = %v, want %v", err, ErrMaxDepthExceeded)
	}

	var re *RuntimeError
	if errors.As(err, &re) && re.Name != "down" {
		t.Errorf("Name = %q, want down", re.Name)
	}
}

// TestExecute_Canceled verifies a done context stops execution.
func TestExecute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	prog := mustParse(t, "fn main() { 1 }")

	_, err := Execute(ctx, prog, nil, nil)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("Execute() error = %v, want %v", err, ErrCanceled)
	}

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want wrapped context.Canceled", err)
	}
}

// TestExecute_DoesNotMutateProgram verifies the tree is read-only.
func TestExecute_DoesNotMutateProgram(t *testing.T) {
	src := "fn f(a: i32) { a } fn main() { x = f(1); x }"
	prog := mustParse(t, src)
	before := mustParse(t, src)

	if _, err := Execute(t.Context(), prog, nil, nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if diff := cmp.Diff(before, prog, ignoreSpans); diff != "" {
		t.Errorf("program mutated (-before +after):\n%s", diff)
	}
}

// TestRuntimeError_Format verifies runtime diagnostics point at the failing
// expression.
func TestRuntimeError_Format(t *testing.T) {
	src := "fn main() {\n  x = 1;\n  x + y\n}"

	_, err := run(t, src, nil, nil)

	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("Execute() error = %v, want *RuntimeError", err)
	}

	got := re.Format(src)

	if !strings.HasPrefix(got, "line 3, column 7: runtime error: Undefined variable y\n") {
		t.Errorf("Format() = %q", got)
	}

	if !strings.Contains(got, "  3 |   x + y\n") {
		t.Errorf("Format() missing source line: %q", got)
	}
}

// TestRuntimeError_Error verifies messages.
func TestRuntimeError_Error(t *testing.T) {
	tests := []struct {
		err  *RuntimeError
		want string
	}{
		{namedError(UndefinedFunction, "foo", 0), "Undefined function foo"},
		{namedError(WrongNumberOfArguments, "add", 0), "Wrong number of arguments add"},
		{runtimeError(NoMain, 0), "Function main wasn't found"},
		{runtimeError(InvalidOperands, 3), "Invalid operands"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
