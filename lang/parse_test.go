package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// ignoreSpans compares syntax trees by shape and content only.
var ignoreSpans = cmp.Options{
	cmpopts.IgnoreTypes(Span{}),
	cmpopts.IgnoreUnexported(Program{}),
}

func lit(v Value) *LiteralExpr { return &LiteralExpr{Value: v} }

func ref(name string) *VarExpr { return &VarExpr{Name: name} }

func bin(l Expr, op Opcode, r Expr) *BinaryExpr {
	return &BinaryExpr{Left: l, Op: op, Right: r}
}

// mustParse parses src or fails the test.
func mustParse(t *testing.T, src string) *Program {
	t.Helper()

	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}

	return prog
}

// TestParse_MainAddition verifies the smallest complete program.
func TestParse_MainAddition(t *testing.T) {
	prog := mustParse(t, "fn main() { 1 + 2 }")

	if got := prog.Names(); !cmp.Equal(got, []string{"main"}) {
		t.Fatalf("Names() = %v, want [main]", got)
	}

	want := &Function{
		Name: "main",
		Body: &Block{Expr: bin(lit(Int(1)), OpAdd, lit(Int(2)))},
	}

	if diff := cmp.Diff(want, prog.Functions["main"], ignoreSpans); diff != "" {
		t.Errorf("main mismatch (-want +got):\n%s", diff)
	}

	if got := prog.Functions["main"].Span; got != (Span{0, 19}) {
		t.Errorf("Span = %v, want {0 19}", got)
	}
}

// TestParse_Expressions verifies precedence, associativity and the shapes of
// each expression form.
func TestParse_Expressions(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Expr
	}{
		{
			name: "multiplication binds tighter than addition",
			expr: "1 + 2 * 3",
			want: bin(lit(Int(1)), OpAdd, bin(lit(Int(2)), OpMul, lit(Int(3)))),
		},
		{
			name: "subtraction is left associative",
			expr: "1 - 2 - 3",
			want: bin(bin(lit(Int(1)), OpSub, lit(Int(2))), OpSub, lit(Int(3))),
		},
		{
			name: "parentheses override precedence",
			expr: "(1 + 2) * 3",
			want: bin(bin(lit(Int(1)), OpAdd, lit(Int(2))), OpMul, lit(Int(3))),
		},
		{
			name: "and binds tighter than or",
			expr: "a || b && c",
			want: bin(ref("a"), OpOr, bin(ref("b"), OpAnd, ref("c"))),
		},
		{
			name: "relational binds tighter than equality",
			expr: "a < b == c >= d",
			want: bin(
				bin(ref("a"), OpLt, ref("b")),
				OpEq,
				bin(ref("c"), OpGe, ref("d")),
			),
		},
		{
			name: "modulo and division share a level",
			expr: "7 % 4 / 2",
			want: bin(bin(lit(Int(7)), OpMod, lit(Int(4))), OpDiv, lit(Int(2))),
		},
		{
			name: "literals",
			expr: `f("s", true, false, 0)`,
			want: &CallExpr{Name: "f", Args: []Expr{
				lit(String("s")), lit(Bool(true)), lit(Bool(false)), lit(Int(0)),
			}},
		},
		{
			name: "call without arguments",
			expr: "f()",
			want: &CallExpr{Name: "f"},
		},
		{
			name: "nested calls",
			expr: "f(g(x), y + 1)",
			want: &CallExpr{Name: "f", Args: []Expr{
				&CallExpr{Name: "g", Args: []Expr{ref("x")}},
				bin(ref("y"), OpAdd, lit(Int(1))),
			}},
		},
		{
			name: "if without else",
			expr: "if x { 1 }",
			want: &IfExpr{Cond: ref("x"), Then: &Block{Expr: lit(Int(1))}},
		},
		{
			name: "if else",
			expr: "if true { 1 } else { 2 }",
			want: &IfExpr{
				Cond: lit(Bool(true)),
				Then: &Block{Expr: lit(Int(1))},
				Else: Else{Kind: ElseBlock, Block: &Block{Expr: lit(Int(2))}},
			},
		},
		{
			name: "else if chain",
			expr: "if a { 1 } else if b { 2 } else { 3 }",
			want: &IfExpr{
				Cond: ref("a"),
				Then: &Block{Expr: lit(Int(1))},
				Else: Else{Kind: ElseIf, If: &IfExpr{
					Cond: ref("b"),
					Then: &Block{Expr: lit(Int(2))},
					Else: Else{Kind: ElseBlock, Block: &Block{Expr: lit(Int(3))}},
				}},
			},
		},
		{
			name: "if as an operand",
			expr: "1 + if c { 2 } else { 3 }",
			want: bin(lit(Int(1)), OpAdd, &IfExpr{
				Cond: ref("c"),
				Then: &Block{Expr: lit(Int(2))},
				Else: Else{Kind: ElseBlock, Block: &Block{Expr: lit(Int(3))}},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, "fn main() { "+tt.expr+" }")

			got := prog.Functions["main"].Body.Expr
			if diff := cmp.Diff(tt.want, got, ignoreSpans); diff != "" {
				t.Errorf("expression mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestParse_Statements verifies block structure.
func TestParse_Statements(t *testing.T) {
	prog := mustParse(t, `
		fn add(a: i32, b: i32) => i32 {
			sum = a + b;
			print(sum);
			sum
		}`)

	want := &Function{
		Name: "add",
		Params: []Param{
			{Name: "a", Type: TypeI32, Value: Absent(KindI32)},
			{Name: "b", Type: TypeI32, Value: Absent(KindI32)},
		},
		Result: TypeI32,
		Body: &Block{
			Stmts: []Stmt{
				&AssignStmt{Name: "sum", X: bin(ref("a"), OpAdd, ref("b"))},
				&ExprStmt{X: &CallExpr{Name: "print", Args: []Expr{ref("sum")}}},
			},
			Expr: ref("sum"),
		},
	}

	if diff := cmp.Diff(want, prog.Functions["add"], ignoreSpans); diff != "" {
		t.Errorf("add mismatch (-want +got):\n%s", diff)
	}
}

// TestParse_Params verifies declared types and their placeholders.
func TestParse_Params(t *testing.T) {
	prog := mustParse(t, "fn f(n: i32, ok: bool, s: String) { n }")

	params := prog.Functions["f"].Params
	want := []Kind{KindI32, KindBool, KindString}

	if len(params) != len(want) {
		t.Fatalf("got %d params, want %d", len(params), len(want))
	}

	for i, param := range params {
		if param.Value.Kind() != want[i] || !param.Value.IsAbsent() {
			t.Errorf("param %s placeholder = %v/%v, want absent %v",
				param.Name, param.Value.Kind(), param.Value.IsAbsent(), want[i])
		}
	}
}

// TestParse_Program verifies definition order and empty input.
func TestParse_Program(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "comments only", input: "// nothing\n// here", want: []string{}},
		{
			name:  "source order",
			input: "fn b() { 1 } fn a() { 2 } fn main() { a() + b() }",
			want:  []string{"b", "a", "main"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, tt.input)

			if diff := cmp.Diff(tt.want, prog.Names()); diff != "" {
				t.Errorf("Names() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestParse_Errors verifies error kinds, spans and messages.
func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		kind        ParseErrorKind
		from, to    int
		description string // checked only when set
	}{
		{
			name:  "missing right operand",
			input: "fn main() { 1 + }",
			kind:  ParseUnrecognizedToken,
			from:  16,
			to:    17,
			description: `unexpected token "}", expected ` +
				`"(","false","if","true",identifier,string,integer`,
		},
		{
			name:        "unexpected end of file",
			input:       "fn main() { 1",
			kind:        ParseUnrecognizedEOF,
			from:        13,
			to:          13,
			description: `unexpected end of file, expecting "||", "&&", "==", "!=", "<", "<=", ">", ">=", "+", "-", "*", "/", "%", ";", "}"`,
		},
		{
			name:        "extra closing brace",
			input:       "fn main() { 1 } }",
			kind:        ParseExtraToken,
			from:        16,
			to:          17,
			description: "extra token '}' encountered",
		},
		{
			name:        "invalid character",
			input:       "fn main() { # }",
			kind:        ParseInvalidToken,
			from:        12,
			to:          13,
			description: "Unexpected character #",
		},
		{
			name:  "unterminated string",
			input: `fn main() { "abc }`,
			kind:  ParseInvalidToken,
			from:  12,
			to:    18,
		},
		{
			name:        "duplicate function",
			input:       "fn f() { 1 } fn f() { 2 }",
			kind:        ParseDuplicateFunction,
			from:        13,
			to:          25,
			description: "duplicate function f",
		},
		{
			name:  "block ends with a statement",
			input: "fn main() { x = 1; }",
			kind:  ParseUnrecognizedToken,
			from:  19,
			to:    20,
		},
		{
			name:  "empty block",
			input: "fn main() {}",
			kind:  ParseUnrecognizedToken,
			from:  11,
			to:    12,
		},
		{
			name:        "untyped parameter",
			input:       "fn f(a) { a }",
			kind:        ParseUnrecognizedToken,
			from:        6,
			to:          7,
			description: `unexpected token ")", expected ":"`,
		},
		{
			name:  "unknown type",
			input: "fn f(a: int) { a }",
			kind:  ParseUnrecognizedToken,
			from:  8,
			to:    11,
			description: `unexpected token Ident("int"), expected ` +
				`"i32","bool","String"`,
		},
		{
			name:  "missing else body",
			input: "fn main() { if x { 1 } else 2 }",
			kind:  ParseUnrecognizedToken,
			from:  28,
			to:    29,
		},
		{
			name:  "statement outside function",
			input: "x = 1;",
			kind:  ParseUnrecognizedToken,
			from:  0,
			to:    1,
		},
		{
			name:  "missing semicolon between statements",
			input: "fn main() { x = 1 x }",
			kind:  ParseUnrecognizedToken,
			from:  18,
			to:    19,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}

			if pe.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", pe.Kind, tt.kind)
			}

			if pe.From != tt.from || pe.To != tt.to {
				t.Errorf("span = %d..%d, want %d..%d", pe.From, pe.To, tt.from, tt.to)
			}

			if tt.description != "" && pe.Description != tt.description {
				t.Errorf("Description = %s\nwant %s", pe.Description, tt.description)
			}

			if pe.Source != tt.input {
				t.Errorf("Source = %q, want %q", pe.Source, tt.input)
			}
		})
	}
}

// TestParseError_WrapsLexError verifies lexical errors remain reachable.
func TestParseError_WrapsLexError(t *testing.T) {
	_, err := Parse("fn main() { 99999999999 }")

	var le *LexError
	if !errors.As(err, &le) {
		t.Fatalf("Parse() error = %v, want wrapped *LexError", err)
	}

	if le.Kind != LexIntegerOverflow {
		t.Errorf("Kind = %v, want %v", le.Kind, LexIntegerOverflow)
	}
}

// TestParseError_Format verifies the caret diagnostic.
func TestParseError_Format(t *testing.T) {
	src := "fn main() {\n  1 +\n}"

	_, err := Parse(src)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}

	want := "line 3, column 1: " + pe.Description + "\n" +
		"  3 | }\n" +
		"      ^\n"

	if got := pe.Format(); got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

// TestParseBlock verifies standalone block parsing.
func TestParseBlock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		stmts   int
		hasExpr bool
	}{
		{name: "empty", input: "", stmts: 0, hasExpr: false},
		{name: "expression", input: "1 + 2", stmts: 0, hasExpr: true},
		{name: "statements only", input: "x = 1; f(x);", stmts: 2, hasExpr: false},
		{name: "statements and expression", input: "x = 1; x", stmts: 1, hasExpr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blk, err := ParseBlock(tt.input)
			if err != nil {
				t.Fatalf("ParseBlock() error = %v", err)
			}

			if len(blk.Stmts) != tt.stmts {
				t.Errorf("got %d statements, want %d", len(blk.Stmts), tt.stmts)
			}

			if (blk.Expr != nil) != tt.hasExpr {
				t.Errorf("has expression = %v, want %v", blk.Expr != nil, tt.hasExpr)
			}
		})
	}

	if _, err := ParseBlock("1 }"); err == nil {
		t.Error("ParseBlock(\"1 }\") error = nil, want error")
	}
}

// TestParseString_Cache verifies cached parses share one program.
func TestParseString_Cache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	src := "fn main() { 42 }"

	first, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	second, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if first != second {
		t.Error("cached ParseString() returned distinct programs")
	}

	uncached, err := ParseString(t.Context(), src, WithCache(false))
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if uncached == first {
		t.Error("ParseString(WithCache(false)) returned the cached program")
	}

	// Errors are cached too.
	for range 2 {
		if _, err := ParseString(t.Context(), "fn"); err == nil {
			t.Error("ParseString(\"fn\") error = nil, want error")
		}
	}
}

// TestParseReader verifies parsing from a reader.
func TestParseReader(t *testing.T) {
	prog, err := ParseReader(t.Context(), strings.NewReader("fn main() { 1 }"))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}

	if _, ok := prog.Function("main"); !ok {
		t.Error("ParseReader() program has no main")
	}
}
