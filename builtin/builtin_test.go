package builtin

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/fnscript/lang"
)

// TestNatives verifies the result of each native for good and bad arguments.
func TestNatives(t *testing.T) {
	natives := New(
		WithOutput(&bytes.Buffer{}),
		WithEnviron([]string{"HOME=/home/gopher", "EMPTY="}),
	)

	tests := []struct {
		name   string
		native string
		args   lang.ArgList
		want   lang.Value
	}{
		{
			name:   "concat mixed",
			native: "concat",
			args:   lang.ArgList{lang.String("n="), lang.Int(3), lang.Bool(true)},
			want:   lang.String("n=3true"),
		},
		{name: "concat none", native: "concat", want: lang.String("")},
		{
			name:   "len counts runes",
			native: "len",
			args:   lang.ArgList{lang.String("héllo")},
			want:   lang.Int(5),
		},
		{name: "len int", native: "len", args: lang.ArgList{lang.Int(1)}, want: lang.Unit()},
		{name: "str int", native: "str", args: lang.ArgList{lang.Int(-7)}, want: lang.String("-7")},
		{name: "str none", native: "str", want: lang.Unit()},
		{
			name:   "upper",
			native: "upper",
			args:   lang.ArgList{lang.String("Go")},
			want:   lang.String("GO"),
		},
		{
			name:   "lower",
			native: "lower",
			args:   lang.ArgList{lang.String("Go")},
			want:   lang.String("go"),
		},
		{
			name:   "trim",
			native: "trim",
			args:   lang.ArgList{lang.String("  x \n")},
			want:   lang.String("x"),
		},
		{
			name:   "contains true",
			native: "contains",
			args:   lang.ArgList{lang.String("haystack"), lang.String("st")},
			want:   lang.Bool(true),
		},
		{
			name:   "contains false",
			native: "contains",
			args:   lang.ArgList{lang.String("haystack"), lang.String("needle")},
			want:   lang.Bool(false),
		},
		{
			name:   "contains one arg",
			native: "contains",
			args:   lang.ArgList{lang.String("haystack")},
			want:   lang.Unit(),
		},
		{
			name:   "env set",
			native: "env",
			args:   lang.ArgList{lang.String("HOME")},
			want:   lang.String("/home/gopher"),
		},
		{
			name:   "env unset",
			native: "env",
			args:   lang.ArgList{lang.String("MISSING")},
			want:   lang.String(""),
		},
		{name: "abs negative", native: "abs", args: lang.ArgList{lang.Int(-4)}, want: lang.Int(4)},
		{name: "abs positive", native: "abs", args: lang.ArgList{lang.Int(4)}, want: lang.Int(4)},
		{
			name:   "abs min int",
			native: "abs",
			args:   lang.ArgList{lang.Int(math.MinInt32)},
			want:   lang.Unit(),
		},
		{
			name:   "min",
			native: "min",
			args:   lang.ArgList{lang.Int(3), lang.Int(-1), lang.Int(2)},
			want:   lang.Int(-1),
		},
		{
			name:   "max",
			native: "max",
			args:   lang.ArgList{lang.Int(3), lang.Int(-1), lang.Int(2)},
			want:   lang.Int(3),
		},
		{name: "max single", native: "max", args: lang.ArgList{lang.Int(9)}, want: lang.Int(9)},
		{name: "max none", native: "max", want: lang.Unit()},
		{
			name:   "min mixed kinds",
			native: "min",
			args:   lang.ArgList{lang.Int(1), lang.String("2")},
			want:   lang.Unit(),
		},
		{
			name:   "path_prepend non-string",
			native: "path_prepend",
			args:   lang.ArgList{lang.String("/usr/bin"), lang.Int(1)},
			want:   lang.Unit(),
		},
		{name: "path_prepend none", native: "path_prepend", want: lang.Unit()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, ok := natives[tt.native]
			if !ok {
				t.Fatalf("native %q not registered", tt.native)
			}

			if got := fn(tt.args); !got.Equal(tt.want) {
				t.Errorf("%s(%v) = %v, want %v", tt.native, tt.args, got, tt.want)
			}
		})
	}
}

// TestNatives_Print verifies the output written by print and println.
func TestNatives_Print(t *testing.T) {
	var buf bytes.Buffer

	natives := New(WithOutput(&buf))

	args := lang.ArgList{lang.String("a"), lang.Int(1), lang.Unit()}

	if got := natives["print"](args); !got.IsUnit() {
		t.Errorf("print() = %v, want unit", got)
	}

	if got := natives["println"](args); !got.IsUnit() {
		t.Errorf("println() = %v, want unit", got)
	}

	natives["println"](nil)

	want := "a1()\na 1 ()\n\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

// TestNatives_PathPrepend verifies directories are added to a list.
func TestNatives_PathPrepend(t *testing.T) {
	natives := New()
	dir := t.TempDir()

	got, ok := natives["path_prepend"](lang.ArgList{
		lang.String("/usr/bin"), lang.String(dir),
	}).AsString()
	if !ok || !strings.Contains(got, dir) {
		t.Errorf("path_prepend() = %q, want it to contain %q", got, dir)
	}

	got, ok = natives["path_prepend_dirs"](lang.ArgList{
		lang.String(""), lang.String(dir),
	}).AsString()
	if !ok || !strings.Contains(got, dir) {
		t.Errorf("path_prepend_dirs() = %q, want it to contain %q", got, dir)
	}
}

// TestSignature verifies every registered native has a signature.
func TestSignature(t *testing.T) {
	natives := New()

	for name := range natives {
		sig, ok := Signature(name)
		if !ok {
			t.Errorf("Signature(%q) missing", name)

			continue
		}

		if !strings.HasPrefix(sig, name+"(") {
			t.Errorf("Signature(%q) = %q, want prefix %q", name, sig, name+"(")
		}
	}

	if got, want := len(Names()), len(natives); got != want {
		t.Errorf("len(Names()) = %d, want %d", got, want)
	}
}

// TestNatives_InScript verifies natives are callable from a program.
func TestNatives_InScript(t *testing.T) {
	var buf bytes.Buffer

	prog, err := lang.Parse(`fn main() { print("len=", len(upper("abc"))); max(1, 5, 3) }`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got, err := lang.Execute(t.Context(), prog, nil, New(WithOutput(&buf)))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !got.Equal(lang.Int(5)) {
		t.Errorf("Execute() = %v, want 5", got)
	}

	if buf.String() != "len=3\n" {
		t.Errorf("output = %q, want %q", buf.String(), "len=3\n")
	}
}

// TestParseGlobals verifies host-side global definitions.
func TestParseGlobals(t *testing.T) {
	environ := []string{"USER=gopher"}

	tests := []struct {
		name    string
		defs    []string
		want    lang.Env
		wantErr error
	}{
		{name: "none", defs: nil, want: lang.Env{}},
		{
			name: "arithmetic",
			defs: []string{"answer=40 + 2"},
			want: lang.Env{"answer": lang.Int(42)},
		},
		{
			name: "chained",
			defs: []string{"a=3", "b=a * 2", "big=b > 5"},
			want: lang.Env{"a": lang.Int(3), "b": lang.Int(6), "big": lang.Bool(true)},
		},
		{
			name: "environment",
			defs: []string{`greeting="hi " + env("USER")`},
			want: lang.Env{"greeting": lang.String("hi gopher")},
		},
		{
			name: "spaces around name",
			defs: []string{" x =1"},
			want: lang.Env{"x": lang.Int(1)},
		},
		{name: "no equals", defs: []string{"answer"}, wantErr: ErrGlobalSyntax},
		{name: "keyword name", defs: []string{"if=1"}, wantErr: ErrGlobalSyntax},
		{name: "leading underscore", defs: []string{"_x=1"}, wantErr: ErrGlobalSyntax},
		{name: "bad expression", defs: []string{"x=1 +"}, wantErr: ErrGlobalCompile},
		{name: "fraction", defs: []string{"x=1.5"}, wantErr: ErrGlobalValue},
		{name: "out of range", defs: []string{"x=10000000000"}, wantErr: ErrGlobalValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGlobals(tt.defs, environ)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseGlobals() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseGlobals() error = %v", err)
			}

			if diff := cmp.Diff(tt.want, got, cmp.Comparer(lang.Value.Equal)); diff != "" {
				t.Errorf("ParseGlobals() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
