package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the program in native source syntax to the writer. With
// indent > 0 each statement goes on its own line, indented by indent spaces
// per nesting level; otherwise every function is written on a single line.
// Comments and original whitespace are not preserved, but parsing the output
// yields an equivalent program.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	f := formatter{indent: indent}

	for i, name := range p.Names() {
		if i > 0 && indent > 0 {
			f.WriteByte('\n')
		}

		f.function(p.Functions[name])
		f.WriteByte('\n')
	}

	_, err := io.WriteString(w, f.String())

	return err
}

// FormatJSON writes the program as JSON to the writer.
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(p, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(p)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the program as YAML to the writer.
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatExpr returns the source text of x on a single line.
func FormatExpr(x Expr) string {
	var f formatter

	f.expr(x, 0, false)

	return f.String()
}

// Signature returns the function's header as written in source, without the
// fn keyword: name(a: i32, b: bool) => String.
func (f *Function) Signature() string {
	var sb strings.Builder

	sb.WriteString(f.Name)
	sb.WriteByte('(')

	for i, param := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(param.Name + ": " + param.Type.String())
	}

	sb.WriteByte(')')

	if f.Result != TypeNone {
		sb.WriteString(" => " + f.Result.String())
	}

	return sb.String()
}

// formatter renders AST nodes as source text.
type formatter struct {
	strings.Builder

	indent int
	depth  int
}

func (f *formatter) function(fn *Function) {
	f.WriteString("fn " + fn.Signature() + " ")
	f.block(fn.Body)
}

// newline starts a new line at the current depth, or writes a single space
// in compact mode.
func (f *formatter) newline() {
	if f.indent <= 0 {
		f.WriteByte(' ')

		return
	}

	f.WriteByte('\n')
	f.WriteString(strings.Repeat(" ", f.depth*f.indent))
}

func (f *formatter) block(b *Block) {
	f.WriteByte('{')
	f.depth++

	for _, stmt := range b.Stmts {
		f.newline()

		switch s := stmt.(type) {
		case *AssignStmt:
			f.WriteString(s.Name + " = ")
			f.expr(s.X, 0, false)
		case *ExprStmt:
			f.expr(s.X, 0, false)
		}

		f.WriteByte(';')
	}

	if b.Expr != nil {
		f.newline()
		f.expr(b.Expr, 0, false)
	}

	f.depth--
	f.newline()
	f.WriteByte('}')
}

// expr writes x as an operand of an operator with precedence parent. A binary
// child is parenthesized when it binds more loosely than its parent, or
// equally tightly on the right, since all operators are left-associative.
func (f *formatter) expr(x Expr, parent int, right bool) {
	switch x := x.(type) {
	case *LiteralExpr:
		f.WriteString(x.Value.Literal())

	case *VarExpr:
		f.WriteString(x.Name)

	case *BinaryExpr:
		prec := x.Op.precedence()
		paren := prec < parent || (right && prec == parent)

		if paren {
			f.WriteByte('(')
		}

		f.expr(x.Left, prec, false)
		f.WriteString(" " + x.Op.String() + " ")
		f.expr(x.Right, prec, true)

		if paren {
			f.WriteByte(')')
		}

	case *CallExpr:
		f.WriteString(x.Name + "(")

		for i, arg := range x.Args {
			if i > 0 {
				f.WriteString(", ")
			}

			f.expr(arg, 0, false)
		}

		f.WriteByte(')')

	case *IfExpr:
		f.WriteString("if ")
		f.expr(x.Cond, 0, false)
		f.WriteByte(' ')
		f.block(x.Then)

		switch x.Else.Kind {
		case ElseBlock:
			f.WriteString(" else ")
			f.block(x.Else.Block)
		case ElseIf:
			f.WriteString(" else ")
			f.expr(x.Else.If, 0, false)
		}
	}
}

// Print writes an indented outline of the program's syntax tree, one node per
// line, for debugging.
func (p *Program) Print(w io.Writer) error {
	var sb strings.Builder

	for fn := range p.All() {
		fmt.Fprintf(&sb, "Function %s [%d:%d]\n", fn.Signature(), fn.Span.Start, fn.Span.End)
		printBlock(&sb, fn.Body, 1)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func printBlock(sb *strings.Builder, b *Block, depth int) {
	pad := strings.Repeat("  ", depth)

	for _, stmt := range b.Stmts {
		switch s := stmt.(type) {
		case *AssignStmt:
			fmt.Fprintf(sb, "%sAssign %s\n", pad, s.Name)
			printExpr(sb, s.X, depth+1)
		case *ExprStmt:
			fmt.Fprintf(sb, "%sStmt\n", pad)
			printExpr(sb, s.X, depth+1)
		}
	}

	if b.Expr != nil {
		printExpr(sb, b.Expr, depth)
	}
}

func printExpr(sb *strings.Builder, x Expr, depth int) {
	pad := strings.Repeat("  ", depth)
	span := x.Span()

	switch x := x.(type) {
	case *LiteralExpr:
		fmt.Fprintf(sb, "%sLiteral %s %s [%d:%d]\n",
			pad, x.Value.Kind(), x.Value.Literal(), span.Start, span.End)

	case *VarExpr:
		fmt.Fprintf(sb, "%sVar %s [%d:%d]\n", pad, x.Name, span.Start, span.End)

	case *BinaryExpr:
		fmt.Fprintf(sb, "%sBinary %s [%d:%d]\n", pad, x.Op, span.Start, span.End)
		printExpr(sb, x.Left, depth+1)
		printExpr(sb, x.Right, depth+1)

	case *CallExpr:
		fmt.Fprintf(sb, "%sCall %s [%d:%d]\n", pad, x.Name, span.Start, span.End)

		for _, arg := range x.Args {
			printExpr(sb, arg, depth+1)
		}

	case *IfExpr:
		fmt.Fprintf(sb, "%sIf [%d:%d]\n", pad, span.Start, span.End)
		printExpr(sb, x.Cond, depth+1)
		fmt.Fprintf(sb, "%s  Then\n", pad)
		printBlock(sb, x.Then, depth+2)

		switch x.Else.Kind {
		case ElseBlock:
			fmt.Fprintf(sb, "%s  Else\n", pad)
			printBlock(sb, x.Else.Block, depth+2)
		case ElseIf:
			fmt.Fprintf(sb, "%s  Else\n", pad)
			printExpr(sb, x.Else.If, depth+2)
		}
	}
}
