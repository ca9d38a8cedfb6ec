package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Parse parses src into a [Program]. It fails with a *[ParseError] describing
// the first syntax problem found.
func Parse(src string) (*Program, error) {
	return newParser(src).program()
}

// ParseString parses src into a [Program]. Unless disabled with [WithCache],
// results are cached by source content so repeated parses of the same text
// share one immutable tree.
func ParseString(
	ctx context.Context,
	src string,
	opts ...Option,
) (*Program, error) {
	o := makeOptions(opts...)

	o.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(src)))

	if o.cache {
		return parseCached(ctx, src, o)
	}

	return parse(ctx, src, o)
}

// parse is the uncached parsing implementation.
func parse(ctx context.Context, src string, o options) (*Program, error) {
	prog, err := Parse(src)
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("function_count", len(prog.Functions)))

	return prog, nil
}

// ParseBlock parses src as the body of a block: zero or more statements
// followed by an optional trailing expression. A missing trailing expression
// leaves Block.Expr nil.
func ParseBlock(src string) (*Block, error) {
	return newParser(src).block(TokenInvalid, true)
}

// parser is a recursive-descent parser over a lazily scanned token stream
// with up to two tokens of lookahead.
type parser struct {
	lex  *Lexer
	src  string
	buf  []Token // lookahead, buf[0] is the current token
	err  error   // lexical error that ended the stream, if any
	done bool    // lexer is exhausted or failed
	prog *Program
}

func newParser(src string) *parser {
	return &parser{lex: NewLexer(src), src: src, buf: make([]Token, 0, 2)}
}

// fill scans until n tokens are buffered or the stream ends.
func (p *parser) fill(n int) {
	for len(p.buf) < n && !p.done {
		tok, err := p.lex.Next()

		switch {
		case errors.Is(err, io.EOF):
			p.done = true
		case err != nil:
			p.err = err
			p.done = true
		default:
			p.buf = append(p.buf, tok)
		}
	}
}

// peek returns the token i positions ahead of the current one.
func (p *parser) peek(i int) (Token, bool) {
	p.fill(i + 1)

	if i < len(p.buf) {
		return p.buf[i], true
	}

	return Token{}, false
}

// is reports whether the current token has kind k.
func (p *parser) is(k TokenKind) bool {
	tok, ok := p.peek(0)

	return ok && tok.Kind == k
}

// atEnd reports whether the stream ended cleanly with no token left.
func (p *parser) atEnd() bool {
	_, ok := p.peek(0)

	return !ok && p.err == nil
}

// next consumes and returns the current token.
func (p *parser) next() Token {
	tok, _ := p.peek(0)
	p.buf = p.buf[1:]

	return tok
}

// accept consumes the current token if it has kind k.
func (p *parser) accept(k TokenKind) (Token, bool) {
	if p.is(k) {
		return p.next(), true
	}

	return Token{}, false
}

// expect consumes a token of kind k or fails.
func (p *parser) expect(k TokenKind) (Token, error) {
	if tok, ok := p.accept(k); ok {
		return tok, nil
	}

	return Token{}, p.unexpected(k)
}

// unexpected builds the error for the current position given the set of
// token kinds that would have been accepted there.
func (p *parser) unexpected(expected ...TokenKind) error {
	want := make([]string, len(expected))
	for i, k := range expected {
		want[i] = k.quoted()
	}

	if tok, ok := p.peek(0); ok {
		return &ParseError{
			Kind: ParseUnrecognizedToken,
			From: tok.Span.Start,
			To:   tok.Span.End,
			Description: "unexpected token " + tok.String() +
				", expected " + strings.Join(want, ","),
			Expected: want,
			Source:   p.src,
		}
	}

	if p.err != nil {
		return p.invalid()
	}

	return &ParseError{
		Kind:        ParseUnrecognizedEOF,
		From:        len(p.src),
		To:          len(p.src),
		Description: "unexpected end of file, expecting " + strings.Join(want, ", "),
		Expected:    want,
		Source:      p.src,
	}
}

// invalid converts the pending lexical error into a parse error.
func (p *parser) invalid() error {
	pe := &ParseError{
		Kind:        ParseInvalidToken,
		Description: "invalid token",
		Source:      p.src,
		Err:         p.err,
	}

	var le *LexError
	if errors.As(p.err, &le) {
		pe.From, pe.To = le.Location, le.End
		pe.Description = le.Description()

		if le.Kind == LexUnexpectedChar {
			pe.To = le.Location + 1
		}
	}

	return pe
}

// program := function*
func (p *parser) program() (*Program, error) {
	p.prog = NewProgram()

	for !p.atEnd() {
		if tok, ok := p.peek(0); ok &&
			(tok.Kind == TokenRBrace || tok.Kind == TokenRParen) {
			return nil, &ParseError{
				Kind:        ParseExtraToken,
				From:        tok.Span.Start,
				To:          tok.Span.End,
				Description: "extra token '" + tok.Kind.String() + "' encountered",
				Source:      p.src,
			}
		}

		fn, err := p.function()
		if err != nil {
			return nil, err
		}

		if _, dup := p.prog.Function(fn.Name); dup {
			return nil, &ParseError{
				Kind:        ParseDuplicateFunction,
				From:        fn.Span.Start,
				To:          fn.Span.End,
				Description: "duplicate function " + fn.Name,
				Source:      p.src,
			}
		}

		p.prog.Define(fn)
	}

	return p.prog, nil
}

// function := "fn" ident "(" (param ("," param)*)? ")" ("=>" type)? "{" block "}"
func (p *parser) function() (*Function, error) {
	kw, err := p.expect(TokenFn)
	if err != nil {
		return nil, err
	}

	name, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	fn := &Function{Name: name.Text}

	if !p.is(TokenRParen) {
		for {
			param, err := p.param()
			if err != nil {
				return nil, err
			}

			fn.Params = append(fn.Params, param)

			if _, ok := p.accept(TokenComma); !ok {
				break
			}
		}
	}

	if _, ok := p.accept(TokenRParen); !ok {
		return nil, p.unexpected(TokenRParen, TokenComma)
	}

	if _, ok := p.accept(TokenEqualGreater); ok {
		if fn.Result, err = p.typ(); err != nil {
			return nil, err
		}
	}

	if _, ok := p.accept(TokenLBrace); !ok {
		if fn.Result == TypeNone {
			return nil, p.unexpected(TokenEqualGreater, TokenLBrace)
		}

		return nil, p.unexpected(TokenLBrace)
	}

	if fn.Body, err = p.block(TokenRBrace, false); err != nil {
		return nil, err
	}

	end, err := p.expect(TokenRBrace)
	if err != nil {
		return nil, err
	}

	fn.Span = Span{kw.Span.Start, end.Span.End}

	return fn, nil
}

// param := ident ":" type
func (p *parser) param() (Param, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return Param{}, err
	}

	if _, err := p.expect(TokenColon); err != nil {
		return Param{}, err
	}

	t, err := p.typ()
	if err != nil {
		return Param{}, err
	}

	return Param{Name: name.Text, Type: t, Value: Absent(t.Kind())}, nil
}

// type := "i32" | "bool" | "String"
func (p *parser) typ() (Type, error) {
	switch {
	case p.is(TokenI32):
		p.next()

		return TypeI32, nil
	case p.is(TokenBool):
		p.next()

		return TypeBool, nil
	case p.is(TokenStringType):
		p.next()

		return TypeString, nil
	}

	return TypeNone, p.unexpected(TokenI32, TokenBool, TokenStringType)
}

// block := stmt* expr
//
// The block ends before a token of kind end, or at end of input when end is
// TokenInvalid. The closing token is not consumed. With optTail set, the
// trailing expression may be omitted.
func (p *parser) block(end TokenKind, optTail bool) (*Block, error) {
	blk := new(Block)

	closed := func() bool {
		if end == TokenInvalid {
			return p.atEnd()
		}

		return p.is(end)
	}

	for {
		if optTail && closed() {
			return blk, nil
		}

		if stmt, ok, err := p.assignment(); err != nil {
			return nil, err
		} else if ok {
			blk.Stmts = append(blk.Stmts, stmt)

			continue
		}

		x, err := p.expr()
		if err != nil {
			return nil, err
		}

		if _, ok := p.accept(TokenSemi); ok {
			blk.Stmts = append(blk.Stmts, &ExprStmt{X: x})

			continue
		}

		if closed() {
			blk.Expr = x

			return blk, nil
		}

		want := append(operatorKinds(), TokenSemi)
		if end != TokenInvalid {
			want = append(want, end)
		}

		return nil, p.unexpected(want...)
	}
}

// assignment parses ident "=" expr ";" when the next two tokens begin one.
func (p *parser) assignment() (Stmt, bool, error) {
	name, ok := p.peek(0)
	if !ok || name.Kind != TokenIdent {
		return nil, false, nil
	}

	if eq, ok := p.peek(1); !ok || eq.Kind != TokenEqual {
		return nil, false, nil
	}

	p.next()
	p.next()

	x, err := p.expr()
	if err != nil {
		return nil, false, err
	}

	semi, ok := p.accept(TokenSemi)
	if !ok {
		return nil, false, p.unexpected(append(operatorKinds(), TokenSemi)...)
	}

	return &AssignStmt{
		Name: name.Text,
		X:    x,
		Pos:  Span{name.Span.Start, semi.Span.End},
	}, true, nil
}

// binaryOps maps operator tokens to opcodes.
var binaryOps = map[TokenKind]Opcode{
	TokenPipePipe:     OpOr,
	TokenAmpAmp:       OpAnd,
	TokenEqualEqual:   OpEq,
	TokenBangEqual:    OpNe,
	TokenLess:         OpLt,
	TokenLessEqual:    OpLe,
	TokenGreater:      OpGt,
	TokenGreaterEqual: OpGe,
	TokenPlus:         OpAdd,
	TokenMinus:        OpSub,
	TokenStar:         OpMul,
	TokenSlash:        OpDiv,
	TokenPercent:      OpMod,
}

// operatorKinds lists the binary operator tokens in precedence order,
// lowest first.
func operatorKinds() []TokenKind {
	return []TokenKind{
		TokenPipePipe, TokenAmpAmp,
		TokenEqualEqual, TokenBangEqual,
		TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual,
		TokenPlus, TokenMinus,
		TokenStar, TokenSlash, TokenPercent,
	}
}

// expr := or_expr
func (p *parser) expr() (Expr, error) { return p.binary(precOr) }

// binary parses a left-associative chain of operators at precedence level
// prec, with operands at the next higher level.
func (p *parser) binary(prec int) (Expr, error) {
	if prec > precMul {
		return p.primary()
	}

	left, err := p.binary(prec + 1)
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek(0)
		if !ok {
			return left, nil
		}

		op, ok := binaryOps[tok.Kind]
		if !ok || op.precedence() != prec {
			return left, nil
		}

		p.next()

		right, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{
			Left:  left,
			Op:    op,
			Right: right,
			Pos:   Span{left.Span().Start, right.Span().End},
		}
	}
}

// primary := literal | ident | call | if_expr | "(" expr ")"
func (p *parser) primary() (Expr, error) {
	tok, ok := p.peek(0)
	if !ok {
		return nil, p.unexpected(primaryKinds...)
	}

	switch tok.Kind {
	case TokenInt:
		p.next()

		return &LiteralExpr{Value: Int(tok.Int), Pos: tok.Span}, nil

	case TokenString:
		p.next()

		return &LiteralExpr{Value: String(tok.Text), Pos: tok.Span}, nil

	case TokenTrue, TokenFalse:
		p.next()

		return &LiteralExpr{Value: Bool(tok.Kind == TokenTrue), Pos: tok.Span}, nil

	case TokenIdent:
		if next, ok := p.peek(1); ok && next.Kind == TokenLParen {
			return p.call()
		}

		p.next()

		return &VarExpr{Name: tok.Text, Pos: tok.Span}, nil

	case TokenIf:
		return p.ifExpr()

	case TokenLParen:
		p.next()

		x, err := p.expr()
		if err != nil {
			return nil, err
		}

		if _, ok := p.accept(TokenRParen); !ok {
			return nil, p.unexpected(append(operatorKinds(), TokenRParen)...)
		}

		return x, nil
	}

	return nil, p.unexpected(primaryKinds...)
}

// primaryKinds lists the tokens that can begin an expression.
var primaryKinds = []TokenKind{
	TokenLParen, TokenFalse, TokenIf, TokenTrue,
	TokenIdent, TokenString, TokenInt,
}

// call := ident "(" (expr ("," expr)*)? ")"
func (p *parser) call() (Expr, error) {
	name := p.next()
	p.next() // (

	c := &CallExpr{Name: name.Text}

	if !p.is(TokenRParen) {
		for {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}

			c.Args = append(c.Args, arg)

			if _, ok := p.accept(TokenComma); !ok {
				break
			}
		}
	}

	end, ok := p.accept(TokenRParen)
	if !ok {
		return nil, p.unexpected(append(operatorKinds(), TokenComma, TokenRParen)...)
	}

	c.Pos = Span{name.Span.Start, end.Span.End}

	return c, nil
}

// if_expr := "if" expr "{" block "}" ("else" ("{" block "}" | if_expr))?
func (p *parser) ifExpr() (*IfExpr, error) {
	kw := p.next()

	cond, err := p.expr()
	if err != nil {
		return nil, err
	}

	x := &IfExpr{Cond: cond}

	then, end, err := p.braced()
	if err != nil {
		return nil, err
	}

	x.Then = then
	x.Pos = Span{kw.Span.Start, end}

	if _, ok := p.accept(TokenElse); !ok {
		return x, nil
	}

	switch {
	case p.is(TokenIf):
		nested, err := p.ifExpr()
		if err != nil {
			return nil, err
		}

		x.Else = Else{Kind: ElseIf, If: nested}
		x.Pos.End = nested.Pos.End

	case p.is(TokenLBrace):
		blk, end, err := p.braced()
		if err != nil {
			return nil, err
		}

		x.Else = Else{Kind: ElseBlock, Block: blk}
		x.Pos.End = end

	default:
		return nil, p.unexpected(TokenIf, TokenLBrace)
	}

	return x, nil
}

// braced parses "{" block "}" and returns the block with the offset just
// past the closing brace.
func (p *parser) braced() (*Block, int, error) {
	if _, ok := p.accept(TokenLBrace); !ok {
		return nil, 0, p.unexpected(append(operatorKinds(), TokenLBrace)...)
	}

	blk, err := p.block(TokenRBrace, false)
	if err != nil {
		return nil, 0, err
	}

	end, err := p.expect(TokenRBrace)
	if err != nil {
		return nil, 0, err
	}

	return blk, end.Span.End, nil
}
