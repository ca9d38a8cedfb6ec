package lang

import (
	"io"
	"iter"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer converts source text into a stream of positioned tokens.
//
// Tokens are produced on demand by [Lexer.Next]. Whitespace and line comments
// are skipped. The first lexical error terminates the stream; every later call
// returns the same error. [Lexer.Reset] restarts scanning from the beginning
// of the source.
type Lexer struct {
	src string
	pos int
	err error
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Reset rewinds the lexer to the start of its source.
func (l *Lexer) Reset() {
	l.pos = 0
	l.err = nil
}

// All returns an iterator over the remaining tokens. Iteration stops after
// the end of input or after yielding the first error.
func (l *Lexer) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := l.Next()
			if err == io.EOF {
				return
			}

			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// Tokenize scans all of src, returning every token or the first error.
func Tokenize(src string) ([]Token, error) {
	var toks []Token

	for tok, err := range NewLexer(src).All() {
		if err != nil {
			return toks, err
		}

		toks = append(toks, tok)
	}

	return toks, nil
}

// Next returns the next token. It returns [io.EOF] once the input is
// exhausted; no explicit end-of-file token is ever produced.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	for l.pos < len(l.src) {
		start := l.pos
		r, size := utf8.DecodeRuneInString(l.src[start:])

		switch {
		case unicode.IsSpace(r):
			l.pos += size

			continue

		case isSymbol(r):
			end := l.scan(start, isSymbol)
			run := l.src[start:end]

			if strings.HasPrefix(run, "//") {
				l.pos = l.scan(start, func(r rune) bool { return r != '\n' })

				continue
			}

			kind, ok := symbols[run]
			if !ok {
				return l.fail(&LexError{
					Kind:     LexUnexpectedChar,
					Location: start,
					End:      start + size,
					Char:     r,
					HasChar:  true,
				})
			}

			l.pos = end

			return Token{Kind: kind, Span: Span{start, end}}, nil

		case r == '(' || r == ')' || r == '{' || r == '}':
			l.pos += size

			return Token{Kind: delimiter(r), Span: Span{start, l.pos}}, nil

		case r == '"':
			return l.string(start)

		case isDecDigit(r):
			return l.decimal(start)

		case isIdentStart(r):
			end := l.scan(start, isIdentContinue)
			text := l.src[start:end]
			l.pos = end

			if kind, ok := keywords[text]; ok {
				return Token{Kind: kind, Span: Span{start, end}}, nil
			}

			return Token{Kind: TokenIdent, Text: text, Span: Span{start, end}}, nil

		default:
			return l.fail(&LexError{
				Kind:     LexUnexpectedChar,
				Location: start,
				End:      start + size,
				Char:     r,
				HasChar:  r != utf8.RuneError || size > 1,
			})
		}
	}

	return Token{}, io.EOF
}

func (l *Lexer) fail(err *LexError) (Token, error) {
	l.err = err
	l.pos = len(l.src)

	return Token{}, err
}

// scan returns the offset of the first rune at or after start for which keep
// returns false, or the length of the source.
func (l *Lexer) scan(start int, keep func(rune) bool) int {
	pos := start

	for pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[pos:])
		if !keep(r) {
			break
		}

		pos += size
	}

	return pos
}

// string consumes a double-quoted literal. Escapes are not processed.
func (l *Lexer) string(start int) (Token, error) {
	closing := strings.IndexByte(l.src[start+1:], '"')
	if closing < 0 {
		return l.fail(&LexError{
			Kind:     LexUnterminatedString,
			Location: start,
			End:      len(l.src),
			Char:     '"',
			HasChar:  true,
		})
	}

	end := start + 1 + closing + 1
	l.pos = end

	return Token{
		Kind: TokenString,
		Text: l.src[start+1 : end-1],
		Span: Span{start, end},
	}, nil
}

// decimal consumes an integer literal that must fit in an int32.
func (l *Lexer) decimal(start int) (Token, error) {
	end := l.scan(start, isDecDigit)
	text := l.src[start:end]

	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return l.fail(&LexError{
			Kind:     LexIntegerOverflow,
			Location: start,
			End:      end,
		})
	}

	l.pos = end

	return Token{Kind: TokenInt, Int: int32(n), Span: Span{start, end}}, nil
}

func delimiter(r rune) TokenKind {
	switch r {
	case '(':
		return TokenLParen
	case ')':
		return TokenRParen
	case '{':
		return TokenLBrace
	default:
		return TokenRBrace
	}
}

// Character classification

func isSymbol(r rune) bool {
	switch r {
	case '!', ':', ',', '.', '=', '/', '>', '<', '-', '+', ';', '*', '%', '&', '|':
		return true
	}

	return false
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || isDecDigit(r) || r == '_'
}

func isDecDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsIdent reports whether s lexes as a single identifier token.
func IsIdent(s string) bool {
	for i, r := range s {
		if (i == 0 && !isIdentStart(r)) || !isIdentContinue(r) {
			return false
		}
	}

	_, reserved := keywords[s]

	return s != "" && !reserved
}
