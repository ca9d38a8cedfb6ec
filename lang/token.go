package lang

import (
	"strconv"
)

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// TokenKind identifies the lexical class of a [Token].
type TokenKind int

const (
	TokenInvalid TokenKind = iota

	// Data
	TokenIdent
	TokenString
	TokenInt

	// Keywords
	TokenIf
	TokenElse
	TokenFn

	// Data types
	TokenI32
	TokenBool
	TokenStringType

	TokenTrue
	TokenFalse

	// Symbols
	TokenBang         // !
	TokenBangEqual    // !=
	TokenColon        // :
	TokenComma        // ,
	TokenEqual        // =
	TokenEqualEqual   // ==
	TokenEqualGreater // =>
	TokenSlash        // /
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenMinus        // -
	TokenPlus         // +
	TokenSemi         // ;
	TokenStar         // *
	TokenPercent      // %
	TokenAmpAmp       // &&
	TokenPipePipe     // ||

	// Delimiters
	TokenLParen // (
	TokenRParen // )
	TokenLBrace // {
	TokenRBrace // }
)

var tokenText = [...]string{
	TokenInvalid:      "<invalid>",
	TokenIdent:        "identifier",
	TokenString:       "string",
	TokenInt:          "integer",
	TokenIf:           "if",
	TokenElse:         "else",
	TokenFn:           "fn",
	TokenI32:          "i32",
	TokenBool:         "bool",
	TokenStringType:   "String",
	TokenTrue:         "true",
	TokenFalse:        "false",
	TokenBang:         "!",
	TokenBangEqual:    "!=",
	TokenColon:        ":",
	TokenComma:        ",",
	TokenEqual:        "=",
	TokenEqualEqual:   "==",
	TokenEqualGreater: "=>",
	TokenSlash:        "/",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenMinus:        "-",
	TokenPlus:         "+",
	TokenSemi:         ";",
	TokenStar:         "*",
	TokenPercent:      "%",
	TokenAmpAmp:       "&&",
	TokenPipePipe:     "||",
	TokenLParen:       "(",
	TokenRParen:       ")",
	TokenLBrace:       "{",
	TokenRBrace:       "}",
}

// String returns the source spelling of fixed tokens, or a class name for
// tokens that carry a payload.
func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenText) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}

	return tokenText[k]
}

// quoted returns the token kind as it appears in an expected-token list.
func (k TokenKind) quoted() string {
	switch k {
	case TokenIdent, TokenString, TokenInt:
		return k.String()
	default:
		return strconv.Quote(k.String())
	}
}

// keywords maps reserved words to their dedicated token kinds.
var keywords = map[string]TokenKind{
	"if":     TokenIf,
	"else":   TokenElse,
	"fn":     TokenFn,
	"i32":    TokenI32,
	"bool":   TokenBool,
	"String": TokenStringType,
	"true":   TokenTrue,
	"false":  TokenFalse,
}

// symbols maps every recognized run of symbol characters to its token kind.
var symbols = map[string]TokenKind{
	"!":  TokenBang,
	"!=": TokenBangEqual,
	":":  TokenColon,
	",":  TokenComma,
	"=":  TokenEqual,
	"==": TokenEqualEqual,
	"=>": TokenEqualGreater,
	"/":  TokenSlash,
	">":  TokenGreater,
	">=": TokenGreaterEqual,
	"<":  TokenLess,
	"<=": TokenLessEqual,
	"-":  TokenMinus,
	"+":  TokenPlus,
	";":  TokenSemi,
	"*":  TokenStar,
	"%":  TokenPercent,
	"&&": TokenAmpAmp,
	"||": TokenPipePipe,
}

// Token is a single lexical unit along with its location in the source.
//
// Text holds the identifier name or string literal contents; Int holds the
// value of an integer literal. Fixed tokens carry no payload.
type Token struct {
	Kind TokenKind
	Text string
	Int  int32
	Span Span
}

// String renders the token the way parse errors describe it.
func (t Token) String() string {
	switch t.Kind {
	case TokenIdent:
		return "Ident(" + strconv.Quote(t.Text) + ")"
	case TokenString:
		return "StringValue(" + strconv.Quote(t.Text) + ")"
	case TokenInt:
		return "DecLiteral(" + strconv.FormatInt(int64(t.Int), 10) + ")"
	default:
		return strconv.Quote(t.Kind.String())
	}
}
