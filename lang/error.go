package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		if lv, ok := e.err.(slog.LogValuer); ok {
			attrs = append(attrs, slog.Any("cause", lv))
		} else {
			attrs = append(attrs, slog.String("cause", e.err.Error()))
		}
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Is reports whether target is the same sentinel as e, so that errors
// refined with Wrap or With still match the value they were derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// ---------------------------------------------------------------------------
// Lexical errors
// ---------------------------------------------------------------------------

// LexErrorKind classifies a [LexError].
type LexErrorKind int

const (
	LexUnexpectedChar LexErrorKind = iota
	LexUnterminatedString
	LexIntegerOverflow
)

// String describes the kind.
func (k LexErrorKind) String() string {
	switch k {
	case LexUnexpectedChar:
		return "unexpected character"
	case LexUnterminatedString:
		return "unterminated string literal"
	case LexIntegerOverflow:
		return "integer literal out of range"
	default:
		return "LexErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// LexError reports invalid input found while scanning.
type LexError struct {
	Kind     LexErrorKind
	Location int  // byte offset where the offending input starts
	End      int  // byte offset just past the offending input
	Char     rune // offending character, valid when HasChar is set
	HasChar  bool
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return strconv.Itoa(e.Location) + ": " + e.Description()
}

// Description returns the message without location, in the form used for
// the description of the enclosing [ParseError].
func (e *LexError) Description() string {
	switch e.Kind {
	case LexUnexpectedChar:
		c := ' '
		if e.HasChar {
			c = e.Char
		}

		return "Unexpected character " + string(c)
	default:
		return e.Kind.String()
	}
}

// LogValue implements slog.LogValuer.
func (e *LexError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Kind.String()),
		slog.Int("location", e.Location),
	}

	if e.HasChar {
		attrs = append(attrs, slog.String("char", string(e.Char)))
	}

	return slog.GroupValue(attrs...)
}

// ---------------------------------------------------------------------------
// Syntax errors
// ---------------------------------------------------------------------------

// ParseErrorKind classifies a [ParseError].
type ParseErrorKind int

const (
	ParseInvalidToken ParseErrorKind = iota
	ParseUnrecognizedToken
	ParseExtraToken
	ParseUnrecognizedEOF
	ParseDuplicateFunction
)

// String describes the kind.
func (k ParseErrorKind) String() string {
	switch k {
	case ParseInvalidToken:
		return "invalid token"
	case ParseUnrecognizedToken:
		return "unrecognized token"
	case ParseExtraToken:
		return "extra token"
	case ParseUnrecognizedEOF:
		return "unexpected end of file"
	case ParseDuplicateFunction:
		return "duplicate function"
	default:
		return "ParseErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseError describes the first syntax problem found in a source text.
// From and To delimit the offending input as byte offsets.
type ParseError struct {
	Kind        ParseErrorKind
	From        int
	To          int
	Description string
	Expected    []string // tokens acceptable at From, when known
	Source      string   // the complete source text, for diagnostics
	Err         error    // underlying *LexError for ParseInvalidToken
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return strconv.Itoa(e.From) + ".." + strconv.Itoa(e.To) + ": " + e.Description
}

// Unwrap returns the lexical error behind an invalid token, if any.
func (e *ParseError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Description),
		slog.String("kind", e.Kind.String()),
		slog.Int("from", e.From),
		slog.Int("to", e.To),
	}

	if e.Source != "" {
		line, col := LineColumn(e.Source, e.From)
		attrs = append(attrs, slog.Int("line", line), slog.Int("column", col))
	}

	return slog.GroupValue(attrs...)
}

// Format renders the error with the offending source line and a caret
// pointing at the error location.
func (e *ParseError) Format() string {
	return Diagnostic(e.Source, e.From, e.Description)
}

// ---------------------------------------------------------------------------
// Runtime errors
// ---------------------------------------------------------------------------

// RuntimeErrorKind classifies a [RuntimeError].
type RuntimeErrorKind int

const (
	UndefinedVariable RuntimeErrorKind = iota
	UndefinedFunction
	InvalidOpcode
	InvalidOperands
	BooleanExpected
	WrongNumberOfArguments
	NoMain
	DivisionByZero
	IntegerOverflow
	MaxDepthExceeded
	Canceled
)

// String describes the kind.
func (k RuntimeErrorKind) String() string {
	switch k {
	case UndefinedVariable:
		return "Undefined variable"
	case UndefinedFunction:
		return "Undefined function"
	case InvalidOpcode:
		return "Invalid opcode"
	case InvalidOperands:
		return "Invalid operands"
	case BooleanExpected:
		return "Expected Boolean value"
	case WrongNumberOfArguments:
		return "Wrong number of arguments"
	case NoMain:
		return "Function main wasn't found"
	case DivisionByZero:
		return "Division by zero"
	case IntegerOverflow:
		return "Integer overflow"
	case MaxDepthExceeded:
		return "Maximum call depth exceeded"
	case Canceled:
		return "Execution canceled"
	default:
		return "RuntimeErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Sentinel runtime errors. Any *RuntimeError matches the sentinel of the same
// kind with errors.Is, regardless of name or position.
var (
	ErrUndefinedVariable      = &RuntimeError{Kind: UndefinedVariable}
	ErrUndefinedFunction      = &RuntimeError{Kind: UndefinedFunction}
	ErrInvalidOpcode          = &RuntimeError{Kind: InvalidOpcode}
	ErrInvalidOperands        = &RuntimeError{Kind: InvalidOperands}
	ErrBooleanExpected        = &RuntimeError{Kind: BooleanExpected}
	ErrWrongNumberOfArguments = &RuntimeError{Kind: WrongNumberOfArguments}
	ErrNoMain                 = &RuntimeError{Kind: NoMain}
	ErrDivisionByZero         = &RuntimeError{Kind: DivisionByZero}
	ErrIntegerOverflow        = &RuntimeError{Kind: IntegerOverflow}
	ErrMaxDepthExceeded       = &RuntimeError{Kind: MaxDepthExceeded}
	ErrCanceled               = &RuntimeError{Kind: Canceled}
)

// RuntimeError reports a failure during evaluation. Name holds the variable
// or function involved, when the kind has one; Position is the byte offset of
// the expression being evaluated.
type RuntimeError struct {
	Kind     RuntimeErrorKind
	Name     string
	Position int
	Err      error // context error for Canceled
}

func runtimeError(kind RuntimeErrorKind, pos int) *RuntimeError {
	return &RuntimeError{Kind: kind, Position: pos}
}

func namedError(kind RuntimeErrorKind, name string, pos int) *RuntimeError {
	return &RuntimeError{Kind: kind, Name: name, Position: pos}
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := e.Kind.String()
	if e.Name != "" {
		msg += " " + e.Name
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the context error behind a cancellation.
func (e *RuntimeError) Unwrap() error { return e.Err }

// Is reports whether target is a *RuntimeError of the same kind.
func (e *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)

	return ok && t.Kind == e.Kind
}

// LogValue implements slog.LogValuer.
func (e *RuntimeError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Kind.String()),
		slog.Int("position", e.Position),
	}

	if e.Name != "" {
		attrs = append(attrs, slog.String("name", e.Name))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("cause", e.Err.Error()))
	}

	return slog.GroupValue(attrs...)
}

// Format renders the error against source with the offending line and a
// caret at Position.
func (e *RuntimeError) Format(source string) string {
	return Diagnostic(source, e.Position, "runtime error: "+e.Error())
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// LineColumn converts a byte offset into 1-based line and column numbers.
// Columns count runes.
func LineColumn(source string, offset int) (line, col int) {
	offset = min(max(offset, 0), len(source))
	line = 1 + strings.Count(source[:offset], "\n")
	lineStart := strings.LastIndexByte(source[:offset], '\n') + 1
	col = 1 + len([]rune(source[lineStart:offset]))

	return line, col
}

// Diagnostic formats msg as an error at offset within source, followed by the
// offending line and a caret marking the column.
func Diagnostic(source string, offset int, msg string) string {
	line, col := LineColumn(source, offset)

	var buf strings.Builder

	fmt.Fprintf(&buf, "line %d, column %d: %s\n", line, col, msg)

	lines := strings.Split(source, "\n")
	if line > 0 && line <= len(lines) {
		fmt.Fprintf(&buf, "  %d | %s\n", line, lines[line-1])

		// +5 accounts for: 2 leading spaces + " | " (3 chars)
		lineNumWidth := len(strconv.Itoa(line))
		padding := strings.Repeat(" ", lineNumWidth+5)

		if col > 0 {
			padding += strings.Repeat(" ", col-1)
		}

		buf.WriteString(padding + "^\n")
	}

	return buf.String()
}
