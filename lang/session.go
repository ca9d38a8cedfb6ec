package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// Session evaluates a sequence of standalone inputs against one program, as
// an interactive shell does. Function definitions extend or replace the
// session's functions; statements and expressions run as the body of an
// anonymous function whose locals persist from one input to the next.
//
// A Session is not safe for concurrent use.
type Session struct {
	program *Program
	globals Env
	natives Natives
	locals  Env
	opts    options
}

// NewSession returns a session over a private copy of program's function
// table. program may be nil.
func NewSession(
	program *Program,
	globals Env,
	natives Natives,
	opts ...Option,
) *Session {
	if program == nil {
		program = NewProgram()
	}

	return &Session{
		program: program.Clone(),
		globals: globals,
		natives: natives,
		locals:  make(Env),
		opts:    makeOptions(opts...),
	}
}

// Eval evaluates input. Input beginning with the fn keyword is parsed as one
// or more function definitions and evaluates to unit. Any other input is
// parsed as a block whose trailing expression, if present, is the result.
func (s *Session) Eval(ctx context.Context, input string) (Value, error) {
	if tok, err := NewLexer(input).Next(); err == nil && tok.Kind == TokenFn {
		return Unit(), s.define(ctx, input)
	}

	blk, err := ParseBlock(input)
	if err != nil {
		return Value{}, err
	}

	in := newInterpreter(ctx, s.program, s.globals, s.natives, s.opts)

	return in.block(blk, s.locals)
}

func (s *Session) define(ctx context.Context, input string) error {
	prog, err := Parse(input)
	if err != nil {
		return err
	}

	for fn := range prog.All() {
		replaced := s.program.Define(fn)

		s.opts.logger.TraceContext(ctx, "define",
			slog.String("function", fn.Name),
			slog.Bool("replaced", replaced))
	}

	return nil
}

// Program returns the session's functions.
func (s *Session) Program() *Program { return s.program }

// Replace swaps the session's functions for a private copy of program's.
// Session variables are kept.
func (s *Session) Replace(program *Program) {
	if program == nil {
		program = NewProgram()
	}

	s.program = program.Clone()
}

// Natives returns the native table the session calls into.
func (s *Session) Natives() Natives { return s.natives }

// Locals returns a copy of the variables assigned so far.
func (s *Session) Locals() Env { return maps.Clone(s.locals) }

// Clear forgets all session variables.
func (s *Session) Clear() { clear(s.locals) }

// Names returns every name the session can resolve: functions, natives,
// globals and locals, sorted and without duplicates.
func (s *Session) Names() []string {
	names := slices.Collect(maps.Keys(s.program.Functions))
	names = slices.AppendSeq(names, maps.Keys(s.natives))
	names = slices.AppendSeq(names, maps.Keys(s.globals))
	names = slices.AppendSeq(names, maps.Keys(s.locals))

	slices.Sort(names)

	return slices.Compact(names)
}
