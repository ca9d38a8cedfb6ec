package lang

import (
	"context"
	"log/slog"
)

// Execute runs program by calling its main function with no arguments and
// returns the value main produces.
//
// Variable lookup consults globals before the calling function's locals, so
// a global always shadows a local of the same name. Assignments only ever
// bind locals; globals is never modified. Calls resolve to natives before
// user functions, and natives are not arity-checked.
//
// Execution is synchronous. ctx is checked on entry to every user function
// call; once it is done, execution fails with [Canceled].
func Execute(
	ctx context.Context,
	program *Program,
	globals Env,
	natives Natives,
	opts ...Option,
) (Value, error) {
	in := newInterpreter(ctx, program, globals, natives, makeOptions(opts...))

	main, ok := program.Function("main")
	if !ok {
		return Value{}, runtimeError(NoMain, 0)
	}

	in.logger.TraceContext(ctx, "execute start",
		slog.Int("function_count", len(program.Functions)),
		slog.Int("global_count", len(globals)),
		slog.Int("native_count", len(natives)))

	v, err := in.invoke(main, nil, 0)
	if err != nil {
		in.logger.TraceContext(ctx, "execute failed", slog.Any("error", err))

		return Value{}, err
	}

	in.logger.TraceContext(ctx, "execute complete",
		slog.String("kind", v.Kind().String()),
		slog.String("value", v.String()))

	return v, nil
}

// interpreter holds the state shared by every call within one execution.
// Locals are not part of it: each invocation owns its own map and passes it
// down explicitly.
type interpreter struct {
	options

	ctx     context.Context
	program *Program
	globals Env
	natives Natives
	depth   int
}

func newInterpreter(
	ctx context.Context,
	program *Program,
	globals Env,
	natives Natives,
	o options,
) *interpreter {
	return &interpreter{
		options: o,
		ctx:     ctx,
		program: program,
		globals: globals,
		natives: natives,
	}
}

// invoke calls a user function with already evaluated arguments, binding
// them positionally into a fresh locals map. pos locates the call site.
func (in *interpreter) invoke(fn *Function, args ArgList, pos int) (Value, error) {
	if err := in.ctx.Err(); err != nil {
		return Value{}, &RuntimeError{
			Kind:     Canceled,
			Name:     fn.Name,
			Position: pos,
			Err:      context.Cause(in.ctx),
		}
	}

	if len(args) != fn.Arity() {
		return Value{}, namedError(WrongNumberOfArguments, fn.Name, pos)
	}

	if in.maxDepth > 0 && in.depth >= in.maxDepth {
		return Value{}, namedError(MaxDepthExceeded, fn.Name, pos)
	}

	in.depth++
	defer func() { in.depth-- }()

	locals := make(Env, len(fn.Params))
	for i, param := range fn.Params {
		locals[param.Name] = args[i]
	}

	in.logger.TraceContext(in.ctx, "call",
		slog.String("function", fn.Name),
		slog.Int("depth", in.depth),
		slog.Int("arg_count", len(args)))

	return in.block(fn.Body, locals)
}

// block runs the statements of b in order, then evaluates its trailing
// expression. A block without one evaluates to unit.
func (in *interpreter) block(b *Block, locals Env) (Value, error) {
	for _, stmt := range b.Stmts {
		if err := in.stmt(stmt, locals); err != nil {
			return Value{}, err
		}
	}

	if b.Expr == nil {
		return Unit(), nil
	}

	return in.expr(b.Expr, locals)
}

func (in *interpreter) stmt(s Stmt, locals Env) error {
	switch s := s.(type) {
	case *AssignStmt:
		v, err := in.expr(s.X, locals)
		if err != nil {
			return err
		}

		locals[s.Name] = v

		return nil

	case *ExprStmt:
		_, err := in.expr(s.X, locals)

		return err
	}

	return nil
}

func (in *interpreter) expr(x Expr, locals Env) (Value, error) {
	switch x := x.(type) {
	case *LiteralExpr:
		return x.Value, nil

	case *VarExpr:
		return in.lookup(x, locals)

	case *BinaryExpr:
		l, err := in.expr(x.Left, locals)
		if err != nil {
			return Value{}, err
		}

		r, err := in.expr(x.Right, locals)
		if err != nil {
			return Value{}, err
		}

		v, kind := apply(x.Op, l, r)
		if kind != nil {
			return Value{}, runtimeError(*kind, x.Pos.Start)
		}

		return v, nil

	case *CallExpr:
		return in.call(x, locals)

	case *IfExpr:
		return in.ifExpr(x, locals)
	}

	return Unit(), nil
}

// lookup resolves a variable, globals first.
func (in *interpreter) lookup(x *VarExpr, locals Env) (Value, error) {
	if v, ok := in.globals[x.Name]; ok {
		return v, nil
	}

	if v, ok := locals[x.Name]; ok {
		return v, nil
	}

	return Value{}, namedError(UndefinedVariable, x.Name, x.Pos.Start)
}

// call evaluates the arguments left to right, then dispatches to a native
// or a user function, in that order.
func (in *interpreter) call(x *CallExpr, locals Env) (Value, error) {
	args := make(ArgList, 0, len(x.Args))

	for _, arg := range x.Args {
		v, err := in.expr(arg, locals)
		if err != nil {
			return Value{}, err
		}

		args = append(args, v)
	}

	if native, ok := in.natives[x.Name]; ok {
		in.logger.TraceContext(in.ctx, "native call",
			slog.String("function", x.Name),
			slog.Int("arg_count", len(args)))

		return native(args), nil
	}

	if fn, ok := in.program.Function(x.Name); ok {
		return in.invoke(fn, args, x.Pos.Start)
	}

	return Value{}, namedError(UndefinedFunction, x.Name, x.Pos.Start)
}

func (in *interpreter) ifExpr(x *IfExpr, locals Env) (Value, error) {
	for {
		c, err := in.expr(x.Cond, locals)
		if err != nil {
			return Value{}, err
		}

		cond, ok := c.AsBool()
		if !ok {
			return Value{}, runtimeError(BooleanExpected, x.Cond.Span().Start)
		}

		if cond {
			return in.block(x.Then, locals)
		}

		switch x.Else.Kind {
		case ElseBlock:
			return in.block(x.Else.Block, locals)
		case ElseIf:
			x = x.Else.If
		default:
			return Unit(), nil
		}
	}
}
