package builtin

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/fnscript/lang"
)

// Errors returned by [ParseGlobals].
var (
	ErrGlobalSyntax  = lang.NewError("invalid global definition")
	ErrGlobalCompile = lang.NewError("failed to compile global expression")
	ErrGlobalRun     = lang.NewError("failed to evaluate global expression")
	ErrGlobalValue   = lang.NewError("unsupported global value")
)

// ParseGlobals evaluates host-side definitions of the form "name=expr"
// and returns the resulting global environment. Each expression is
// compiled with expr-lang against the host environment described at
// [hostEnv] and may also reference any global defined before it.
//
// Results must be integers within 32-bit range, booleans, or strings.
// environ has the format []string{"KEY=VALUE", ...}; if nil,
// os.Environ() is used.
func ParseGlobals(defs []string, environ []string) (lang.Env, error) {
	processEnv := environMap(environ)
	if processEnv == nil {
		processEnv = environMap(os.Environ())
	}

	env := hostEnv(processEnv)

	globals := make(lang.Env, len(defs))

	for _, def := range defs {
		name, source, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)

		if !ok || !lang.IsIdent(name) {
			return nil, ErrGlobalSyntax.With(slog.String("definition", def))
		}

		program, err := expr.Compile(source, expr.Env(env))
		if err != nil {
			return nil, ErrGlobalCompile.Wrap(err).
				With(slog.String("name", name), slog.String("source", source))
		}

		out, err := expr.Run(program, env)
		if err != nil {
			return nil, ErrGlobalRun.Wrap(err).
				With(slog.String("name", name), slog.String("source", source))
		}

		val, err := toValue(out)
		if err != nil {
			return nil, ErrGlobalValue.Wrap(err).With(slog.String("name", name))
		}

		globals[name] = val
		env[name] = out
	}

	return globals, nil
}

// toValue converts an expr-lang result to a script value.
func toValue(v any) (lang.Value, error) {
	switch v := v.(type) {
	case nil:
		return lang.Unit(), nil
	case bool:
		return lang.Bool(v), nil
	case string:
		return lang.String(v), nil
	case int:
		return intValue(int64(v))
	case int64:
		return intValue(v)
	case int32:
		return lang.Int(v), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return lang.Value{}, fmt.Errorf("number %v is not a 32-bit integer", v)
		}

		return intValue(int64(v))
	default:
		return lang.Value{}, fmt.Errorf("type %T", v)
	}
}

func intValue(n int64) (lang.Value, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return lang.Value{}, fmt.Errorf("integer %d out of 32-bit range", n)
	}

	return lang.Int(int32(n)), nil
}
