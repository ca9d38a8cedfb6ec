package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fnscript/lang"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable named key.
func kongVar(ctx context.Context, key string) (string, error) {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return "", ErrNoKongCtx
	}

	val, ok := ktx.Model.Vars()[key]
	if !ok {
		return "", ErrMissingVar.With(slog.String("var", key))
	}

	return val, nil
}

// stdout returns the writer for command output: the kong application's
// stdout when running under kong, os.Stdout otherwise.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stderr is the diagnostic counterpart of [stdout].
func stderr(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// sourceName returns the name of path used in diagnostics.
func sourceName(path string) string {
	if path == stdinSource || path == "" {
		return "<stdin>"
	}

	return path
}

// openSource opens the script at path, or stdin for "-".
func openSource(path string) (io.ReadCloser, error) {
	if path == stdinSource || path == "" {
		return io.NopCloser(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("source", path))
	}

	return file, nil
}

// readSource returns the complete text of the script at path.
func readSource(path string) (string, error) {
	r, err := openSource(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", ErrReadSource.Wrap(err).
			With(slog.String("source", sourceName(path)))
	}

	return string(data), nil
}

// diagnose writes a caret diagnostic for a parse or runtime error in the
// script named name to w, and returns err wrapped for the caller. Other
// errors are returned unchanged.
func diagnose(w io.Writer, name, source string, err error) error {
	var (
		pe *lang.ParseError
		re *lang.RuntimeError
	)

	switch {
	case errors.As(err, &pe):
		fmt.Fprintf(w, "%s: %s", name, pe.Format())

		return ErrParse.Wrap(err).With(slog.String("source", name))

	case errors.As(err, &re):
		fmt.Fprintf(w, "%s: %s", name, re.Format(source))

		return ErrExecute.Wrap(err).With(slog.String("source", name))
	}

	return err
}
