package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/fnscript/lang"
	"github.com/ardnew/fnscript/log"
)

// Fmt parses a script and writes it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as fnscript source (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Format as abstract syntax tree."`
	Tokens Tokens `cmd:""                    help:"List the tokens of the source."`
}

// parseSource parses the script at path for the fmt subcommand named
// format, writing a diagnostic on failure.
func parseSource(ctx context.Context, path, format string) (*lang.Program, error) {
	r, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	prog, err := lang.ParseReader(ctx, r, lang.WithLogger(log.Default()))
	if err != nil {
		err = diagnose(stderr(ctx), sourceName(path), "", err)

		return nil, ErrFormat.Wrap(err).With(slog.String("format", format))
	}

	return prog, nil
}

// Native formats input as fnscript source.
type Native struct {
	Indent int `default:"4" help:"Indent width for formatted output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, f.Source, "native")
	if err != nil {
		return err
	}

	return prog.Format(ctx, stdout(ctx), f.Indent)
}

// JSON parses input and writes its tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, j.Source, "json")
	if err != nil {
		return err
	}

	return prog.FormatJSON(ctx, stdout(ctx), j.Indent)
}

// YAML parses input and writes its tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, y.Source, "yaml")
	if err != nil {
		return err
	}

	return prog.FormatYAML(ctx, stdout(ctx), y.Indent)
}

// AST formats input as an abstract syntax tree representation.
type AST struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := parseSource(ctx, a.Source, "ast")
	if err != nil {
		return err
	}

	return prog.Print(stdout(ctx))
}

// Tokens lists the tokens of the input, one per line, with their byte
// spans. Lexing stops at the first invalid token.
type Tokens struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := readSource(t.Source)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	for tok, err := range lang.NewLexer(src).All() {
		if err != nil {
			var le *lang.LexError
			if errors.As(err, &le) {
				fmt.Fprint(stderr(ctx), sourceName(t.Source)+": "+
					lang.Diagnostic(src, le.Location, le.Description()))
			}

			return ErrFormat.Wrap(err).With(slog.String("format", "tokens"))
		}

		fmt.Fprintf(w, "%d:%d\t%s\t%s\n",
			tok.Span.Start, tok.Span.End, tok.Kind, tok)
	}

	return nil
}
