package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/fnscript/lang"
	"github.com/ardnew/fnscript/log"
)

// Check parses a script without running it.
type Check struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	name := sourceName(c.Source)

	src, err := readSource(c.Source)
	if err != nil {
		return err
	}

	prog, err := lang.ParseString(ctx, src, lang.WithLogger(log.Default()))
	if err != nil {
		return diagnose(stderr(ctx), name, src, err)
	}

	_, hasMain := prog.Function("main")

	log.InfoContext(ctx, "check passed",
		slog.String("source", name),
		slog.Int("functions", len(prog.Functions)),
		slog.Bool("main", hasMain))

	return nil
}
