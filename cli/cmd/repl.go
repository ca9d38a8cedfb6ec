package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/fnscript/builtin"
	"github.com/ardnew/fnscript/cli/cmd/repl"
	"github.com/ardnew/fnscript/lang"
	"github.com/ardnew/fnscript/log"
)

// Repl starts an interactive session, optionally preloading the functions
// of a script.
type Repl struct {
	Global    []string `help:"Define a host global as NAME=EXPR (repeatable)" placeholder:"NAME=EXPR" sep:"none" short:"g"`
	MaxDepth  int      `help:"Bound nested function calls (0 is unbounded)"   default:"0"`
	NoHistory bool     `help:"Do not read or write the history database"`

	Source string `arg:"" help:"Script whose functions are loaded into the session" name:"source" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	globals, err := builtin.ParseGlobals(r.Global, os.Environ())
	if err != nil {
		return ErrGlobals.Wrap(err)
	}

	var prog *lang.Program

	if r.Source != "" {
		src, err := readSource(r.Source)
		if err != nil {
			return err
		}

		prog, err = lang.ParseString(ctx, src, lang.WithLogger(log.Default()))
		if err != nil {
			return diagnose(stderr(ctx), r.Source, src, err)
		}
	}

	history := r.openHistory(ctx)
	defer history.Close()

	return repl.Run(ctx, repl.Config{
		Program: prog,
		Globals: globals,
		History: history,
		Logger:  log.Default(),
		Options: []lang.Option{lang.WithMaxDepth(r.MaxDepth)},
	})
}

// openHistory opens the history database in the cache directory. Failure
// is logged and leaves the session without persistent history.
func (r *Repl) openHistory(ctx context.Context) *repl.History {
	if r.NoHistory {
		return nil
	}

	dir, err := kongVar(ctx, CacheIdentifier)
	if err != nil {
		log.DebugContext(ctx, "history disabled", slog.Any("error", err))

		return nil
	}

	history, err := repl.OpenHistory(filepath.Join(dir, repl.HistoryFile))
	if err != nil {
		log.WarnContext(ctx, "history disabled",
			slog.Any("error", ErrOpenHistory.Wrap(err)))

		return nil
	}

	return history
}
