package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/fnscript/builtin"
	"github.com/ardnew/fnscript/lang"
	"github.com/ardnew/fnscript/log"
)

// watchDelay coalesces the burst of events an editor produces on save.
const watchDelay = 100 * time.Millisecond

// Run executes the main function of a script.
type Run struct {
	Global   []string `help:"Define a host global as NAME=EXPR (repeatable)"       placeholder:"NAME=EXPR" sep:"none" short:"g"`
	Result   bool     `help:"Print the value returned by main"                                             short:"r"`
	Watch    bool     `help:"Run again whenever the source file changes"                                   short:"w"`
	MaxDepth int      `help:"Bound nested function calls (0 is unbounded)"         default:"0"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	globals, err := builtin.ParseGlobals(r.Global, os.Environ())
	if err != nil {
		return ErrGlobals.Wrap(err)
	}

	log.DebugContext(ctx, "globals defined", slog.Int("count", len(globals)))

	if !r.Watch {
		return r.once(ctx, globals)
	}

	if r.Source == stdinSource {
		return ErrWatchStdin
	}

	return r.watch(ctx, globals)
}

func (r *Run) options() []lang.Option {
	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithMaxDepth(r.MaxDepth),
	}
}

// once reads, parses, and executes the script a single time.
func (r *Run) once(ctx context.Context, globals lang.Env) error {
	name := sourceName(r.Source)

	src, err := readSource(r.Source)
	if err != nil {
		return err
	}

	prog, err := lang.ParseString(ctx, src, r.options()...)
	if err != nil {
		return diagnose(stderr(ctx), name, src, err)
	}

	out := stdout(ctx)

	result, err := lang.Execute(ctx, prog, globals,
		builtin.New(builtin.WithOutput(out)), r.options()...)
	if err != nil {
		return diagnose(stderr(ctx), name, src, err)
	}

	log.DebugContext(ctx, "script complete",
		slog.String("source", name),
		slog.String("result", result.Literal()))

	if r.Result {
		fmt.Fprintln(out, result.Literal())
	}

	return nil
}

// watch runs the script, then runs it again after each change to the file
// until ctx is canceled. Script failures are logged, not returned.
func (r *Run) watch(ctx context.Context, globals lang.Env) error {
	path, err := filepath.Abs(r.Source)
	if err != nil {
		return ErrWatch.Wrap(err).With(slog.String("source", r.Source))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file on save.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return ErrWatch.Wrap(err).With(slog.String("source", path))
	}

	log.InfoContext(ctx, "watching", slog.String("source", path))

	r.report(ctx, r.once(ctx, globals))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != path ||
				ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			log.TraceContext(ctx, "source changed", slog.String("op", ev.Op.String()))

			if timer == nil {
				timer = time.NewTimer(watchDelay)
			} else {
				timer.Reset(watchDelay)
			}

			fire = timer.C

		case <-fire:
			fire = nil

			r.report(ctx, r.once(ctx, globals))

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

func (r *Run) report(ctx context.Context, err error) {
	if err != nil {
		log.ErrorContext(ctx, "run failed", slog.Any("error", err))

		return
	}

	log.DebugContext(ctx, "run complete", slog.String("source", r.Source))
}
