package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/fnscript/log"
)

func Example() {
	logger := log.Make(os.Stdout, log.WithTimeLayout("none"), log.WithPretty(false))
	logger.Info("script loaded", slog.String("path", "hello.fn"))
	logger.Debug("not shown")
	// Output:
	// level=INFO msg="script loaded" path=hello.fn
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.With(slog.String("fn", "main")).Trace("call", slog.Int("depth", 1))
	// Output:
	// {"level":"TRACE","msg":"call","fn":"main","depth":1}
}
