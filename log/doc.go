// Package log provides a leveled, structured logger built on [log/slog].
//
// A [Logger] is configured once with functional options and is immutable
// afterward; [Logger.Wrap] and [Logger.With] derive new loggers. The zero
// Logger discards everything, which lets libraries accept a Logger in their
// options without requiring callers to supply one.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"))
//	logger.Info("script loaded", slog.String("path", path))
//
// Five levels are defined, from [LevelTrace] to [LevelError]. Trace is
// below slog's debug level and is used for per-call diagnostics of the
// interpreter.
//
// Output is either [FormatText] or [FormatJSON]. When the destination is a
// terminal, output is colorized with lipgloss unless disabled with
// [WithPretty].
//
// Package-level functions such as [Info] and [ErrorContext] log through a
// default logger writing to standard error, which [Config] reconfigures.
package log
