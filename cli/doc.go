// Package cli contains the command line interface for fnscript.
//
// # Usage
//
//	fnscript [flags] run SCRIPT [--global NAME=EXPR]... [--result] [--watch]
//	fnscript check SCRIPT
//	fnscript fmt {native,json,yaml,ast,tokens} SCRIPT
//	fnscript repl [SCRIPT]
//	fnscript init [--force]
//	fnscript version
//
// run is the default command, so "fnscript hello.fn" runs hello.fn. A
// SCRIPT of "-" reads standard input.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory (for example ~/.config/fnscript/config.yaml), a flat mapping of
// flag names to values:
//
//	log-level: debug
//	log-format: json
//	max-depth: 10000
//
// Flags on the command line override the file. The init command writes the
// current flag values to it.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout, a time package constant name
//     such as RFC3339, or none
//   - --log-caller: include caller information
//   - --log-pretty: colorize output when standard error is a terminal
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o fnscript .
//
//   - --pprof-mode: profile to collect (allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default
//     ~/.cache/fnscript/pprof); each command writes to a subdirectory
//     named after it, such as run or fmt-json
package cli
