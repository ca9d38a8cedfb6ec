// Package profile provides optional runtime profiling of the interpreter
// using [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof ./...
//	fnscript --pprof-mode cpu run fib.fn
//	go tool pprof -http=: ~/.cache/fnscript/pprof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// [Stopper], so callers never need to check [Enabled].
//
// Builds with the tag also import [net/http/pprof], which registers the
// /debug/pprof/ handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
