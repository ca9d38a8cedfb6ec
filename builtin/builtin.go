package builtin

import (
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/fnscript/lang"
)

// config holds the host resources natives may touch.
type config struct {
	output  io.Writer
	environ map[string]string
}

// Option configures the native table.
type Option func(*config)

// WithOutput sets the writer used by print and println.
// The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		c.output = w
	}
}

// WithEnviron sets the process environment visible to the env native.
// The format is []string{"KEY=VALUE", ...}. If nil, os.Environ() is used.
func WithEnviron(environ []string) Option {
	return func(c *config) {
		c.environ = environMap(environ)
	}
}

// New returns the table of natives available to scripts. Natives never
// fail: arguments of the wrong kind or count produce unit.
func New(opts ...Option) lang.Natives {
	c := config{output: os.Stdout}

	for _, opt := range opts {
		opt(&c)
	}

	if c.environ == nil {
		c.environ = environMap(os.Environ())
	}

	return lang.Natives{
		"print":   c.print,
		"println": c.println,
		"concat":  concat,
		"len":     length,
		"str":     str,
		"upper":   mapString(strings.ToUpper),
		"lower":   mapString(strings.ToLower),
		"trim":    mapString(strings.TrimSpace),
		"contains": func(args lang.ArgList) lang.Value {
			s, sub, ok := twoStrings(args)
			if !ok {
				return lang.Unit()
			}

			return lang.Bool(strings.Contains(s, sub))
		},
		"env": c.env,
		"abs": abs,
		"min": extremum(func(a, b int32) bool { return a < b }),
		"max": extremum(func(a, b int32) bool { return a > b }),

		"path_prepend":      pathPrepend,
		"path_prepend_dirs": pathPrependDirs,
	}
}

// signatures describes the arguments each native expects.
var signatures = map[string]string{
	"print":             "print(args...)",
	"println":           "println(args...)",
	"concat":            "concat(args...) => String",
	"len":               "len(s: String) => i32",
	"str":               "str(v) => String",
	"upper":             "upper(s: String) => String",
	"lower":             "lower(s: String) => String",
	"trim":              "trim(s: String) => String",
	"contains":          "contains(s: String, sub: String) => bool",
	"env":               "env(name: String) => String",
	"abs":               "abs(n: i32) => i32",
	"min":               "min(n: i32, more: i32...) => i32",
	"max":               "max(n: i32, more: i32...) => i32",
	"path_prepend":      "path_prepend(list: String, dirs: String...) => String",
	"path_prepend_dirs": "path_prepend_dirs(list: String, dirs: String...) => String",
}

// Signature returns the call signature of the native named name.
func Signature(name string) (string, bool) {
	sig, ok := signatures[name]

	return sig, ok
}

// Names returns the names of all natives in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(signatures))
}

// print writes its arguments with no separator, then a newline.
func (c config) print(args lang.ArgList) lang.Value {
	var sb strings.Builder

	for _, arg := range args {
		sb.WriteString(arg.String())
	}

	fmt.Fprintln(c.output, sb.String())

	return lang.Unit()
}

// println writes its arguments separated by spaces, then a newline.
func (c config) println(args lang.ArgList) lang.Value {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}

	fmt.Fprintln(c.output, strings.Join(parts, " "))

	return lang.Unit()
}

func (c config) env(args lang.ArgList) lang.Value {
	name, ok := oneString(args)
	if !ok {
		return lang.Unit()
	}

	return lang.String(c.environ[name])
}

func concat(args lang.ArgList) lang.Value {
	var sb strings.Builder

	for _, arg := range args {
		sb.WriteString(arg.String())
	}

	return lang.String(sb.String())
}

// length counts runes, not bytes.
func length(args lang.ArgList) lang.Value {
	s, ok := oneString(args)
	if !ok || utf8.RuneCountInString(s) > math.MaxInt32 {
		return lang.Unit()
	}

	return lang.Int(int32(utf8.RuneCountInString(s)))
}

func str(args lang.ArgList) lang.Value {
	if len(args) != 1 {
		return lang.Unit()
	}

	return lang.String(args[0].String())
}

func mapString(f func(string) string) lang.Native {
	return func(args lang.ArgList) lang.Value {
		s, ok := oneString(args)
		if !ok {
			return lang.Unit()
		}

		return lang.String(f(s))
	}
}

func abs(args lang.ArgList) lang.Value {
	if len(args) != 1 {
		return lang.Unit()
	}

	n, ok := args[0].AsInt()
	if !ok || n == math.MinInt32 {
		return lang.Unit()
	}

	if n < 0 {
		n = -n
	}

	return lang.Int(n)
}

// extremum returns the argument for which better holds against every other.
func extremum(better func(a, b int32) bool) lang.Native {
	return func(args lang.ArgList) lang.Value {
		if len(args) == 0 {
			return lang.Unit()
		}

		best, ok := args[0].AsInt()
		if !ok {
			return lang.Unit()
		}

		for _, arg := range args[1:] {
			n, ok := arg.AsInt()
			if !ok {
				return lang.Unit()
			}

			if better(n, best) {
				best = n
			}
		}

		return lang.Int(best)
	}
}

func oneString(args lang.ArgList) (string, bool) {
	if len(args) != 1 {
		return "", false
	}

	return args[0].AsString()
}

func twoStrings(args lang.ArgList) (string, string, bool) {
	if len(args) != 2 {
		return "", "", false
	}

	a, ok := args[0].AsString()
	if !ok {
		return "", "", false
	}

	b, ok := args[1].AsString()

	return a, b, ok
}

// stringArgs collects args as Go strings, failing on any non-string.
func stringArgs(args lang.ArgList) ([]string, bool) {
	out := make([]string, len(args))

	for i, arg := range args {
		s, ok := arg.AsString()
		if !ok {
			return nil, false
		}

		out[i] = s
	}

	return out, true
}

// environMap converts a "KEY=VALUE" string slice to a map.
func environMap(environ []string) map[string]string {
	if environ == nil {
		return nil
	}

	result := make(map[string]string, len(environ))

	for _, kv := range environ {
		if key, val, ok := strings.Cut(kv, "="); ok {
			result[key] = val
		}
	}

	return result
}
