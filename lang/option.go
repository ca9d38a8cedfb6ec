package lang

import (
	"github.com/ardnew/fnscript/log"
)

// DefaultMaxDepth is the default bound on nested user function calls.
// Zero means unbounded: recursion is limited only by the Go stack.
const DefaultMaxDepth = 0

// options holds the settings shared by parsing and evaluation.
type options struct {
	logger   log.Logger // zero value discards everything
	maxDepth int
	cache    bool
}

// Option configures parsing or evaluation behavior.
type Option func(*options)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxDepth bounds the number of nested user function calls during
// evaluation. Calls beyond the bound fail with [MaxDepthExceeded].
// A depth less than or equal to zero disables the bound.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithCache enables or disables the parse cache used by [ParseString] and
// [ParseReader]. The cache is enabled by default.
func WithCache(enable bool) Option {
	return func(o *options) {
		o.cache = enable
	}
}

// makeOptions returns the defaults with opts applied in order.
func makeOptions(opts ...Option) options {
	o := options{maxDepth: DefaultMaxDepth, cache: true}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
