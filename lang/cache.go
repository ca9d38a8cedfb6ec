package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parse results keyed by the xxh3 hash of the source.
var globalCache sync.Map

// entry holds the single parse result for one source text.
type entry struct {
	once sync.Once
	prog *Program
	err  error
}

// ParseReader reads all of r and parses it as with [ParseString].
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Program, error) {
	// Wrap reader with async read-ahead so reading overlaps with buffering.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return ParseString(ctx, string(data), opts...)
}

// parseCached parses src once per distinct content and returns the shared
// result on every later call. Cached programs must not be modified; use
// [Program.Clone] to obtain a private copy.
func parseCached(ctx context.Context, src string, o options) (*Program, error) {
	hash := xxh3.HashString(src)
	key := strconv.FormatUint(hash, 36) + ":" + strconv.Itoa(len(src))

	value, hit := globalCache.LoadOrStore(key, new(entry))

	cached, ok := value.(*entry)
	if !ok {
		return parse(ctx, src, o)
	}

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	cached.once.Do(func() {
		cached.prog, cached.err = parse(ctx, src, o)
	})

	return cached.prog, cached.err
}

// ClearCache removes all cached parse results.
func ClearCache() {
	globalCache.Clear()
}
