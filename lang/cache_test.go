package lang

import (
	"errors"
	"sync"
	"testing"
	"testing/iotest"
)

// TestParseString_CacheConcurrent verifies that concurrent parses of one
// source observe a single shared program.
func TestParseString_CacheConcurrent(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const workers = 16

	src := "fn sq(n: i32) => i32 { n * n } fn main() { sq(7) }"
	progs := make([]*Program, workers)

	var wg sync.WaitGroup

	for i := range workers {
		wg.Go(func() {
			prog, err := ParseString(t.Context(), src)
			if err != nil {
				t.Errorf("ParseString() error = %v", err)

				return
			}

			progs[i] = prog
		})
	}

	wg.Wait()

	for i, prog := range progs[1:] {
		if prog != progs[0] {
			t.Errorf("worker %d parsed a distinct program", i+1)
		}
	}
}

// TestClearCache verifies that clearing the cache forces a fresh parse.
func TestClearCache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	src := "fn main() { true }"

	before, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	ClearCache()

	after, err := ParseString(t.Context(), src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	if before == after {
		t.Error("ParseString() after ClearCache() returned the previous program")
	}
}

// TestParseReader_Error verifies that read failures are reported.
func TestParseReader_Error(t *testing.T) {
	failure := errors.New("disk on fire")

	_, err := ParseReader(t.Context(), iotest.ErrReader(failure))
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("ParseReader() error = %v, want %v", err, ErrReadInput)
	}

	if !errors.Is(err, failure) {
		t.Errorf("ParseReader() error = %v, want wrapped %v", err, failure)
	}
}
