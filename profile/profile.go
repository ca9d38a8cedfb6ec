package profile

import "slices"

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler selects what to profile and where to write the results.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unsupported mode disables
	// profiling.
	Mode string
	// Dir is the output directory. If empty, a temporary directory is used.
	Dir string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Start begins profiling and returns a [Stopper] that must be called to
// write the profile. Both Start and Stop are always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" || !slices.Contains(Modes(), p.Mode) {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
