package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Start_Disabled(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{name: "no mode", p: Profiler{}},
		{name: "unsupported mode", p: Profiler{Mode: "bogus", Dir: t.TempDir()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.p.Start()
			if _, ok := s.(ignore); !ok {
				t.Errorf("Start() = %T, want no-op", s)
			}

			s.Stop()
		})
	}
}

func TestModes(t *testing.T) {
	modes := Modes()

	if !Enabled {
		if len(modes) != 0 {
			t.Errorf("Modes() = %v, want none without the %s tag", modes, Tag)
		}

		return
	}

	if !slices.IsSorted(modes) || !slices.Contains(modes, "cpu") {
		t.Errorf("Modes() = %v, want a sorted list containing cpu", modes)
	}
}
