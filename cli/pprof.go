//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/fnscript/log"
	"github.com/ardnew/fnscript/pkg"
	"github.com/ardnew/fnscript/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Profile the selected command" placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory; each command writes to its own subdirectory" type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      pkg.CachePath(profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start begins profiling the command selected by ktx, writing into a
// subdirectory of Dir named after the command. The returned func stops the
// profiler and must be called before exit.
func (f pprofConfig) start(ctx context.Context, ktx *kong.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	dir := filepath.Join(f.Dir, profileDirName(ktx))

	attrs := []slog.Attr{
		slog.String("mode", f.Mode),
		slog.String("dir", dir),
	}

	log.DebugContext(ctx, "pprof start", attrs...)

	profiler := profile.Profiler{Mode: f.Mode, Dir: dir, Quiet: true}.Start()

	return func() {
		profiler.Stop()
		log.InfoContext(ctx, "profile written", attrs...)
	}
}

// profileDirName derives a directory name from the selected command path,
// e.g. "run" or "fmt-json".
func profileDirName(ktx *kong.Context) string {
	if ktx == nil {
		return "default"
	}

	var parts []string

	for _, field := range strings.Fields(ktx.Command()) {
		if !strings.HasPrefix(field, "<") {
			parts = append(parts, field)
		}
	}

	if len(parts) == 0 {
		return "default"
	}

	return strings.Join(parts, "-")
}
