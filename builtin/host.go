package builtin

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// hostEnv returns the environment visible to global expressions: host
// facts, filesystem predicates, and path helpers. processEnv backs env().
//
//	os, arch, target, hostname, user, home, shell   string
//	cwd()                                           string
//	env(key)                                        string
//	file.exists(p), file.dir(p), file.regular(p),
//	file.symlink(p)                                 bool
//	path.abs(p), path.join(elem...), path.rel(a, b),
//	path.base(p), path.dir(p)                       string
//	path_prepend(list, dir...)                      string
//	path_prepend_dirs(list, dir...)                 string
func hostEnv(processEnv map[string]string) map[string]any {
	goos, goarch := hostPlatform(processEnv)

	return map[string]any{
		"os":       goos,
		"arch":     goarch,
		"target":   targetTriple(goos, goarch, processEnv["GOARM"]),
		"hostname": hostname(),
		"user":     username(),
		"home":     homeDir(processEnv),
		"shell":    processEnv["SHELL"],

		"cwd": workingDir,
		"env": func(key string) string { return processEnv[key] },

		"file": map[string]any{
			"exists":  fileExists,
			"dir":     isDir,
			"regular": isRegular,
			"symlink": isSymlink,
		},

		"path": map[string]any{
			"abs":  absPath,
			"join": filepath.Join,
			"rel":  relPath,
			"base": filepath.Base,
			"dir":  filepath.Dir,
		},

		"path_prepend": mungPrefix,
		"path_prepend_dirs": func(list string, dirs ...string) string {
			return mungPrefixIf(list, isDir, dirs...)
		},
	}
}

// hostPlatform returns the host OS and architecture in Go's naming,
// honoring GOHOSTOS/GOOS and GOHOSTARCH/GOARCH overrides.
func hostPlatform(processEnv map[string]string) (goos, goarch string) {
	goos, goarch = runtime.GOOS, runtime.GOARCH

	for _, key := range []string{"GOOS", "GOHOSTOS"} {
		if v := processEnv[key]; v != "" {
			goos = v
		}
	}

	for _, key := range []string{"GOARCH", "GOHOSTARCH"} {
		if v := processEnv[key]; v != "" {
			goarch = v
		}
	}

	return goos, goarch
}

// targetTriple names the platform as GCC and LLVM do, e.g. "x86_64-linux".
func targetTriple(goos, goarch, goarm string) string {
	arch := goarch

	switch goarch {
	case "386":
		arch = "i386"
	case "amd64":
		arch = "x86_64"
	case "arm":
		arm, _, _ := strings.Cut(goarm, ",")
		if arm = strings.TrimSpace(arm); arm == "5" || arm == "6" || arm == "7" {
			arch = "armv" + arm
		}
	case "arm64":
		if goos != "darwin" {
			arch = "aarch64"
		}
	case "mipsle":
		arch = "mipsel"
	}

	return arch + "-" + goos
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}

	return name
}

func username() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.Username
}

func homeDir(processEnv map[string]string) string {
	if home := processEnv["HOME"]; home != "" {
		return home
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return home
}

func workingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return absPath(".")
	}

	return cwd
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)

	return err == nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func absPath(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func relPath(from, to string) string {
	p, err := filepath.Rel(absPath(from), absPath(to))
	if err != nil {
		return filepath.Join(from, to)
	}

	return p
}
