//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// Version is the semantic version of the fnscript module embedded at build
// time. It is printed by the version subcommand.
//
//go:embed VERSION
var Version string

// SemVer returns [Version] parsed as a semantic version. A malformed
// VERSION file yields 0.0.0.
var SemVer = sync.OnceValue(
	func() *semver.Version {
		v, err := semver.NewVersion(strings.TrimSpace(Version))
		if err != nil {
			return semver.New(0, 0, 0, "", "")
		}

		return v
	},
)

const (
	// Name is the canonical command and module identifier. It appears in
	// help text and in default config and cache paths.
	Name = "fnscript"
	// Description is a one-line summary used in help output.
	Description = "Interpreter for a small typed scripting language"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
