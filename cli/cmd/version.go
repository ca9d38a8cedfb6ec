package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ardnew/fnscript/pkg"
)

// Version prints the version of the interpreter.
type Version struct {
	Short bool `help:"Print only the version number" short:"s"`
}

// Run executes the version command.
func (v *Version) Run(ctx context.Context) error {
	ver := pkg.SemVer()

	if v.Short {
		_, err := fmt.Fprintln(stdout(ctx), ver.String())

		return err
	}

	_, err := fmt.Fprintf(stdout(ctx), "%s %s (%s %s/%s)\n",
		pkg.Name, ver.Original(), runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}
