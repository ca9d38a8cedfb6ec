// Package builtin provides the native functions and host-defined globals
// available to fnscript programs.
//
// Natives are plain Go functions registered by name with [New]. They accept
// any number of arguments and never fail: a call with arguments of the
// wrong kind or count returns unit.
//
// Globals are defined on the command line as "name=expr" pairs and
// evaluated with expr-lang by [ParseGlobals]. Expressions see the host:
// os, arch, target, hostname, user, home and shell are strings, and the
// file, path and env helpers query the filesystem and process environment.
//
//	fnscript run --global 'limit=10 * 4' --global 'home=env("HOME")' prog.fn
//	fnscript run -g 'bin=path.join(home, "bin")' -g 'mac=os == "darwin"' prog.fn
package builtin
