package repl

import "github.com/ardnew/fnscript/lang"

// Sentinel errors.
var (
	ErrHistory  = lang.NewError("history database")
	ErrTerminal = lang.NewError("repl requires an interactive terminal")

	ErrEditDeclined = lang.NewError("edit declined")
)
