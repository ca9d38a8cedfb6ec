package cmd

import (
	"github.com/ardnew/fnscript/lang"
)

// Error is a command error with structured logging support.
type Error = lang.Error

// NewError returns a sentinel command error with the given message.
func NewError(msg string) *Error { return lang.NewError(msg) }

var (
	ErrReadSource  = NewError("read source")
	ErrParse       = NewError("parse script")
	ErrExecute     = NewError("execute script")
	ErrGlobals     = NewError("define globals")
	ErrWatch       = NewError("watch source")
	ErrWatchStdin  = NewError("cannot watch standard input")
	ErrFormat      = NewError("format script")
	ErrYAMLMarshal = NewError("marshal YAML")
	ErrWriteConfig = NewError("write configuration file")
	ErrFileExists  = NewError("file exists (use --force to overwrite)")
	ErrOpenHistory = NewError("open history")
	ErrMissingVar  = NewError("kong variable undefined")
	ErrNoKongCtx   = NewError("command context unavailable")
)
