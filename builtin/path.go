package builtin

import (
	"os"

	"github.com/ardnew/mung"

	"github.com/ardnew/fnscript/lang"
)

// pathPrepend prepends dirs to a PATH-like list, removing duplicates.
//
//	path_prepend(env("PATH"), "/opt/bin", "/usr/local/bin")
func pathPrepend(args lang.ArgList) lang.Value {
	list, dirs, ok := pathArgs(args)
	if !ok {
		return lang.Unit()
	}

	return lang.String(mungPrefix(list, dirs...))
}

// pathPrependDirs is like pathPrepend but keeps only items that name
// existing directories.
func pathPrependDirs(args lang.ArgList) lang.Value {
	list, dirs, ok := pathArgs(args)
	if !ok {
		return lang.Unit()
	}

	return lang.String(mungPrefixIf(list, isDir, dirs...))
}

func pathArgs(args lang.ArgList) (string, []string, bool) {
	if len(args) == 0 {
		return "", nil, false
	}

	list, ok := args[0].AsString()
	if !ok {
		return "", nil, false
	}

	dirs, ok := stringArgs(args[1:])

	return list, dirs, ok
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(
	key string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}
