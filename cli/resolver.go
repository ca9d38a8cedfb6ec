package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] that reads a YAML mapping of flag
// names to values:
//
//	log-level: debug
//	log-format: json
//	log_pretty: false
//	max-depth: 1000
//
// Flag names may use hyphens or underscores. Keys that name no flag are
// ignored, and command-line flags override configured values. An empty or
// malformed file configures nothing.
func resolve(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any

	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return config{}, nil //nolint:nilerr
	}

	conf := make(config, len(raw))
	for key, val := range raw {
		conf[key] = flagString(val)
	}

	return conf, nil
}

// config implements [kong.Resolver] over flat YAML mappings.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	return nil, nil
}

// flagString converts a decoded YAML value into the form kong parses.
// Kong requires numbers as strings; sequence elements are converted the
// same way.
func flagString(val any) any {
	switch v := val.(type) {
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		elems := make([]any, len(v))
		for i, elem := range v {
			elems[i] = flagString(elem)
		}

		return elems
	default:
		return v
	}
}
