// Package config loads, validates and persists the client configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
//   - ${VAR} expands to the env var value, or empty string if unset
//   - ${VAR:-default} expands to the env var value, or "default" if unset/empty
//   - ${VAR:?message} expands to the env var value, or fails with message
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// ErrRequiredVar is returned when a ${VAR:?message} variable is unset.
var ErrRequiredVar = errors.New("required environment variable not set")

// ExpandEnv replaces variable references in input with environment values.
// Unset variables without a default expand to the empty string.
func ExpandEnv(input string) (string, error) {
	var missing []error
	out := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, op, arg := groups[1], groups[2], groups[3]

		if value, ok := os.LookupEnv(name); ok && value != "" {
			return value
		}
		switch op {
		case "-":
			return arg
		case "?":
			msg := arg
			if msg == "" {
				msg = "must be set"
			}
			missing = append(missing, fmt.Errorf("%w: %s: %s", ErrRequiredVar, name, msg))
		}
		return ""
	})
	if len(missing) > 0 {
		return "", errors.Join(missing...)
	}
	return out, nil
}
