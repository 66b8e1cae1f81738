package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Small seams for tests.
var (
	userHomeDir = os.UserHomeDir
	lookupUser  = user.Lookup
)

// ExpandUser replaces a leading "~" or "~name" with the corresponding home
// directory. Paths that cannot be expanded are returned unchanged.
func ExpandUser(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	name, rest, _ := strings.Cut(path[1:], string(filepath.Separator))

	var home string
	if name == "" {
		h, err := userHomeDir()
		if err != nil {
			return path
		}
		home = h
	} else {
		u, err := lookupUser(name)
		if err != nil {
			return path
		}
		home = u.HomeDir
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// ResolvePath expands user shorthand and returns an absolute, cleaned path.
// Symlinks are resolved when possible; an unresolvable or missing target is
// not an error here.
func ResolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrMissingPath
	}
	abs, err := filepath.Abs(ExpandUser(path))
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// ResolveInput resolves path and checks that it exists.
func ResolveInput(path string) (string, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return "", fmt.Errorf("resolve input: %w", err)
	}
	if _, err := os.Stat(resolved); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrInputNotFound, resolved)
		}
		return "", fmt.Errorf("stat input %s: %w", resolved, err)
	}
	return resolved, nil
}
