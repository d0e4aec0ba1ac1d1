package util

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ExpandHome expands a leading "~" to the current user's home directory,
// keeping a trailing slash. Paths handed to a child without a shell in
// between need this; "~user" forms are rejected by homedir.
func ExpandHome(path string) (string, error) {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(expanded, "/") {
		expanded += "/"
	}
	return expanded, nil
}
