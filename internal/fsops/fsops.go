// Package fsops searches and counts directory entries on an afero.Fs.
package fsops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/stool-cli/stool/internal/apperr"
)

// Kind is how a search pattern is matched against entry names.
type Kind int

const (
	Exact Kind = iota
	Glob
	Partial
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Glob:
		return "glob"
	default:
		return "partial"
	}
}

// Pattern is a classified search pattern.
type Pattern struct {
	Kind Kind
	// Expr is the name to compare for Exact, otherwise the glob actually
	// matched ("*p*" for Partial).
	Expr string
	re   *regexp.Regexp
}

// Classify decides the pattern kind. Wildcards win; then a name with an
// extension that is not a dotfile is exact; anything else is a substring.
func Classify(pattern string) (Pattern, error) {
	if pattern == "" {
		return Pattern{}, apperr.New(apperr.SearchPatternInvalid, "pattern is empty")
	}
	p := Pattern{Kind: Partial, Expr: "*" + pattern + "*"}
	switch {
	case strings.ContainsAny(pattern, "*?"):
		p = Pattern{Kind: Glob, Expr: pattern}
	case strings.Contains(pattern, ".") && !strings.HasPrefix(pattern, "."):
		return Pattern{Kind: Exact, Expr: pattern}, nil
	}
	re, err := regexp.Compile(globToRegexp(p.Expr))
	if err != nil {
		return Pattern{}, apperr.Wrap(apperr.SearchPatternInvalid, err, pattern)
	}
	p.re = re
	return p, nil
}

// Match reports whether an entry name matches.
func (p Pattern) Match(name string) bool {
	if p.Kind == Exact {
		return name == p.Expr
	}
	return p.re.MatchString(name)
}

// globToRegexp anchors the glob and quotes everything except "*" and "?".
func globToRegexp(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// Find walks root depth-first in name order and returns the paths of
// entries whose name matches pattern. Directories whose name starts with
// "." are neither matched nor entered.
func Find(fs afero.Fs, pattern, root string) ([]string, error) {
	p, err := Classify(pattern)
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(root); err != nil {
		return nil, statError(err, root)
	}
	var results []string
	if err := walk(fs, root, p, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func walk(fs afero.Fs, dir string, p Pattern, results *[]string) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return apperr.Wrap(apperr.IoError, err, fmt.Sprintf("failed to read directory: %s", dir))
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if p.Match(e.Name()) {
			*results = append(*results, path)
		}
		if e.IsDir() {
			if err := walk(fs, path, p, results); err != nil {
				return err
			}
		}
	}
	return nil
}

// Count returns the number of immediate children of path.
func Count(fs afero.Fs, path string) (int, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return 0, statError(err, path)
	}
	if !info.IsDir() {
		return 0, apperr.Newf(apperr.InvalidInput, "not a directory: %s", path)
	}
	entries, err := afero.ReadDir(fs, path)
	if err != nil {
		return 0, apperr.Wrap(apperr.IoError, err, fmt.Sprintf("failed to read directory: %s", path))
	}
	return len(entries), nil
}

func statError(err error, path string) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return apperr.Wrap(apperr.FileNotFound, err, "path not found: "+path)
	case errors.Is(err, os.ErrPermission):
		return apperr.Wrap(apperr.PermissionDenied, err, path)
	default:
		return apperr.Wrap(apperr.IoError, err, path)
	}
}
