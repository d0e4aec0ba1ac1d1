package fsops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/stool-cli/stool/internal/apperr"
)

func memTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		if err := fs.MkdirAll(filepath.Dir(f), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(fs, f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestClassify(t *testing.T) {
	tests := []struct {
		pattern string
		kind    Kind
		expr    string
	}{
		{"main.go", Exact, "main.go"},
		{"*.go", Glob, "*.go"},
		{"file?.txt", Glob, "file?.txt"},
		{".env", Partial, "*.env*"},
		{"readme", Partial, "*readme*"},
		{".*rc", Glob, ".*rc"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := Classify(tt.pattern)
			if err != nil {
				t.Fatal(err)
			}
			if p.Kind != tt.kind || p.Expr != tt.expr {
				t.Fatalf("Classify(%q) = %s %q, want %s %q", tt.pattern, p.Kind, p.Expr, tt.kind, tt.expr)
			}
		})
	}
	if _, err := Classify(""); apperr.KindOf(err) != apperr.SearchPatternInvalid {
		t.Fatalf("expected SearchPatternInvalid, got %v", err)
	}
}

func TestGlobQuotesMetacharacters(t *testing.T) {
	p, err := Classify("a+b(1)*.txt")
	if err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]bool{
		"a+b(1).txt":     true,
		"a+b(1)-old.txt": true,
		"aab(1).txt":     false,
		"a+b1.txt":       false,
		"a+b(1).txt.bak": false,
	} {
		if got := p.Match(name); got != want {
			t.Fatalf("Match(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFind(t *testing.T) {
	fs := memTree(t,
		"/proj/main.go",
		"/proj/README.md",
		"/proj/cmd/tool/main.go",
		"/proj/internal/util.go",
		"/proj/.git/config.go",
		"/proj/.git/main.go",
		"/proj/.hidden.go",
	)
	tests := []struct {
		pattern string
		want    []string
	}{
		{"main.go", []string{"/proj/cmd/tool/main.go", "/proj/main.go"}},
		{"*.go", []string{"/proj/.hidden.go", "/proj/cmd/tool/main.go", "/proj/internal/util.go", "/proj/main.go"}},
		{"util", []string{"/proj/internal/util.go"}},
		{"tool", []string{"/proj/cmd/tool"}},
		{"nothing*", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := Find(fs, tt.pattern, "/proj")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("results mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindMissingRoot(t *testing.T) {
	_, err := Find(afero.NewMemMapFs(), "*.go", "/nope")
	if apperr.KindOf(err) != apperr.FileNotFound {
		t.Fatalf("expected FileNotFound, got %v", err)
	}
}

func TestFindOnDisk(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Find(afero.NewOsFs(), "notes.txt", root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{filepath.Join(root, "notes.txt")}, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestCount(t *testing.T) {
	fs := memTree(t, "/d/a", "/d/b", "/d/sub/c", "/d/.hidden")
	n, err := Count(fs, "/d")
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("count = %d, want 4", n)
	}
	if _, err := Count(fs, "/d/a"); apperr.KindOf(err) != apperr.InvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if _, err := Count(fs, "/missing"); apperr.KindOf(err) != apperr.FileNotFound {
		t.Fatalf("expected FileNotFound, got %v", err)
	}
}
