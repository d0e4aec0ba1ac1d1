package update

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/runner"
)

func TestBrewAndRustup(t *testing.T) {
	f := &runner.Fake{}
	var out bytes.Buffer
	u := New(f, &out)
	if err := u.Brew(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := u.Rustup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"brew update", "brew upgrade", "rustup update"}, f.Lines()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBrewStopsAfterFailedUpdate(t *testing.T) {
	f := &runner.Fake{Handle: runner.FailWhen("brew update", errors.New("offline"))}
	err := New(f, &bytes.Buffer{}).Brew(context.Background())
	if apperr.KindOf(err) != apperr.BrewUpdateFailed {
		t.Fatalf("expected BrewUpdateFailed, got %v", err)
	}
	if diff := cmp.Diff([]string{"brew update"}, f.Lines()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAll(t *testing.T) {
	tests := []struct {
		name    string
		fail    []string
		wantErr string
	}{
		{"all succeed", nil, ""},
		{"brew fails", []string{"brew"}, "failed updates: brew"},
		{"rustup fails", []string{"rustup"}, "failed updates: rustup"},
		{"both fail", []string{"brew", "rustup"}, "failed updates: brew, rustup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &runner.Fake{Handle: func(c runner.Call) ([]byte, error) {
				for _, name := range tt.fail {
					if c.Name == name {
						return nil, errors.New("boom")
					}
				}
				return nil, nil
			}}
			var out bytes.Buffer
			err := New(f, &out).All(context.Background())

			if lines := f.Lines(); lines[len(lines)-1] != "rustup update" {
				t.Fatalf("rustup must always be attempted: %v", lines)
			}
			if tt.wantErr == "" {
				if err != nil {
					t.Fatal(err)
				}
				if !strings.Contains(out.String(), "All updates completed successfully") {
					t.Fatalf("output = %q", out.String())
				}
				return
			}
			if apperr.KindOf(err) != apperr.CommandExecutionFailed {
				t.Fatalf("expected CommandExecutionFailed, got %v", err)
			}
			var e *apperr.Error
			if !errors.As(err, &e) || e.Message != tt.wantErr {
				t.Fatalf("message = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestAllKeepsPerUpdaterKinds(t *testing.T) {
	f := &runner.Fake{Handle: func(runner.Call) ([]byte, error) { return nil, errors.New("boom") }}
	err := New(f, &bytes.Buffer{}).All(context.Background())
	var failure *Failure
	if !errors.As(err, &failure) || failure.Name != "brew" {
		t.Fatalf("expected brew failure in chain, got %v", err)
	}
	if apperr.KindOf(failure.Err) != apperr.BrewUpdateFailed {
		t.Fatalf("unexpected inner kind: %v", failure.Err)
	}
}
