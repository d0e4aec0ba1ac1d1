package apperr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestErrorRendering(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"kind only", New(InvalidInput, ""), "invalid input"},
		{"with message", New(FileNotFound, "path not found: /nope"), "file not found: path not found: /nope"},
		{"source without message", Wrap(IoError, os.ErrPermission, ""), "I/O error: permission denied"},
		{"message wins over source", Wrap(SshConnectionFailed, os.ErrNotExist, "ssh to a@b"), "SSH connection failed: ssh to a@b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := Wrap(FileTransferFailed, os.ErrClosed, "scp a b")
	wrapped := fmt.Errorf("transfer: %w", base)

	if KindOf(wrapped) != FileTransferFailed {
		t.Fatalf("KindOf = %v, want FileTransferFailed", KindOf(wrapped))
	}
	if !errors.Is(wrapped, os.ErrClosed) {
		t.Fatal("expected source error to remain reachable through Unwrap")
	}
	if KindOf(errors.New("plain")) != Unknown {
		t.Fatal("plain errors should classify as Unknown")
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(New(Cancelled, "")) {
		t.Fatal("expected cancellation")
	}
	if IsCancelled(nil) || IsCancelled(New(InvalidInput, "")) {
		t.Fatal("unexpected cancellation match")
	}
}
