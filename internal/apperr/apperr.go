// Package apperr defines the typed error taxonomy shared by every stool command.
//
// External-process failures are caught where the process is spawned, classified
// into a Kind, optionally annotated with a message, and returned with the
// underlying OS error attached. Nothing in stool retries.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	Unknown Kind = iota

	SshConnectionFailed
	SshAuthenticationFailed
	ServerNotFound
	ExpectCommandFailed

	FileNotFound
	SearchPatternInvalid

	FileTransferFailed

	ConfigLoadFailed
	ConfigParseError

	BrewUpdateFailed
	RustupUpdateFailed

	DockerCommandFailed
	DockerNotInstalled

	AwsCommandFailed
	AwsCliNotInstalled

	CommandExecutionFailed
	InvalidInput
	PermissionDenied
	IoError
	Cancelled
)

var kindText = map[Kind]string{
	Unknown:                 "operation failed",
	SshConnectionFailed:     "SSH connection failed",
	SshAuthenticationFailed: "SSH authentication failed",
	ServerNotFound:          "server not found",
	ExpectCommandFailed:     "expect command failed",
	FileNotFound:            "file not found",
	SearchPatternInvalid:    "invalid search pattern",
	FileTransferFailed:      "file transfer failed",
	ConfigLoadFailed:        "config load failed",
	ConfigParseError:        "config parse error",
	BrewUpdateFailed:        "brew update failed",
	RustupUpdateFailed:      "rustup update failed",
	DockerCommandFailed:     "docker command failed",
	DockerNotInstalled:      "docker not installed",
	AwsCommandFailed:        "AWS command failed",
	AwsCliNotInstalled:      "AWS CLI not installed",
	CommandExecutionFailed:  "command execution failed",
	InvalidInput:            "invalid input",
	PermissionDenied:        "permission denied",
	IoError:                 "I/O error",
	Cancelled:               "operation cancelled",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return kindText[Unknown]
}

// Error is a classified failure with an optional message and source error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind. An empty message renders the kind alone.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind. A nil err still yields a non-nil *Error.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsCancelled reports whether err represents a user-initiated cancellation.
func IsCancelled(err error) bool {
	return Is(err, Cancelled)
}
