// Package util provides small helpers and constants shared across stool.
// It imports no other internal/* package.
package util

const (
	// DefaultRemoteDir is the remote path offered when uploading.
	DefaultRemoteDir = "~/"

	// DefaultLocalDir is the local path offered when downloading.
	DefaultLocalDir = "~/Downloads/"

	// ExpectTimeoutSeconds bounds each prompt the password automation waits
	// for. It does not bound the interactive session itself.
	ExpectTimeoutSeconds = 30
)
