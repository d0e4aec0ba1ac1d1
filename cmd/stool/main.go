// Package main is the entry point for the stool binary.
//
// stool wraps everyday terminal chores behind interactive menus: ssh login,
// scp transfers, brew and rustup updates, docker builds and ECR pushes, AWS
// CLI shortcuts and a small file finder.
//
// Usage:
//
//	stool ssh              # pick a server and connect
//	stool transfer         # upload or download with scp
//	stool docker push      # build, tag and push to ECR
//	stool fs find '*.go'   # search the current directory
//
// The command tree lives in internal/cli; this file only reports errors.
package main

import (
	"fmt"
	"os"

	"github.com/stool-cli/stool/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()

	// Cancellation is already mapped to success inside the command tree.
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
