// Package aws wraps the AWS CLI: interactive configure, ECR docker login and
// IAM Identity Center (SSO) login.
package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/stool-cli/stool/internal/appconfig"
	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/runner"
	"github.com/stool-cli/stool/internal/secret"
	"github.com/stool-cli/stool/internal/ui"
)

// AWS runs the aws subcommands.
type AWS struct {
	run    runner.Runner
	prompt ui.Prompter
	out    io.Writer
	cfg    appconfig.Config

	// ConfigFile is the AWS CLI config file SSO profiles are written to.
	// Empty means DefaultConfigFile.
	ConfigFile string
}

func New(r runner.Runner, p ui.Prompter, out io.Writer, cfg appconfig.Config) *AWS {
	if out == nil {
		out = os.Stdout
	}
	return &AWS{run: r, prompt: p, out: out, cfg: cfg}
}

func (a *AWS) requireCLI() error {
	if err := runner.Require(a.run, "aws", apperr.AwsCliNotInstalled); err != nil {
		return apperr.New(apperr.AwsCliNotInstalled, "AWS CLI is not installed. Install it via: brew install awscli")
	}
	return nil
}

// Configure runs "aws configure" on the terminal.
func (a *AWS) Configure(ctx context.Context) error {
	if err := a.requireCLI(); err != nil {
		return err
	}
	if err := a.run.Run(ctx, runner.Cmd{Name: "aws", Args: []string{"configure"}}); err != nil {
		return apperr.Wrap(apperr.AwsCommandFailed, err, runner.Describe("aws configure", err))
	}
	return nil
}

// ECRLogin fetches a registry password with the AWS CLI and hands it to
// "docker login" on stdin. The password is wiped afterwards.
func (a *AWS) ECRLogin(ctx context.Context) error {
	if err := a.requireCLI(); err != nil {
		return err
	}
	if err := runner.Require(a.run, "docker", apperr.DockerNotInstalled); err != nil {
		return apperr.New(apperr.DockerNotInstalled, "Docker is not installed. Install it via: brew install docker")
	}
	reg, err := ui.SelectRegistry(a.prompt, a.cfg.ECRRegistries)
	if err != nil {
		return err
	}

	var out secret.Writer
	err = a.run.Run(ctx, runner.Cmd{Name: "aws", Args: []string{"ecr", "get-login-password", "--region", reg.Region}, Stdout: &out})
	if err != nil {
		out.Wipe()
		return apperr.Wrap(apperr.AwsCommandFailed, err, "failed to get ECR login password")
	}
	token := out.Secret()
	err = token.Use(func(b []byte) error {
		return a.run.Run(ctx, runner.Cmd{
			Name:  "docker",
			Args:  []string{"login", "--username", "AWS", "--password-stdin", reg.URL()},
			Stdin: bytes.NewReader(bytes.TrimSpace(b)),
		})
	})
	if err != nil {
		return apperr.Wrap(apperr.DockerCommandFailed, err, "docker login failed")
	}
	fmt.Fprintf(a.out, "Successfully logged in to ECR registry: %s\n", reg.URL())
	return nil
}
