package aws

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stool-cli/stool/internal/appconfig"
	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/runner"
	"github.com/stool-cli/stool/internal/ui"
)

func testConfig() appconfig.Config {
	cfg := appconfig.Default()
	cfg.ECRRegistries = []model.EcrRegistry{{Name: "prod", AccountID: "123456789012", Region: "ap-northeast-2"}}
	return cfg
}

func TestConfigure(t *testing.T) {
	f := &runner.Fake{}
	if err := New(f, &ui.Scripted{}, &bytes.Buffer{}, testConfig()).Configure(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"aws configure"}, f.Lines()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}

	f = &runner.Fake{Missing: map[string]bool{"aws": true}}
	err := New(f, &ui.Scripted{}, &bytes.Buffer{}, testConfig()).Configure(context.Background())
	if apperr.KindOf(err) != apperr.AwsCliNotInstalled {
		t.Fatalf("expected AwsCliNotInstalled, got %v", err)
	}
}

func TestECRLogin(t *testing.T) {
	f := &runner.Fake{Handle: func(c runner.Call) ([]byte, error) {
		if c.Name == "aws" {
			return []byte("TOKEN123\n"), nil
		}
		return nil, nil
	}}
	var out bytes.Buffer
	err := New(f, &ui.Scripted{Selects: []int{0}}, &out, testConfig()).ECRLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"aws ecr get-login-password --region ap-northeast-2",
		"docker login --username AWS --password-stdin 123456789012.dkr.ecr.ap-northeast-2.amazonaws.com",
	}
	if diff := cmp.Diff(want, f.Lines()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if f.Calls[1].Stdin != "TOKEN123" {
		t.Fatalf("docker stdin = %q", f.Calls[1].Stdin)
	}
	for _, c := range f.Calls {
		if strings.Contains(c.Line(), "TOKEN123") {
			t.Fatalf("token leaked into argv: %s", c.Line())
		}
	}
	if !strings.Contains(out.String(), "Successfully logged in to ECR registry: 123456789012.dkr.ecr.ap-northeast-2.amazonaws.com") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestECRLoginFailures(t *testing.T) {
	f := &runner.Fake{Missing: map[string]bool{"docker": true}}
	err := New(f, &ui.Scripted{}, &bytes.Buffer{}, testConfig()).ECRLogin(context.Background())
	if apperr.KindOf(err) != apperr.DockerNotInstalled {
		t.Fatalf("expected DockerNotInstalled, got %v", err)
	}

	f = &runner.Fake{Handle: runner.FailWhen("aws ecr", errors.New("expired"))}
	err = New(f, &ui.Scripted{Selects: []int{0}}, &bytes.Buffer{}, testConfig()).ECRLogin(context.Background())
	if apperr.KindOf(err) != apperr.AwsCommandFailed {
		t.Fatalf("expected AwsCommandFailed, got %v", err)
	}
	if len(f.Calls) != 1 {
		t.Fatalf("docker login must not run: %v", f.Lines())
	}

	f = &runner.Fake{Handle: runner.FailWhen("docker login", errors.New("denied"))}
	err = New(f, &ui.Scripted{Selects: []int{0}}, &bytes.Buffer{}, testConfig()).ECRLogin(context.Background())
	if apperr.KindOf(err) != apperr.DockerCommandFailed {
		t.Fatalf("expected DockerCommandFailed, got %v", err)
	}
}

func TestECRLoginCancel(t *testing.T) {
	f := &runner.Fake{}
	err := New(f, &ui.Scripted{Selects: []int{2}}, &bytes.Buffer{}, testConfig()).ECRLogin(context.Background())
	if !apperr.IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(f.Calls) != 0 {
		t.Fatalf("nothing should run: %v", f.Lines())
	}
}
