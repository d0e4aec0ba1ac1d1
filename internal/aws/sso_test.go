package aws

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stool-cli/stool/internal/appconfig"
	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/runner"
	"github.com/stool-cli/stool/internal/ui"
)

var devProfile = model.SSOProfile{
	Name:        "dev",
	SessionName: "corp",
	StartURL:    "https://corp.awsapps.com/start",
	Region:      "ap-northeast-2",
	AccountID:   "123456789012",
	RoleName:    "Developer",
	Output:      "json",
}

const existingConfig = `[default]
region = us-east-1

[profile ops]
region = eu-west-1
output = table
`

func TestEnsureProfileCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".aws", "config")
	added, err := EnsureProfile(context.Background(), path, devProfile)
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatal("expected profile to be added")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `[sso-session corp]
sso_start_url = https://corp.awsapps.com/start
sso_region = ap-northeast-2
sso_registration_scopes = sso:account:access

[profile dev]
sso_session = corp
sso_account_id = 123456789012
sso_role_name = Developer
region = ap-northeast-2
output = json
`
	if diff := cmp.Diff(want, string(b)); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureProfileAppendsWithoutRewriting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(strings.TrimSuffix(existingConfig, "\n")), 0o600); err != nil {
		t.Fatal(err)
	}
	legacy := devProfile
	legacy.SessionName = ""
	if _, err := EnsureProfile(context.Background(), path, legacy); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	got := string(b)
	if !strings.HasPrefix(got, strings.TrimSuffix(existingConfig, "\n")+"\n\n[profile dev]\n") {
		t.Fatalf("existing content not preserved:\n%s", got)
	}
	if !strings.Contains(got, "sso_start_url = https://corp.awsapps.com/start\n") {
		t.Fatalf("legacy profile should carry the start url:\n%s", got)
	}
}

func TestEnsureProfileExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(existingConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	ops := devProfile
	ops.Name = "ops"
	ops.SessionName = ""
	added, err := EnsureProfile(context.Background(), path, ops)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatal("existing profile must not be appended again")
	}
	b, _ := os.ReadFile(path)
	if string(b) != existingConfig {
		t.Fatalf("file changed:\n%s", b)
	}
}

func TestEnsureProfileReusesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if _, err := EnsureProfile(context.Background(), path, devProfile); err != nil {
		t.Fatal(err)
	}
	admin := devProfile
	admin.Name = "admin"
	admin.RoleName = "Admin"
	if _, err := EnsureProfile(context.Background(), path, admin); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if n := strings.Count(string(b), "[sso-session corp]"); n != 1 {
		t.Fatalf("session written %d times:\n%s", n, b)
	}
	if !strings.Contains(string(b), "[profile admin]\nsso_session = corp\n") {
		t.Fatalf("second profile missing:\n%s", b)
	}
}

func TestEnsureProfileConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := EnsureProfile(context.Background(), path, devProfile); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	b, _ := os.ReadFile(path)
	if n := strings.Count(string(b), "[profile dev]"); n != 1 {
		t.Fatalf("profile written %d times:\n%s", n, b)
	}
}

func TestHasSection(t *testing.T) {
	content := []byte("[profile  ops]\n[sso-session corp]\n")
	if !hasSection(content, "profile ops") || !hasSection(content, "sso-session corp") {
		t.Fatal("expected sections to be found")
	}
	if hasSection(content, "profile op") {
		t.Fatal("prefix must not match")
	}
}

func TestSSOLogin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	cfg := appconfig.Default()
	cfg.SSOProfiles = []model.SSOProfile{devProfile}
	f := &runner.Fake{}
	var out bytes.Buffer
	a := New(f, &ui.Scripted{Selects: []int{0}}, &out, cfg)
	a.ConfigFile = path
	if err := a.SSOLogin(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"aws sso login --profile dev"}, f.Lines()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "Added profile dev to "+path) {
		t.Fatalf("output = %q", out.String())
	}
}

func TestSSOLoginManualProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	f := &runner.Fake{}
	p := &ui.Scripted{
		Selects: []int{0},
		Inputs:  []string{"sandbox", "https://x.awsapps.com/start", "us-west-2", "999999999999", "ReadOnly"},
	}
	a := New(f, p, &bytes.Buffer{}, appconfig.Default())
	a.ConfigFile = path
	if err := a.SSOLogin(context.Background()); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "[profile sandbox]\nsso_start_url = https://x.awsapps.com/start\n") {
		t.Fatalf("manual profile not written:\n%s", b)
	}
	if diff := cmp.Diff([]string{"aws sso login --profile sandbox"}, f.Lines()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}
