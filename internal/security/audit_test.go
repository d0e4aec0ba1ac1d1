package security

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/crypto/ssh"

	"github.com/stool-cli/stool/internal/appconfig"
	"github.com/stool-cli/stool/internal/model"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	return home
}

func writeKeyPair(t *testing.T, dir string) (private, public string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatal(err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	private = filepath.Join(dir, "id_ed25519")
	public = private + ".pub"
	if err := os.WriteFile(private, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(public, ssh.MarshalAuthorizedKey(sshPub), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(public, 0o644); err != nil {
		t.Fatal(err)
	}
	return private, public
}

func findingFor(r AuditReport, target, substr string) *Finding {
	for i, f := range r.Findings {
		if f.Target == target && strings.Contains(f.Message, substr) {
			return &r.Findings[i]
		}
	}
	return nil
}

func TestRunLocalAudit_KeyChecks(t *testing.T) {
	home := setHome(t)
	sshDir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(sshDir, 0o700); err != nil {
		t.Fatal(err)
	}
	private, public := writeKeyPair(t, sshDir)

	cfg := appconfig.Default()
	cfg.Source = appconfig.EmbeddedSource
	cfg.Servers = model.Registry{
		{Name: "good", Host: "h1", User: "u", KeyPath: "~/.ssh/id_ed25519"},
		{Name: "pub", Host: "h2", User: "u", KeyPath: public},
		{Name: "dup", Host: "h3", User: "u", KeyPath: private},
	}
	report := RunLocalAudit(cfg)

	if f := findingFor(report, private, ""); f != nil {
		t.Fatalf("valid key should be clean, got %+v", f)
	}
	f := findingFor(report, public, "not a usable private key")
	if f == nil || f.Severity != SeverityHigh {
		t.Fatalf("expected high finding for public key, got %+v", report.Findings)
	}
	if findingFor(report, public, "permissions are too broad") == nil {
		t.Fatalf("expected permission finding for 0644 key, got %+v", report.Findings)
	}
	if !report.HasHigh() || report.Findings[0].Severity != SeverityHigh {
		t.Fatalf("findings should be sorted by severity: %+v", report.Findings)
	}
}

func TestRunLocalAudit_PasswordConfig(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, "stool.yaml")
	if err := os.WriteFile(path, []byte("servers: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := appconfig.Default()
	cfg.Source = path
	cfg.Servers = model.Registry{{Name: "legacy", Host: "h", User: "u", Password: "pw"}}

	report := RunLocalAudit(cfg)
	if findingFor(report, path, "plaintext password") == nil {
		t.Fatalf("expected plaintext password finding, got %+v", report.Findings)
	}
	if findingFor(report, path, "permissions are too broad") == nil {
		t.Fatalf("config holding passwords must be 0600, got %+v", report.Findings)
	}

	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}
	if f := findingFor(RunLocalAudit(cfg), path, "permissions"); f != nil {
		t.Fatalf("unexpected finding: %+v", f)
	}
}

func TestRunLocalAudit_SSHDirPermissions(t *testing.T) {
	home := setHome(t)
	sshDir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(sshDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(sshDir, 0o755); err != nil {
		t.Fatal(err)
	}
	report := RunLocalAudit(appconfig.Default())
	if findingFor(report, sshDir, "directory permissions are too broad") == nil {
		t.Fatalf("expected ~/.ssh finding, got %+v", report.Findings)
	}
}

func TestRedactHome(t *testing.T) {
	home := setHome(t)
	if got := RedactHome(filepath.Join(home, ".ssh", "id")); got != "~/.ssh/id" {
		t.Fatalf("got %q", got)
	}
	if got := RedactHome("/etc/hosts"); got != "/etc/hosts" {
		t.Fatalf("got %q", got)
	}
}
