// Package security audits the local files stool relies on: the config
// directory, ~/.ssh, the AWS config and every configured private key.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/stool-cli/stool/internal/appconfig"
	"github.com/stool-cli/stool/internal/util"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Finding struct {
	Severity       Severity `json:"severity"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type AuditReport struct {
	Findings []Finding `json:"findings"`
}

func (r AuditReport) HasHigh() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// RunLocalAudit inspects file posture for the loaded configuration.
func RunLocalAudit(cfg appconfig.Config) AuditReport {
	var findings []Finding

	passwords := 0
	for _, s := range cfg.Servers {
		if s.Password != "" {
			passwords++
		}
	}
	if passwords > 0 {
		findings = append(findings, Finding{
			Severity:       SeverityLow,
			Target:         cfg.Source,
			Message:        fmt.Sprintf("%d server(s) store a plaintext password", passwords),
			Recommendation: "prefer key_path, or omit the password and type it when prompted",
		})
	}
	if cfg.Source != "" && cfg.Source != appconfig.EmbeddedSource {
		max := os.FileMode(0o644)
		if passwords > 0 {
			max = 0o600
		}
		checkPathPerm(&findings, cfg.Source, max, true)
	}

	if cfgDir, err := appconfig.ConfigDir(); err == nil {
		checkPathPerm(&findings, cfgDir, 0o755, false)
	}
	if sshDir, err := util.ExpandHome("~/.ssh"); err == nil {
		checkPathPerm(&findings, sshDir, 0o700, false)
	}
	if awsConfig, err := util.ExpandHome("~/.aws/config"); err == nil {
		checkPathPerm(&findings, awsConfig, 0o600, true)
	}

	seen := map[string]struct{}{}
	for _, s := range cfg.Servers {
		if s.KeyPath == "" {
			continue
		}
		key, err := util.ExpandHome(s.KeyPath)
		if err != nil {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		checkPathPerm(&findings, key, 0o600, true)
		checkPrivateKey(&findings, key)
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return severityRank(findings[i].Severity) > severityRank(findings[j].Severity)
		}
		if findings[i].Target != findings[j].Target {
			return findings[i].Target < findings[j].Target
		}
		return findings[i].Message < findings[j].Message
	})
	return AuditReport{Findings: findings}
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func checkPathPerm(findings *[]Finding, path string, max os.FileMode, isFile bool) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityLow,
			Target:         path,
			Message:        fmt.Sprintf("unable to inspect permissions: %v", err),
			Recommendation: "verify path and permissions manually",
		})
		return
	}
	mode := st.Mode().Perm()
	if mode&^max != 0 {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		*findings = append(*findings, Finding{
			Severity:       SeverityMedium,
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("restrict permissions to %#o or tighter", max),
		})
	}
}

// checkPrivateKey reports key files ssh will refuse to use. Missing files
// are reported by config validation instead.
func checkPrivateKey(findings *[]Finding, path string) {
	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_, err = ssh.ParseRawPrivateKey(b)
	var missing *ssh.PassphraseMissingError
	if err == nil || errors.As(err, &missing) {
		return
	}
	*findings = append(*findings, Finding{
		Severity:       SeverityHigh,
		Target:         path,
		Message:        fmt.Sprintf("not a usable private key: %v", err),
		Recommendation: "point key_path at the private key file, not the .pub file",
	})
}

// RedactHome replaces the home directory prefix in msg with "~".
func RedactHome(msg string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return msg
	}
	if msg == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(msg, home+string(filepath.Separator)); ok {
		return "~/" + rest
	}
	return msg
}
