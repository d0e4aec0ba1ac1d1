// Package doctor reports whether the local environment can run every stool
// command: required programs, configuration problems and file posture.
package doctor

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/stool-cli/stool/internal/appconfig"
	"github.com/stool-cli/stool/internal/runner"
	"github.com/stool-cli/stool/internal/security"
	"github.com/stool-cli/stool/internal/util"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

type tool struct {
	name     string
	severity Severity
	usedBy   string
	install  string
}

func tools(cfg appconfig.Config) []tool {
	expectSeverity := SeverityLow
	for _, s := range cfg.Servers {
		if s.Password != "" && strings.TrimSpace(s.KeyPath) == "" {
			expectSeverity = SeverityMedium
			break
		}
	}
	return []tool{
		{"ssh", SeverityHigh, "ssh", "install the OpenSSH client"},
		{"scp", SeverityHigh, "transfer", "install the OpenSSH client"},
		{"expect", expectSeverity, "password authentication", "brew install expect"},
		{"docker", SeverityLow, "docker, aws ecr", "brew install docker"},
		{"aws", SeverityLow, "docker push, aws", "brew install awscli"},
		{"brew", SeverityLow, "update --brew", "see https://brew.sh"},
		{"rustup", SeverityLow, "update --rustup", "see https://rustup.rs"},
	}
}

// Run executes local diagnostics against cfg.
func Run(cfg appconfig.Config, r runner.Runner) Report {
	var issues []Issue

	for _, t := range tools(cfg) {
		if _, err := r.LookPath(t.name); err != nil {
			issues = append(issues, Issue{
				Severity:       t.severity,
				Check:          "binary",
				Target:         t.name,
				Message:        fmt.Sprintf("%s not found in PATH (needed by %s)", t.name, t.usedBy),
				Recommendation: t.install,
			})
		}
	}

	for _, w := range appconfig.Validate(cfg) {
		issues = append(issues, Issue{
			Severity:       SeverityMedium,
			Check:          "config-warning",
			Target:         cfg.Source,
			Message:        w,
			Recommendation: "fix the entry in the config file",
		})
	}

	for _, f := range security.RunLocalAudit(cfg).Findings {
		issues = append(issues, Issue{
			Severity:       Severity(f.Severity),
			Check:          "security-audit",
			Target:         f.Target,
			Message:        f.Message,
			Recommendation: f.Recommendation,
		})
	}

	sort.SliceStable(issues, func(i, j int) bool {
		ri := severityRank(issues[i].Severity)
		rj := severityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if issues[i].Check != issues[j].Check {
			return issues[i].Check < issues[j].Check
		}
		if issues[i].Target != issues[j].Target {
			return issues[i].Target < issues[j].Target
		}
		return issues[i].Message < issues[j].Message
	})
	return Report{Issues: issues}
}

// HasHigh reports whether any issue blocks a core command.
func (r Report) HasHigh() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// WriteText renders the report as an aligned table.
func (r Report) WriteText(w io.Writer) {
	if len(r.Issues) == 0 {
		fmt.Fprintln(w, "no issues found")
		return
	}
	fmt.Fprintf(w, "%-8s %-16s %-28s %s\n", "SEVERITY", "CHECK", "TARGET", "MESSAGE")
	for _, i := range r.Issues {
		fmt.Fprintf(w, "%-8s %-16s %-28s %s\n", i.Severity, i.Check, util.EmptyDash(security.RedactHome(i.Target)), i.Message)
		if i.Recommendation != "" {
			fmt.Fprintf(w, "%-8s %-16s %-28s -> %s\n", "", "", "", i.Recommendation)
		}
	}
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
