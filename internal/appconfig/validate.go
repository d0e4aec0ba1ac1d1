package appconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/stool-cli/stool/internal/util"
)

// Validate reports configuration problems that do not prevent loading.
// A server with both a key and a password is accepted; the key is used.
func Validate(cfg Config) []string {
	var warnings []string
	for i, s := range cfg.Servers {
		ref := fmt.Sprintf("servers[%d] %q", i, s.Name)
		if s.Host == "" {
			warnings = append(warnings, ref+": ip is empty")
		}
		if s.User == "" {
			warnings = append(warnings, ref+": user is empty")
		}
		if s.Port != 0 {
			if err := util.ValidatePort(s.Port); err != nil {
				warnings = append(warnings, ref+": "+err.Error())
			}
		}
		if s.KeyPath != "" && s.Password != "" {
			warnings = append(warnings, ref+": both key_path and password are set; key_path is used")
		}
		if s.KeyPath != "" {
			path, err := util.ExpandHome(s.KeyPath)
			if err != nil {
				warnings = append(warnings, ref+": "+err.Error())
			} else if _, err := os.Stat(path); err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: key_path %s not readable", ref, s.KeyPath))
			}
		}
	}
	for i, r := range cfg.ECRRegistries {
		if r.AccountID == "" || r.Region == "" {
			warnings = append(warnings, fmt.Sprintf("ecr_registries[%d] %q: account_id and region are required", i, r.Name))
		}
	}
	for i, p := range cfg.SSOProfiles {
		var missing []string
		for _, f := range []struct{ field, value string }{
			{"name", p.Name},
			{"start_url", p.StartURL},
			{"region", p.Region},
			{"account_id", p.AccountID},
			{"role_name", p.RoleName},
		} {
			if strings.TrimSpace(f.value) == "" {
				missing = append(missing, f.field)
			}
		}
		if len(missing) > 0 {
			warnings = append(warnings, fmt.Sprintf("sso_profiles[%d] %q: missing %s", i, p.Name, strings.Join(missing, ", ")))
		}
	}
	return warnings
}

// LogWarnings emits each validation warning through slog.
func LogWarnings(cfg Config) {
	for _, w := range Validate(cfg) {
		slog.Warn("config", "source", cfg.Source, "problem", w)
	}
}
