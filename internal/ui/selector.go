package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/dispatch"
	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/util"
)

const (
	ManualEntry = "Manual input"
	CancelEntry = "Cancel"
)

// SelectEntry offers entries numbered from 1, followed by "Manual input" and
// "Cancel". Picking "Manual input" calls manual; with a nil manual the entry
// is not shown.
func SelectEntry[T any](p Prompter, prompt string, entries []T, label func(T) string, manual func() (T, error)) (T, error) {
	var zero T
	items := make([]string, 0, len(entries)+2)
	for i, e := range entries {
		items = append(items, fmt.Sprintf("%d. %s", i+1, label(e)))
	}
	if manual != nil {
		items = append(items, ManualEntry)
	}
	items = append(items, CancelEntry)

	idx, err := p.Select(prompt, items)
	if err != nil {
		return zero, err
	}
	switch {
	case idx >= 0 && idx < len(entries):
		return entries[idx], nil
	case manual != nil && idx == len(entries):
		return manual()
	default:
		return zero, ErrCancelled
	}
}

// SelectTarget picks a server from reg or reads one typed by the user. A typed
// target carries no credential.
func SelectTarget(p Prompter, reg model.Registry) (model.Target, error) {
	return SelectEntry(p, "Select server:", reg, model.Target.Label, func() (model.Target, error) {
		return ManualTarget(p)
	})
}

// ManualTarget prompts for a user and an address. The address may carry a
// ":port" suffix.
func ManualTarget(p Prompter) (model.Target, error) {
	user, err := p.Input("Enter username:")
	if err != nil {
		return model.Target{}, err
	}
	addr, err := InputRequired(p, "Enter IP address:")
	if err != nil {
		return model.Target{}, err
	}
	host, port, err := parseHostPort(addr)
	if err != nil {
		return model.Target{}, err
	}
	return model.Target{Name: host, Host: host, User: user, Port: port}, nil
}

// InputDefault returns def when the answer is empty.
func InputDefault(p Prompter, prompt, def string) (string, error) {
	v, err := p.Input(fmt.Sprintf("%s [%s]", prompt, def))
	if err != nil {
		return "", err
	}
	if v = strings.TrimSpace(v); v == "" {
		return def, nil
	}
	return v, nil
}

// InputRequired rejects an empty answer with InvalidInput.
func InputRequired(p Prompter, prompt string) (string, error) {
	v, err := p.Input(prompt)
	if err != nil {
		return "", err
	}
	if v = strings.TrimSpace(v); v == "" {
		return "", apperr.Newf(apperr.InvalidInput, "%s value is required", strings.TrimSuffix(prompt, ":"))
	}
	return v, nil
}

// ResolveCredential returns the credential configured on t. When t has none,
// the user is asked for a password; an empty answer selects default SSH
// authentication.
func ResolveCredential(p Prompter, t model.Target) (dispatch.Credential, error) {
	if t.HasCredential() {
		return dispatch.CredentialFor(t), nil
	}
	s, err := p.Secret(fmt.Sprintf("Password for %s (empty for default SSH authentication):", t.Destination()))
	if err != nil {
		return dispatch.Credential{}, err
	}
	return dispatch.PasswordCredential(s), nil
}

// parseHostPort splits an optional ":port" suffix off addr.
//
//	10.0.0.1       → 10.0.0.1, 0
//	10.0.0.1:2222  → 10.0.0.1, 2222
//	fe80::1        → fe80::1, 0
func parseHostPort(addr string) (string, int, error) {
	addr = strings.TrimSpace(addr)
	if strings.Count(addr, ":") != 1 {
		return addr, 0, nil
	}
	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, apperr.Newf(apperr.InvalidInput, "invalid port %q", portStr)
	}
	if err := util.ValidatePort(port); err != nil {
		return "", 0, apperr.Wrap(apperr.InvalidInput, err, "")
	}
	if host == "" {
		return "", 0, apperr.New(apperr.InvalidInput, "address cannot be empty")
	}
	return host, port, nil
}

// SelectRegistry picks an ECR registry or reads an account id and region.
func SelectRegistry(p Prompter, regs []model.EcrRegistry) (model.EcrRegistry, error) {
	return SelectEntry(p, "Select ECR registry:", regs, model.EcrRegistry.Label, func() (model.EcrRegistry, error) {
		account, err := InputRequired(p, "AWS Account ID:")
		if err != nil {
			return model.EcrRegistry{}, err
		}
		region, err := InputRequired(p, "AWS Region (e.g., ap-northeast-2):")
		if err != nil {
			return model.EcrRegistry{}, err
		}
		return model.EcrRegistry{Name: account, AccountID: account, Region: region}, nil
	})
}
