package model

import (
	"fmt"
	"strings"
)

// Target is one remote endpoint a feature command can act on.
type Target struct {
	Name     string `yaml:"name" json:"name"`
	Host     string `yaml:"ip" json:"host"`
	User     string `yaml:"user" json:"user"`
	Port     int    `yaml:"port,omitempty" json:"port,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty" json:"key_path,omitempty"`
	Password string `yaml:"password,omitempty" json:"-"`
}

// Destination renders user@host, or host alone when no user is set.
func (t Target) Destination() string {
	if strings.TrimSpace(t.User) == "" {
		return t.Host
	}
	return t.User + "@" + t.Host
}

// RemotePath renders the scp form user@host:path.
func (t Target) RemotePath(path string) string {
	return t.Destination() + ":" + path
}

// HasCredential reports whether any credential is configured.
func (t Target) HasCredential() bool {
	return strings.TrimSpace(t.KeyPath) != "" || t.Password != ""
}

// Label is the menu text for a target.
func (t Target) Label() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Destination())
}

// Registry is the ordered list of configured targets. Order is display order;
// names are not required to be unique.
type Registry []Target

// EcrRegistry is one AWS ECR registry and the images usually pushed to it.
type EcrRegistry struct {
	Name      string   `yaml:"name" json:"name"`
	AccountID string   `yaml:"account_id" json:"account_id"`
	Region    string   `yaml:"region" json:"region"`
	Images    []string `yaml:"images,omitempty" json:"images,omitempty"`
}

// URL is the registry host name used by docker.
func (e EcrRegistry) URL() string {
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", e.AccountID, e.Region)
}

func (e EcrRegistry) Label() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.URL())
}

// SSOProfile describes one AWS IAM Identity Center profile.
type SSOProfile struct {
	Name        string `yaml:"name" json:"name"`
	SessionName string `yaml:"sso_session,omitempty" json:"sso_session,omitempty"`
	StartURL    string `yaml:"start_url" json:"start_url"`
	Region      string `yaml:"region" json:"region"`
	AccountID   string `yaml:"account_id" json:"account_id"`
	RoleName    string `yaml:"role_name" json:"role_name"`
	Output      string `yaml:"output,omitempty" json:"output,omitempty"`
}

func (p SSOProfile) Label() string {
	return fmt.Sprintf("%s (%s / %s)", p.Name, p.AccountID, p.RoleName)
}
