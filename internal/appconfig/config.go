// Package appconfig loads the stool configuration: the server registry, ECR
// registries, SSO profiles and docker build settings.
package appconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/util"
)

//go:embed default.yaml
var defaultYAML []byte

const (
	DefaultBuildOptions = "--platform linux/arm64 --provenance=false --sbom=false"
	DefaultBuildContext = "."
	DefaultSSOOutput    = "json"

	// EmbeddedSource is reported as Config.Source when no file was found.
	EmbeddedSource = "embedded"
)

// DockerConfig contains docker build settings.
type DockerConfig struct {
	BuildOptions string `yaml:"build_options"`
	Context      string `yaml:"context"`
}

// Config holds the application configuration.
type Config struct {
	Servers       model.Registry      `yaml:"servers"`
	ECRRegistries []model.EcrRegistry `yaml:"ecr_registries"`
	SSOProfiles   []model.SSOProfile  `yaml:"sso_profiles"`
	Docker        DockerConfig        `yaml:"docker"`

	// Source is the file the config was read from, or EmbeddedSource.
	Source string `yaml:"-"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Docker: DockerConfig{
			BuildOptions: DefaultBuildOptions,
			Context:      DefaultBuildContext,
		},
	}
}

// ConfigDir returns the application config directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/stool.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stool"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "stool"), nil
}

// DefaultPath returns the full path to config.yaml in the config directory.
func DefaultPath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.yaml"), nil
}

// Load resolves and reads the configuration. An explicit path must exist.
// Without one, config.yaml in the config directory is used when present and
// the embedded default otherwise.
func Load(explicit string) (Config, error) {
	if explicit != "" {
		path, err := util.ExpandHome(explicit)
		if err != nil {
			return Config{}, apperr.Wrap(apperr.ConfigLoadFailed, err, explicit)
		}
		return loadFile(path)
	}
	path, err := DefaultPath()
	if err != nil {
		return Config{}, apperr.Wrap(apperr.ConfigLoadFailed, err, "")
	}
	if _, err := os.Stat(path); err == nil {
		return loadFile(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, apperr.Wrap(apperr.ConfigLoadFailed, err, path)
	}
	slog.Debug("no config file, using embedded default", "path", path)
	return Parse(defaultYAML, EmbeddedSource)
}

func loadFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, apperr.Wrap(apperr.ConfigLoadFailed, err, path)
	}
	return Parse(b, path)
}

// Parse decodes YAML onto the defaults and normalizes the result.
func Parse(b []byte, source string) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, apperr.Wrap(apperr.ConfigParseError, err, source)
	}
	cfg.Source = source
	normalize(&cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	for i := range cfg.Servers {
		s := &cfg.Servers[i]
		s.Name = strings.TrimSpace(s.Name)
		s.Host = strings.TrimSpace(s.Host)
		s.User = strings.TrimSpace(s.User)
		s.KeyPath = strings.TrimSpace(s.KeyPath)
		s.Name = util.DefaultString(s.Name, s.Host)
	}
	for i := range cfg.ECRRegistries {
		r := &cfg.ECRRegistries[i]
		r.AccountID = strings.TrimSpace(r.AccountID)
		r.Region = strings.TrimSpace(r.Region)
		r.Name = util.DefaultString(strings.TrimSpace(r.Name), r.AccountID)
	}
	for i := range cfg.SSOProfiles {
		p := &cfg.SSOProfiles[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Output = util.DefaultString(strings.TrimSpace(p.Output), DefaultSSOOutput)
	}
	cfg.Docker.BuildOptions = util.DefaultString(cfg.Docker.BuildOptions, DefaultBuildOptions)
	cfg.Docker.Context = util.DefaultString(cfg.Docker.Context, DefaultBuildContext)
}
