package aws

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/gofrs/flock"

	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/runner"
	"github.com/stool-cli/stool/internal/ui"
	"github.com/stool-cli/stool/internal/util"
)

// DefaultConfigFile returns $AWS_CONFIG_FILE or ~/.aws/config.
func DefaultConfigFile() (string, error) {
	if p := os.Getenv("AWS_CONFIG_FILE"); p != "" {
		return util.ExpandHome(p)
	}
	return util.ExpandHome("~/.aws/config")
}

// SSOLogin picks a profile, makes sure the AWS config file has it, then runs
// "aws sso login".
func (a *AWS) SSOLogin(ctx context.Context) error {
	if err := a.requireCLI(); err != nil {
		return err
	}
	profile, err := ui.SelectEntry(a.prompt, "Select SSO profile:", a.cfg.SSOProfiles, model.SSOProfile.Label, a.manualProfile)
	if err != nil {
		return err
	}

	path := a.ConfigFile
	if path == "" {
		if path, err = DefaultConfigFile(); err != nil {
			return apperr.Wrap(apperr.IoError, err, "locate aws config")
		}
	}
	added, err := EnsureProfile(ctx, path, profile)
	if err != nil {
		return err
	}
	if added {
		fmt.Fprintf(a.out, "Added profile %s to %s\n", profile.Name, path)
	}

	if err := a.run.Run(ctx, runner.Cmd{Name: "aws", Args: []string{"sso", "login", "--profile", profile.Name}}); err != nil {
		return apperr.Wrap(apperr.AwsCommandFailed, err, runner.Describe("aws sso login", err))
	}
	fmt.Fprintf(a.out, "SSO login completed for profile %s\n", profile.Name)
	return nil
}

func (a *AWS) manualProfile() (model.SSOProfile, error) {
	var p model.SSOProfile
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Profile name:", &p.Name},
		{"SSO start URL:", &p.StartURL},
		{"SSO region:", &p.Region},
		{"AWS Account ID:", &p.AccountID},
		{"Role name:", &p.RoleName},
	}
	for _, f := range fields {
		v, err := ui.InputRequired(a.prompt, f.prompt)
		if err != nil {
			return p, err
		}
		*f.dst = v
	}
	p.Output = "json"
	return p, nil
}

// EnsureProfile appends p (and its sso-session block, when named and absent)
// to the config file at path unless a profile of that name already exists.
// The file is only ever appended to, under an exclusive lock held across the
// check and the write. It reports whether anything was written.
func EnsureProfile(ctx context.Context, path string, p model.SSOProfile) (bool, error) {
	if strings.TrimSpace(p.Name) == "" {
		return false, apperr.New(apperr.InvalidInput, "SSO profile name is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, apperr.Wrap(apperr.IoError, err, filepath.Dir(path))
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return false, apperr.Wrap(apperr.IoError, err, "lock "+path)
	}
	defer lock.Unlock()

	current, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, apperr.Wrap(apperr.IoError, err, path)
	}

	exists, err := profileExists(ctx, path, current, p.Name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	var block bytes.Buffer
	if len(current) > 0 {
		if current[len(current)-1] != '\n' {
			block.WriteByte('\n')
		}
		block.WriteByte('\n')
	}
	if p.SessionName != "" && !hasSection(current, "sso-session "+p.SessionName) {
		writeSessionBlock(&block, p)
		block.WriteByte('\n')
	}
	writeProfileBlock(&block, p)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return false, apperr.Wrap(apperr.IoError, err, path)
	}
	if _, err := f.Write(block.Bytes()); err != nil {
		_ = f.Close()
		return false, apperr.Wrap(apperr.IoError, err, path)
	}
	if err := f.Close(); err != nil {
		return false, apperr.Wrap(apperr.IoError, err, path)
	}
	return true, nil
}

// profileExists asks the SDK's shared config loader whether path defines
// the profile.
func profileExists(ctx context.Context, path string, content []byte, name string) (bool, error) {
	if len(content) == 0 {
		return false, nil
	}
	_, err := config.LoadSharedConfigProfile(ctx, name, func(o *config.LoadSharedConfigOptions) {
		o.ConfigFiles = []string{path}
		o.CredentialsFiles = []string{os.DevNull}
	})
	if err == nil {
		return true, nil
	}
	var notExist config.SharedConfigProfileNotExistError
	if errors.As(err, &notExist) {
		return false, nil
	}
	// The section is there but does not resolve (for example a dangling
	// sso_session). Leave it alone rather than append a duplicate.
	if hasSection(content, profileSection(name)) {
		return true, nil
	}
	return false, apperr.Wrap(apperr.ConfigParseError, err, path)
}

func profileSection(name string) string {
	if name == "default" {
		return "default"
	}
	return "profile " + name
}

// hasSection reports whether content has a "[section]" header line.
func hasSection(content []byte, section string) bool {
	want := "[" + section + "]"
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.Join(strings.Fields(sc.Text()), " ")
		if line == want {
			return true
		}
	}
	return false
}

func writeSessionBlock(b *bytes.Buffer, p model.SSOProfile) {
	fmt.Fprintf(b, "[sso-session %s]\n", p.SessionName)
	fmt.Fprintf(b, "sso_start_url = %s\n", p.StartURL)
	fmt.Fprintf(b, "sso_region = %s\n", p.Region)
	b.WriteString("sso_registration_scopes = sso:account:access\n")
}

func writeProfileBlock(b *bytes.Buffer, p model.SSOProfile) {
	fmt.Fprintf(b, "[%s]\n", profileSection(p.Name))
	if p.SessionName != "" {
		fmt.Fprintf(b, "sso_session = %s\n", p.SessionName)
	} else {
		fmt.Fprintf(b, "sso_start_url = %s\n", p.StartURL)
		fmt.Fprintf(b, "sso_region = %s\n", p.Region)
	}
	fmt.Fprintf(b, "sso_account_id = %s\n", p.AccountID)
	fmt.Fprintf(b, "sso_role_name = %s\n", p.RoleName)
	fmt.Fprintf(b, "region = %s\n", p.Region)
	fmt.Fprintf(b, "output = %s\n", util.DefaultString(p.Output, "json"))
}
