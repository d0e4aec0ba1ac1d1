package dispatch

import (
	"strings"

	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/secret"
	"github.com/stool-cli/stool/internal/util"
)

// Method is the authentication strategy chosen for one command.
type Method int

const (
	// MethodDefault leaves authentication to ssh (agent, ~/.ssh/config).
	MethodDefault Method = iota
	MethodKey
	MethodPassword
)

func (m Method) String() string {
	switch m {
	case MethodKey:
		return "key"
	case MethodPassword:
		return "password"
	default:
		return "default"
	}
}

// Credential is exactly one of: nothing, a key path, or a password.
type Credential struct {
	Method   Method
	KeyPath  string
	Password *secret.Secret
}

// KeyCredential authenticates with an identity file.
func KeyCredential(path string) Credential {
	return Credential{Method: MethodKey, KeyPath: path}
}

// PasswordCredential takes ownership of s. An empty secret means default
// authentication.
func PasswordCredential(s *secret.Secret) Credential {
	if s.Empty() {
		s.Wipe()
		return Credential{}
	}
	return Credential{Method: MethodPassword, Password: s}
}

// CredentialFor derives the credential configured on t. A key wins over a
// password; the two are never combined.
func CredentialFor(t model.Target) Credential {
	if key := strings.TrimSpace(t.KeyPath); key != "" {
		return KeyCredential(key)
	}
	if t.Password != "" {
		return PasswordCredential(secret.FromString(t.Password))
	}
	return Credential{}
}

// Wipe clears the password buffer if there is one.
func (c Credential) Wipe() {
	c.Password.Wipe()
}

func (c Credential) keyArg() string {
	if p, err := util.ExpandHome(c.KeyPath); err == nil {
		return p
	}
	return c.KeyPath
}
