package git

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Auth describes how to authenticate against the toolchain remote.
type Auth struct {
	Type     string // none, token, basic, ssh
	Token    string
	Username string
	Password string
	KeyPath  string
}

// method returns the go-git AuthMethod for a, or nil for anonymous access.
func (a *Auth) method() (transport.AuthMethod, error) {
	if a == nil {
		return nil, nil
	}
	switch a.Type {
	case "none", "":
		return nil, nil
	case "ssh":
		keyPath := a.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load SSH key from %s: %w", keyPath, err)
		}
		return keys, nil
	case "token":
		if a.Token == "" {
			return nil, fmt.Errorf("token authentication requires a token")
		}
		return &http.BasicAuth{Username: "token", Password: a.Token}, nil
	case "basic":
		if a.Username == "" || a.Password == "" {
			return nil, fmt.Errorf("basic authentication requires username and password")
		}
		return &http.BasicAuth{Username: a.Username, Password: a.Password}, nil
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", a.Type)
	}
}
