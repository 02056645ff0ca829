package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultSecretsPath = "/var/run/secrets/generac"
	usernameFile       = "username"
	passwordFile       = "password"
	cookiesFile        = "cookies"
	authTokenFile      = "auth_token"
)

type secretValues struct {
	Username  string
	Password  string
	Cookies   string
	AuthToken string
}

// tryLoadFromSecrets reads credentials from mounted Kubernetes secret files.
// A missing secrets directory or missing individual files is not an error;
// absent values simply fall back to environment variables.
func tryLoadFromSecrets() (secretValues, error) {
	secretsPath := os.Getenv("GENERAC_SECRETS_PATH")
	if secretsPath == "" {
		secretsPath = defaultSecretsPath
	}

	var out secretValues
	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		return out, nil
	}

	read := func(name string) (string, error) {
		data, err := os.ReadFile(filepath.Join(secretsPath, name))
		if err != nil {
			if os.IsNotExist(err) {
				return "", nil
			}
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}

	var err error
	if out.Username, err = read(usernameFile); err != nil {
		return out, err
	}
	if out.Password, err = read(passwordFile); err != nil {
		return out, err
	}
	if out.Cookies, err = read(cookiesFile); err != nil {
		return out, err
	}
	if out.AuthToken, err = read(authTokenFile); err != nil {
		return out, err
	}
	return out, nil
}
