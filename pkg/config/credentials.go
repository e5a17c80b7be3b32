package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/grafana/turnaround/pkg/logme"
)

// Credentials are read once before collection and kept for the run.
type Credentials struct {
	Username string
	Token    string
}

func (c Credentials) Anonymous() bool {
	return c.Token == ""
}

// LoadEnv reads .env files into the environment. A missing file is fine.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logme.DebugF("no .env loaded: %v\n", err)
	}
}

// LoadCredentials reads the token from path, trimmed of whitespace.
// A missing file falls back to GH_TOKEN and then to anonymous access.
func LoadCredentials(path, username string) (Credentials, error) {
	creds := Credentials{Username: username}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			creds.Token = strings.TrimSpace(string(data))
			return creds, nil
		case errors.Is(err, os.ErrNotExist):
			logme.DebugF("token file %s not found\n", path)
		default:
			return Credentials{}, fmt.Errorf("reading token file %s: %w", path, err)
		}
	}

	creds.Token = strings.TrimSpace(os.Getenv("GH_TOKEN"))
	return creds, nil
}
