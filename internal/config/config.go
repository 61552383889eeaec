// Package config provides environment configuration for the ghtoken
// command. The library itself takes explicit parameters; only the CLI
// reads the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"

	"github.com/jrsteele09/github-app-auth/auth"
)

// Config holds the ghtoken configuration. App and installation ids are
// kept as strings and parsed where used, so a missing value is
// distinguishable from a zero one.
type Config struct {
	// UserAgent identifies the integration on every GitHub request.
	UserAgent string
	// PrivateKeyFile is the path of a PEM encoded RSA private key.
	PrivateKeyFile string
	// PrivateKey is the key material itself, for environments that inject
	// secrets directly instead of mounting files.
	PrivateKey string
	// AppID is the numeric GitHub App identifier.
	AppID string
	// InstallationID is the numeric installation identifier.
	InstallationID string
	// BaseURL is the GitHub API endpoint base.
	BaseURL string
	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		UserAgent:      env.GetString("GITHUB_USER_AGENT", "ghtoken"),
		PrivateKeyFile: env.GetString("GITHUB_PRIVATE_KEY_FILE", ""),
		PrivateKey:     env.GetString("GITHUB_PRIVATE_KEY", ""),
		AppID:          env.GetString("GITHUB_APP_ID", ""),
		InstallationID: env.GetString("GITHUB_INSTALLATION_ID", ""),
		BaseURL:        env.GetString("GITHUB_API_URL", auth.DefaultBaseURL),
		LogLevel:       env.GetString("LOG_LEVEL", "info"),
	}
}

// loadDotEnv walks from the working directory towards the filesystem root
// and loads the first .env file it finds.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
