// ABOUTME: Configuration loading and parsing for estatedesk
// ABOUTME: Supports YAML files with environment variable expansion and sensible defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete estatedesk configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig holds paths for the relational database and the two
// key-value stores. Parent directories are created on first use.
type StorageConfig struct {
	// DatabasePath is the SQLite database file holding estates,
	// properties, and visitors.
	DatabasePath string `yaml:"database_path"`

	// CredentialsPath is the encrypted credential store file.
	CredentialsPath string `yaml:"credentials_path"`

	// CredentialsKeyPath is the key file protecting the credential store.
	// Generated on first run if missing.
	CredentialsKeyPath string `yaml:"credentials_key_path"`

	// SessionPath is the plain-JSON session/preferences store file.
	SessionPath string `yaml:"session_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration rooted at the given data directory.
// Used when no config file exists.
func Default(dataDir string) *Config {
	return &Config{
		Storage: StorageConfig{
			DatabasePath:       filepath.Join(dataDir, "estatedesk.db"),
			CredentialsPath:    filepath.Join(dataDir, "credentials.dat"),
			CredentialsKeyPath: filepath.Join(dataDir, "credentials.key"),
			SessionPath:        filepath.Join(dataDir, "session.json"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path is required")
	}
	if c.Storage.CredentialsPath == "" {
		return fmt.Errorf("storage.credentials_path is required")
	}
	if c.Storage.CredentialsKeyPath == "" {
		return fmt.Errorf("storage.credentials_key_path is required")
	}
	if c.Storage.SessionPath == "" {
		return fmt.Errorf("storage.session_path is required")
	}
	return nil
}
