package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Docs        DocsConfig        `toml:"docs"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	OpenAI OpenAIConfig `toml:"openai"`
	Google GoogleConfig `toml:"google"`
}

// OpenAIConfig contains OpenAI API credentials.
type OpenAIConfig struct {
	Organization string `toml:"organization"`
	Project      string `toml:"project"`
	APIKey       string `toml:"api_key"`
}

// GoogleConfig contains Google OAuth file locations.
type GoogleConfig struct {
	CredentialsPath string `toml:"credentials_path"`
	TokenPath       string `toml:"token_path"`
}

// DocsConfig contains Google Docs output settings.
type DocsConfig struct {
	FolderID string `toml:"folder_id"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment variables override file values (see applyEnvOverrides).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	config.applyEnvOverrides()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
//
// Environment variables override the embedded values.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnvOverrides()
	return &config
}

// applyEnvOverrides replaces config values with environment variables when set.
//
// The variable names match the original deployment contract so existing
// shell profiles and container definitions keep working.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPENAI_ORGANIZATION"); v != "" {
		c.Credentials.OpenAI.Organization = v
	}
	if v := os.Getenv("OPENAI_PROJECT"); v != "" {
		c.Credentials.OpenAI.Project = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("CREDENTIALS_JSON"); v != "" {
		c.Credentials.Google.CredentialsPath = v
	}
	if v := os.Getenv("TOKEN_JSON"); v != "" {
		c.Credentials.Google.TokenPath = v
	}
}

// ConfigPathForEnv resolves the config file for an environment profile.
//
// "config.production.toml" is preferred for env "production" when it exists,
// otherwise the base path is returned unchanged.
func ConfigPathForEnv(base, env string) string {
	if env == "" {
		return base
	}
	candidate := fmt.Sprintf("config.%s.toml", env)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return base
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
