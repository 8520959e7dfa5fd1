package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "memos.db" {
			t.Errorf("expected database path memos.db, got %s", config.Database.Path)
		}

		if config.Credentials.Google.CredentialsPath != "/config/credentials.json" {
			t.Errorf("expected credentials path /config/credentials.json, got %s", config.Credentials.Google.CredentialsPath)
		}

		if config.Credentials.Google.TokenPath != "/config/token.json" {
			t.Errorf("expected token path /config/token.json, got %s", config.Credentials.Google.TokenPath)
		}

		if config.Docs.FolderID != "" {
			t.Errorf("expected empty folder_id default, got %s", config.Docs.FolderID)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.openai]
organization = "org-test"
project = "proj-test"
api_key = "sk-test"

[credentials.google]
credentials_path = "/custom/credentials.json"
token_path = "/custom/token.json"

[docs]
folder_id = "folder-42"

[database]
path = "/custom/memos.db"
max_open_conns = 20
max_idle_conns = 10
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.OpenAI.APIKey != "sk-test" {
			t.Errorf("expected api_key sk-test, got %s", config.Credentials.OpenAI.APIKey)
		}
		if config.Credentials.Google.TokenPath != "/custom/token.json" {
			t.Errorf("expected token path /custom/token.json, got %s", config.Credentials.Google.TokenPath)
		}
		if config.Docs.FolderID != "folder-42" {
			t.Errorf("expected folder-42, got %s", config.Docs.FolderID)
		}
		if config.Database.MaxOpenConns != 20 {
			t.Errorf("expected max_open_conns 20, got %d", config.Database.MaxOpenConns)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig malformed file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[docs\nbroken"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		t.Setenv("OPENAI_ORGANIZATION", "org-env")
		t.Setenv("OPENAI_PROJECT", "proj-env")
		t.Setenv("CREDENTIALS_JSON", "/env/credentials.json")
		t.Setenv("TOKEN_JSON", "/env/token.json")

		config := DefaultConfig()

		if config.Credentials.OpenAI.APIKey != "sk-env" {
			t.Errorf("expected env api_key, got %s", config.Credentials.OpenAI.APIKey)
		}
		if config.Credentials.OpenAI.Organization != "org-env" {
			t.Errorf("expected env organization, got %s", config.Credentials.OpenAI.Organization)
		}
		if config.Credentials.OpenAI.Project != "proj-env" {
			t.Errorf("expected env project, got %s", config.Credentials.OpenAI.Project)
		}
		if config.Credentials.Google.CredentialsPath != "/env/credentials.json" {
			t.Errorf("expected env credentials path, got %s", config.Credentials.Google.CredentialsPath)
		}
		if config.Credentials.Google.TokenPath != "/env/token.json" {
			t.Errorf("expected env token path, got %s", config.Credentials.Google.TokenPath)
		}
	})
}

func TestConfigPathForEnv(t *testing.T) {
	t.Run("no env returns base", func(t *testing.T) {
		if got := ConfigPathForEnv("config.toml", ""); got != "config.toml" {
			t.Errorf("expected config.toml, got %s", got)
		}
	})

	t.Run("env file missing returns base", func(t *testing.T) {
		if got := ConfigPathForEnv("config.toml", "nonexistent-env"); got != "config.toml" {
			t.Errorf("expected config.toml, got %s", got)
		}
	})

	t.Run("env file present is preferred", func(t *testing.T) {
		tmpDir := t.TempDir()
		wd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		if err := os.Chdir(tmpDir); err != nil {
			t.Fatalf("failed to change directory: %v", err)
		}
		defer os.Chdir(wd)

		if err := os.WriteFile("config.staging.toml", []byte("[docs]\nfolder_id = \"x\"\n"), 0644); err != nil {
			t.Fatalf("failed to write env config: %v", err)
		}

		if got := ConfigPathForEnv("config.toml", "staging"); got != "config.staging.toml" {
			t.Errorf("expected config.staging.toml, got %s", got)
		}
	})
}
