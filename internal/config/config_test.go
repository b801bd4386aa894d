package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at a temp dir, runs from an empty working directory
// so no .env is picked up, and clears the GEODUA_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, env := range []string{EnvToken, EnvAIAPIKey, EnvAPIURL} {
		t.Setenv(env, "")
	}
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.SaveTimeout != defaultSaveTimeout {
		t.Fatalf("SaveTimeout = %v, want %v", cfg.SaveTimeout, defaultSaveTimeout)
	}
	if cfg.RequestsPerSecond != defaultRPS {
		t.Fatalf("RequestsPerSecond = %v, want %v", cfg.RequestsPerSecond, defaultRPS)
	}
	if cfg.AI.Provider != "gemini" || cfg.AI.APIKey != "" {
		t.Fatalf("AI = %+v, want gemini without key", cfg.AI)
	}
	if cfg.Images.MaxDimension != defaultMaxDim || cfg.Images.JPEGQuality != defaultJPEGQuality {
		t.Fatalf("Images = %+v", cfg.Images)
	}
	if cfg.Token != "" {
		t.Fatalf("Token = %q, want empty", cfg.Token)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)

	path := writeConfig(t, `
api_url = "  https://geodua.example.org  "
data_dir = "  ~/geodua-data  "
log_level = "DEBUG"
log_format = "json"
save_timeout = "90s"
requests_per_second = 2.5

[ai]
provider = "OpenAI"
model = "gpt-4o-mini"
base_url = "http://127.0.0.1:9999/v1"

[images]
max_dimension = 800
jpeg_quality = 70
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://geodua.example.org" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.DataDir != filepath.Join(home, "geodua-data") {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("log = %q/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.SaveTimeout != 90*time.Second {
		t.Fatalf("SaveTimeout = %v, want 90s", cfg.SaveTimeout)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Fatalf("RequestsPerSecond = %v, want 2.5", cfg.RequestsPerSecond)
	}
	if cfg.AI.Provider != "openai" || cfg.AI.Model != "gpt-4o-mini" || cfg.AI.BaseURL != "http://127.0.0.1:9999/v1" {
		t.Fatalf("AI = %+v", cfg.AI)
	}
	if cfg.Images.MaxDimension != 800 || cfg.Images.JPEGQuality != 70 {
		t.Fatalf("Images = %+v", cfg.Images)
	}
	if cfg.LogPath() != filepath.Join(cfg.DataDir, "geodua.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAPIURL, "https://env.example.org")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvAIAPIKey, "ai-key")

	cfg, err := Load(writeConfig(t, `api_url = "https://file.example.org"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://env.example.org" {
		t.Fatalf("APIURL = %q, want env value", cfg.APIURL)
	}
	if cfg.Token != "env-token" || cfg.AI.APIKey != "ai-key" {
		t.Fatalf("Token = %q, AI.APIKey = %q", cfg.Token, cfg.AI.APIKey)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolate(t)
	os.Unsetenv(EnvAIAPIKey)
	if err := os.WriteFile(".env", []byte(EnvAIAPIKey+"=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvAIAPIKey) })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AI.APIKey != "from-dotenv" {
		t.Fatalf("AI.APIKey = %q, want from-dotenv", cfg.AI.APIKey)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(writeConfig(t, `
api_url = "   "
data_dir = ""
save_timeout = ""
requests_per_second = -1

[images]
jpeg_quality = 300
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.SaveTimeout != defaultSaveTimeout || cfg.RequestsPerSecond != defaultRPS {
		t.Fatalf("SaveTimeout = %v, RequestsPerSecond = %v", cfg.SaveTimeout, cfg.RequestsPerSecond)
	}
	if cfg.Images.JPEGQuality != defaultJPEGQuality {
		t.Fatalf("JPEGQuality = %d, want %d", cfg.Images.JPEGQuality, defaultJPEGQuality)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"toml", `api_url = [`, "parse config"},
		{"timeout", `save_timeout = "soon"`, "save_timeout"},
		{"format", `log_format = "xml"`, "log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %q, want it to mention %s", err.Error(), tt.want)
			}
		})
	}
}

func TestToken_SaveLoadRemove(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.HasPrefix(cfg.TokenFile, home) {
		t.Fatalf("TokenFile = %q, want it under HOME %q", cfg.TokenFile, home)
	}
	if err := cfg.SaveToken("  secret  "); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(cfg.TokenFile)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("token mode = %v, want 0600", info.Mode().Perm())
	}

	reloaded, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if reloaded.Token != "secret" {
		t.Fatalf("Token = %q, want secret", reloaded.Token)
	}

	if err := cfg.RemoveToken(); err != nil {
		t.Fatalf("RemoveToken: %v", err)
	}
	if err := cfg.RemoveToken(); err != nil {
		t.Fatalf("RemoveToken on missing file: %v", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
