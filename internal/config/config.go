package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/liaGregorio/GeoDUA-sub000/internal/logger"
)

// Config holds everything GeoDUA reads at startup.
type Config struct {
	APIURL            string
	TokenFile         string
	DataDir           string
	LogLevel          string
	LogFormat         string
	SaveTimeout       time.Duration
	RequestsPerSecond float64
	AI                AIConfig
	Images            ImageConfig

	// Token is the API token, from GEODUA_TOKEN or TokenFile.
	Token string
}

// AIConfig selects the AI provider.
type AIConfig struct {
	Provider string
	Model    string
	TTSModel string
	Voice    string
	BaseURL  string
	APIKey   string
}

// ImageConfig bounds uploaded images.
type ImageConfig struct {
	MaxDimension int
	JPEGQuality  int
}

// Environment variables that override the file.
const (
	EnvToken    = "GEODUA_TOKEN"
	EnvAIAPIKey = "GEODUA_AI_API_KEY"
	EnvAPIURL   = "GEODUA_API_URL"
)

const (
	defaultConfigPath  = "~/.config/geodua/config.toml"
	defaultDataDir     = "~/.local/share/geodua"
	defaultTokenFile   = "~/.config/geodua/token"
	defaultAPIURL      = "http://localhost:3000"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultSaveTimeout = 60 * time.Second
	defaultRPS         = 10
	defaultAIProvider  = "gemini"
	defaultMaxDim      = 1600
	defaultJPEGQuality = 85
)

type rawConfig struct {
	APIURL            string  `toml:"api_url"`
	TokenFile         string  `toml:"token_file"`
	DataDir           string  `toml:"data_dir"`
	LogLevel          string  `toml:"log_level"`
	LogFormat         string  `toml:"log_format"`
	SaveTimeout       string  `toml:"save_timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	AI                struct {
		Provider string `toml:"provider"`
		Model    string `toml:"model"`
		TTSModel string `toml:"tts_model"`
		Voice    string `toml:"voice"`
		BaseURL  string `toml:"base_url"`
	} `toml:"ai"`
	Images struct {
		MaxDimension int `toml:"max_dimension"`
		JPEGQuality  int `toml:"jpeg_quality"`
	} `toml:"images"`
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config file at path (the default path when empty), applies
// defaults for missing values and then the environment. A missing file is
// not an error. A .env file in the working directory is loaded first when
// present; variables already set win over it.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	_ = godotenv.Load()

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)

	if cfg.Token == "" {
		cfg.Token = readToken(cfg.TokenFile)
	}
	return cfg, nil
}

func fromRaw(raw rawConfig) (Config, error) {
	cfg := Config{
		APIURL:            orDefault(raw.APIURL, defaultAPIURL),
		TokenFile:         mustExpand(orDefault(raw.TokenFile, defaultTokenFile)),
		DataDir:           mustExpand(orDefault(raw.DataDir, defaultDataDir)),
		LogLevel:          strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel)),
		LogFormat:         strings.ToLower(orDefault(raw.LogFormat, defaultLogFormat)),
		SaveTimeout:       defaultSaveTimeout,
		RequestsPerSecond: raw.RequestsPerSecond,
		AI: AIConfig{
			Provider: strings.ToLower(orDefault(raw.AI.Provider, defaultAIProvider)),
			Model:    strings.TrimSpace(raw.AI.Model),
			TTSModel: strings.TrimSpace(raw.AI.TTSModel),
			Voice:    strings.TrimSpace(raw.AI.Voice),
			BaseURL:  strings.TrimSpace(raw.AI.BaseURL),
		},
		Images: ImageConfig{
			MaxDimension: raw.Images.MaxDimension,
			JPEGQuality:  raw.Images.JPEGQuality,
		},
	}

	if s := strings.TrimSpace(raw.SaveTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: save_timeout %q: %w", s, err)
		}
		if d > 0 {
			cfg.SaveTimeout = d
		}
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if !logger.ValidFormat(cfg.LogFormat) {
		return Config{}, fmt.Errorf("parse config: log_format %q must be text or json", cfg.LogFormat)
	}
	if cfg.Images.MaxDimension <= 0 {
		cfg.Images.MaxDimension = defaultMaxDim
	}
	if cfg.Images.JPEGQuality <= 0 || cfg.Images.JPEGQuality > 100 {
		cfg.Images.JPEGQuality = defaultJPEGQuality
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		cfg.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAIAPIKey)); v != "" {
		cfg.AI.APIKey = v
	}
}

// LogPath returns the log file inside the data directory.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/geodua.log")
	}
	return filepath.Join(c.DataDir, "geodua.log")
}

// SaveToken writes token to TokenFile with owner-only permissions.
func (c Config) SaveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(c.TokenFile, []byte(strings.TrimSpace(token)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// RemoveToken deletes TokenFile. A missing file is not an error.
func (c Config) RemoveToken() error {
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func readToken(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
