// Package config handles loading and validating the scorebot configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the scorebot daemon.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Oracle  OracleConfig  `mapstructure:"oracle"`
	Tools   ToolsConfig   `mapstructure:"tools"`
	Media   MediaConfig   `mapstructure:"media"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the webhook server settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// OracleConfig holds the language-model classifier settings.
// Any chat-completions compatible endpoint works; Mistral's is the default.
type OracleConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ToolsConfig locates the external processing tools.
type ToolsConfig struct {
	YtDlpPath    string `mapstructure:"yt_dlp_path"`
	FfmpegPath   string `mapstructure:"ffmpeg_path"`
	TranskunPath string `mapstructure:"transkun_path"`
	PythonPath   string `mapstructure:"python_path"` // runs demucs; empty probes .venv then python3
	NotationURL  string `mapstructure:"notation_url"`
	UseGPU       bool   `mapstructure:"use_gpu"`
}

// MediaConfig controls where audio artifacts live and how many assets
// a conversation remembers.
type MediaConfig struct {
	Dir              string `mapstructure:"dir"`
	CacheCapacity    int    `mapstructure:"cache_capacity"`
	SearchMaxSeconds int    `mapstructure:"search_max_seconds"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./scorebot.yaml, ./configs/scorebot.yaml,
// /etc/scorebot/scorebot.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	// 8090, not 8080: the notation model's default endpoint already sits
	// on 8080 when run on the same host.
	v.SetDefault("server.port", 8090)
	v.SetDefault("oracle.base_url", "https://api.mistral.ai/v1")
	v.SetDefault("oracle.model", "mistral-large-latest")
	v.SetDefault("oracle.timeout_seconds", 30)
	v.SetDefault("tools.yt_dlp_path", "yt-dlp")
	v.SetDefault("tools.ffmpeg_path", "ffmpeg")
	v.SetDefault("tools.transkun_path", "transkun")
	v.SetDefault("tools.notation_url", "http://localhost:8080/invocations")
	v.SetDefault("tools.use_gpu", false)
	v.SetDefault("media.dir", "media")
	v.SetDefault("media.cache_capacity", 32)
	v.SetDefault("media.search_max_seconds", 300)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("scorebot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/scorebot")
	}

	// Environment variables: SCOREBOT_ORACLE_API_KEY, SCOREBOT_SERVER_PORT, etc.
	v.SetEnvPrefix("SCOREBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${MISTRAL_API_KEY}")
	cfg.Oracle.APIKey = resolveEnvRef(cfg.Oracle.APIKey)

	if cfg.Media.CacheCapacity < 1 {
		return nil, fmt.Errorf("media.cache_capacity must be at least 1, got %d", cfg.Media.CacheCapacity)
	}

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
