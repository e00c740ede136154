package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvExecutorURL 覆盖配置文件中的 executor_url。
const EnvExecutorURL = "WEBTERM_EXECUTOR_URL"

// Config is the persisted config file schema.
type Config struct {
	ExecutorURL           string          `toml:"executor_url"`
	Prompt                string          `toml:"prompt"`
	PollIntervalMillis    int             `toml:"poll_interval_ms"`
	RequestTimeoutSeconds int             `toml:"request_timeout_seconds"`
	LogLevel              string          `toml:"log_level"`
	LogPath               string          `toml:"log_path"`
	History               HistoryConfig   `toml:"history"`
	Sessions              SessionsConfig  `toml:"sessions"`
	Features              map[string]bool `toml:"features,omitempty"`
	Source                string          `toml:"-"`
}

// HistoryConfig 控制命令历史的落盘与恢复。
type HistoryConfig struct {
	Path    string `toml:"path"`
	Restore bool   `toml:"restore"`
}

// SessionsConfig 控制退出时是否保存会话记录。Dir 为空时使用 ~/.webterm/sessions。
type SessionsConfig struct {
	Save bool   `toml:"save"`
	Dir  string `toml:"dir"`
}

func Default() Config {
	return Config{
		ExecutorURL:           "http://127.0.0.1:8000",
		Prompt:                "user@python-terminal:~$",
		PollIntervalMillis:    5000,
		RequestTimeoutSeconds: 30,
		LogLevel:              "info",
		LogPath:               "logs/webterm.log",
		Sessions:              SessionsConfig{Save: true},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".webterm", "config.toml")
}

// PollInterval 返回遥测轮询间隔，非法值回退到 5s。
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMillis <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// RequestTimeout 返回单次 HTTP 请求超时。
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	cfg.Source = path
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv(EnvExecutorURL)); env != "" {
		cfg.ExecutorURL = env
	}
	return cfg
}
