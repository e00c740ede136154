package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides. Unknown keys and
// unparsable numbers are ignored.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "executor_url", "url":
			cfg.ExecutorURL = val
		case "prompt":
			cfg.Prompt = val
		case "poll_interval_ms":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.PollIntervalMillis = n
			}
		case "request_timeout_seconds", "timeout":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.RequestTimeoutSeconds = n
			}
		case "log_level":
			cfg.LogLevel = val
		case "log_path":
			cfg.LogPath = val
		case "history.path":
			cfg.History.Path = val
		case "history.restore":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.History.Restore = b
			}
		case "sessions.save":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.Sessions.Save = b
			}
		case "sessions.dir":
			cfg.Sessions.Dir = val
		default:
			if name, ok := strings.CutPrefix(key, "features."); ok && name != "" {
				if b, err := strconv.ParseBool(val); err == nil {
					if cfg.Features == nil {
						cfg.Features = map[string]bool{}
					}
					cfg.Features[name] = b
				}
			}
		}
	}
	return cfg
}
