package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings wishly needs to reach the backend.
type Config struct {
	// APIURL is the REST base URL.
	APIURL string
	// WSURL is the push-channel base ending in /ws/wishlists. Derived from
	// APIURL when not set explicitly.
	WSURL string
	// LogLevel is a logrus level name.
	LogLevel string
	// StatsPollSeconds is the /stats refresh cadence for the stats view.
	StatsPollSeconds int
}

const (
	defaultConfigPath  = "~/.config/wishly/config.toml"
	defaultAPIURL      = "http://localhost:8000"
	defaultLogLevel    = "info"
	defaultStatsPoll   = 30
	defaultLogDir      = "~/.local/share/wishly"
	wishlistSocketPath = "/ws/wishlists"
	landingSocketPath  = "/ws/landing"
)

// Load locates and parses the wishly config, falling back to defaults when
// missing. Environment variables (WISHLY_API_URL, WISHLY_WS_URL,
// WISHLY_LOG_LEVEL) override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:           defaultAPIURL,
		LogLevel:         defaultLogLevel,
		StatsPollSeconds: defaultStatsPoll,
	}

	file, err := os.Open(resolved)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	if err == nil {
		defer func() { _ = file.Close() }()

		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		var raw struct {
			APIURL           string `toml:"api_url"`
			WSURL            string `toml:"ws_url"`
			LogLevel         string `toml:"log_level"`
			StatsPollSeconds int    `toml:"stats_poll_seconds"`
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}

		if v := strings.TrimSpace(raw.APIURL); v != "" {
			cfg.APIURL = v
		}
		if v := strings.TrimSpace(raw.WSURL); v != "" {
			cfg.WSURL = v
		}
		if v := strings.TrimSpace(raw.LogLevel); v != "" {
			cfg.LogLevel = v
		}
		if raw.StatsPollSeconds > 0 {
			cfg.StatsPollSeconds = raw.StatsPollSeconds
		}
	}

	if v := strings.TrimSpace(os.Getenv("WISHLY_API_URL")); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WISHLY_WS_URL")); v != "" {
		cfg.WSURL = v
	}
	if v := strings.TrimSpace(os.Getenv("WISHLY_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("WISHLY_STATS_POLL_SECONDS")); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			cfg.StatsPollSeconds = seconds
		}
	}

	if cfg.WSURL == "" {
		cfg.WSURL = cfg.APIURL
	}
	cfg.WSURL = normalizeWSBase(cfg.WSURL)

	return cfg, nil
}

// WishlistSocketURL returns the push endpoint for one wishlist.
func (c Config) WishlistSocketURL(wishlistID int64) string {
	return fmt.Sprintf("%s/%d", c.WSURL, wishlistID)
}

// LandingSocketURL returns the aggregate stats channel endpoint.
func (c Config) LandingSocketURL() string {
	return strings.TrimSuffix(c.WSURL, wishlistSocketPath) + landingSocketPath
}

// LogPath returns the file the TUI logs to; the terminal belongs to the UI.
func (c Config) LogPath() string {
	return filepath.Join(mustExpand(defaultLogDir), "wishly.log")
}

// normalizeWSBase turns an API or WS base URL into the per-wishlist push
// base: http becomes ws (https becomes wss) and the /ws/wishlists path is
// appended when the URL carries only a host.
func normalizeWSBase(raw string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	var out string
	switch {
	case strings.HasPrefix(trimmed, "ws://"), strings.HasPrefix(trimmed, "wss://"):
		out = trimmed
	case strings.HasPrefix(trimmed, "http://"):
		out = "ws://" + strings.TrimPrefix(trimmed, "http://")
	case strings.HasPrefix(trimmed, "https://"):
		out = "wss://" + strings.TrimPrefix(trimmed, "https://")
	default:
		out = "ws://" + trimmed
	}
	if !strings.Contains(out, wishlistSocketPath) {
		out += wishlistSocketPath
	}
	return out
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
