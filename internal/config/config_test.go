package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WISHLY_API_URL", "")
	t.Setenv("WISHLY_WS_URL", "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}
	if cfg.WSURL != "ws://localhost:8000/ws/wishlists" {
		t.Fatalf("WSURL = %q, want ws derived from the API URL", cfg.WSURL)
	}
	if cfg.StatsPollSeconds != defaultStatsPoll {
		t.Fatalf("StatsPollSeconds = %d, want %d", cfg.StatsPollSeconds, defaultStatsPoll)
	}
}

func TestLoad_ParsesConfigFile(t *testing.T) {
	t.Setenv("WISHLY_API_URL", "")
	t.Setenv("WISHLY_WS_URL", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "https://wishly.example.com"
log_level = "debug"
stats_poll_seconds = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://wishly.example.com" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.WSURL != "wss://wishly.example.com/ws/wishlists" {
		t.Fatalf("WSURL = %q, want wss derived from https", cfg.WSURL)
	}
	if cfg.LogLevel != "debug" || cfg.StatsPollSeconds != 5 {
		t.Fatalf("cfg = %#v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`api_url = "http://from-file:8000"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("WISHLY_API_URL", "http://from-env:9000")
	t.Setenv("WISHLY_WS_URL", "")
	t.Setenv("WISHLY_STATS_POLL_SECONDS", "12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://from-env:9000" {
		t.Fatalf("APIURL = %q, want the env value", cfg.APIURL)
	}
	if cfg.WSURL != "ws://from-env:9000/ws/wishlists" {
		t.Fatalf("WSURL = %q", cfg.WSURL)
	}
	if cfg.StatsPollSeconds != 12 {
		t.Fatalf("StatsPollSeconds = %d, want 12", cfg.StatsPollSeconds)
	}
}

func TestNormalizeWSBase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"http://localhost:8000", "ws://localhost:8000/ws/wishlists"},
		{"https://wishly.example.com", "wss://wishly.example.com/ws/wishlists"},
		{"http://localhost:8000/", "ws://localhost:8000/ws/wishlists"},
		{"ws://localhost:8000/ws/wishlists", "ws://localhost:8000/ws/wishlists"},
		{"wss://wishly.example.com/ws/wishlists", "wss://wishly.example.com/ws/wishlists"},
		{"localhost:8000", "ws://localhost:8000/ws/wishlists"},
	}
	for _, tc := range cases {
		if got := normalizeWSBase(tc.in); got != tc.want {
			t.Fatalf("normalizeWSBase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSocketURLs(t *testing.T) {
	cfg := Config{WSURL: "ws://localhost:8000/ws/wishlists"}

	if got := cfg.WishlistSocketURL(42); got != "ws://localhost:8000/ws/wishlists/42" {
		t.Fatalf("WishlistSocketURL = %q", got)
	}
	if got := cfg.LandingSocketURL(); got != "ws://localhost:8000/ws/landing" {
		t.Fatalf("LandingSocketURL = %q", got)
	}
}
