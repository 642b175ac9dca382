package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.Galaxy.Width != 1000 || cfg.Galaxy.Height != 1000 {
		t.Errorf("expected 1000x1000 canvas, got %dx%d", cfg.Galaxy.Width, cfg.Galaxy.Height)
	}

	if len(cfg.Galaxy.Tiers) != 5 {
		t.Errorf("expected 5 size tiers, got %d", len(cfg.Galaxy.Tiers))
	}

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver by default, got %q", cfg.Database.Driver)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected default config for missing file, got nil")
	}

	if cfg.Galaxy.FallenEmpireSpawnRadius != 30 {
		t.Errorf("expected default spawn radius 30, got %d", cfg.Galaxy.FallenEmpireSpawnRadius)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
galaxy:
  width: 1200
  height: 800
  fallen_empire_spawn_radius: 40
  size_tiers:
    - name: small
      min_stars: 0
      settings: |
        fallen_empire_default = 1
    - name: big
      min_stars: 500
      settings: |
        fallen_empire_default = 5
server:
  listen: ":9000"
  trusted_proxies: ["10.0.0.0/8", "127.0.0.1"]
  websocket:
    allowed_origins:
      - "https://paint.example.com"
  rate_limit:
    requests_per_second: 5
name_filter:
  enabled: true
  banned_words: [spam]
  max_length: 64
database:
  driver: postgres
  postgres:
    url: "postgres://galaxy@db/galaxy"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Galaxy.Width != 1200 || cfg.Galaxy.Height != 800 {
		t.Errorf("expected 1200x800, got %dx%d", cfg.Galaxy.Width, cfg.Galaxy.Height)
	}
	if cfg.Galaxy.FallenEmpireSpawnRadius != 40 {
		t.Errorf("expected radius 40, got %d", cfg.Galaxy.FallenEmpireSpawnRadius)
	}
	// Unset keys keep their defaults.
	if cfg.Galaxy.SpawnsPerMaxAIEmpire != 1.5 {
		t.Errorf("expected default spawn ratio, got %g", cfg.Galaxy.SpawnsPerMaxAIEmpire)
	}
	if !strings.Contains(cfg.Galaxy.Common, "priority = 10") {
		t.Error("expected default common block")
	}
	if tier := cfg.Galaxy.Tier(600); tier.Name != "big" || !strings.Contains(tier.Settings, "= 5") {
		t.Errorf("unexpected tier for 600 stars: %+v", tier)
	}
	if cfg.Server.Listen != ":9000" {
		t.Errorf("expected listen :9000, got %s", cfg.Server.Listen)
	}
	if prefixes, err := cfg.Server.TrustedProxyPrefixes(); err != nil || len(prefixes) != 2 || prefixes[1].Bits() != 32 {
		t.Errorf("unexpected trusted proxies: %v %v", prefixes, err)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 1 {
		t.Errorf("expected 1 allowed origin, got %d", len(cfg.Server.WebSocket.AllowedOrigins))
	}
	if cfg.Server.RateLimit.RequestsPerSecond != 5 || cfg.Server.RateLimit.Burst != 10 {
		t.Errorf("unexpected rate limit: %+v", cfg.Server.RateLimit)
	}
	if !cfg.NameFilter.Enabled || len(cfg.NameFilter.BannedWords) != 1 || cfg.NameFilter.MaxLength != 64 {
		t.Errorf("unexpected name filter: %+v", cfg.NameFilter)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.Postgres.URL != "postgres://galaxy@db/galaxy" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("galaxy: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg == nil || cfg.Galaxy.Width != 1000 {
		t.Error("expected defaults alongside parse error")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PAINTGALAXY_LISTEN", ":7777")
	t.Setenv("PAINTGALAXY_DB_DRIVER", "postgres")
	t.Setenv("PAINTGALAXY_FE_SPAWN_RADIUS", "12")
	t.Setenv("PAINTGALAXY_ADMIN_TOKEN", "s3cret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Listen != ":7777" {
		t.Errorf("expected :7777, got %s", cfg.Server.Listen)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.Database.Driver)
	}
	if cfg.Galaxy.FallenEmpireSpawnRadius != 12 {
		t.Errorf("expected radius 12, got %d", cfg.Galaxy.FallenEmpireSpawnRadius)
	}
	if cfg.Server.AdminToken != "s3cret" {
		t.Errorf("expected admin token from env, got %q", cfg.Server.AdminToken)
	}
}

func TestLoadEnv(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envPath, []byte("PAINTGALAXY_TEST_VALUE=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PAINTGALAXY_TEST_VALUE") })

	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"), envPath); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("PAINTGALAXY_TEST_VALUE"); got != "from-dotenv" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Galaxy.Width = 0 }},
		{"negative radius", func(c *Config) { c.Galaxy.FallenEmpireSpawnRadius = -1 }},
		{"zero ratio", func(c *Config) { c.Galaxy.SpawnsPerMaxAIEmpire = 0 }},
		{"no tiers", func(c *Config) { c.Galaxy.Tiers = nil }},
		{"descending tiers", func(c *Config) { c.Galaxy.Tiers[2].MinStars = 100 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"negative name length", func(c *Config) { c.NameFilter.MaxLength = -1 }},
		{"bad trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} }},
		{"bad trusted cidr", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/99"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{},
	}

	if !cfg.IsOriginAllowed("", "localhost:8080") {
		t.Error("expected empty origin to be allowed (same-origin)")
	}

	if !cfg.IsOriginAllowed("http://localhost:8080", "localhost:8080") {
		t.Error("expected matching origin to be allowed (same-origin)")
	}

	if cfg.IsOriginAllowed("http://evil.com", "localhost:8080") {
		t.Error("expected different origin to be rejected (same-origin policy)")
	}
}

func TestIsOriginAllowed_Wildcard(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{"*"},
	}

	if !cfg.IsOriginAllowed("http://anything.com", "localhost:8080") {
		t.Error("expected wildcard to allow any origin")
	}
}

func TestIsOriginAllowed_ExactMatch(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{"https://paint.example.com"},
	}

	if !cfg.IsOriginAllowed("https://paint.example.com", "localhost:8080") {
		t.Error("expected exact match to be allowed")
	}

	if cfg.IsOriginAllowed("https://paint.example.com:8443", "localhost:8080") {
		t.Error("expected partial match to be rejected")
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin      string
		requestHost string
		expected    bool
	}{
		{"", "localhost:8080", true},
		{"http://localhost:8080", "localhost:8080", true},
		{"https://localhost:8080/", "localhost:8080", true},
		{"http://example.com", "localhost:8080", false},
		{"http://localhost:3000", "localhost:8080", false},
	}

	for _, tt := range tests {
		result := isSameOrigin(tt.origin, tt.requestHost)
		if result != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v",
				tt.origin, tt.requestHost, result, tt.expected)
		}
	}
}
