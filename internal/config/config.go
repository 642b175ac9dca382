// Package config loads the generator and service settings from YAML.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/galaxy"
	"github.com/paintgalaxy/server/internal/namefilter"
)

// Config is the top-level configuration file.
type Config struct {
	Galaxy   galaxy.Settings `yaml:"galaxy"`
	Server   ServerConfig    `yaml:"server"`
	Database database.Config `yaml:"database"`

	// NameFilter screens the names of archived galaxies.
	NameFilter namefilter.Config `yaml:"name_filter"`
}

// ServerConfig holds HTTP and WebSocket settings.
type ServerConfig struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// TrustedProxies lists the reverse proxies (IPs or CIDRs) whose
	// X-Forwarded-For and X-Real-IP headers are believed. Empty means
	// clients are keyed by their direct address only.
	TrustedProxies []string `yaml:"trusted_proxies"`

	// AdminToken is the bearer token for deleting archived scenarios.
	// Empty disables deletion over HTTP.
	AdminToken string `yaml:"admin_token"`

	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// RateLimitConfig holds per-client limits for generation requests.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained generation rate per client IP.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is how many requests a client may make at once.
	Burst int `yaml:"burst"`
}

// ConnectionsConfig holds live preview connection limits.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent WebSocket connections from one IP.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent WebSocket connections.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// WebSocketConfig holds settings shared by the live preview socket and CORS.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to call the API.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the largest painted map accepted over the socket, in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DefaultConfig returns a Config with the stock galaxy settings and a
// local SQLite archive.
func DefaultConfig() *Config {
	return &Config{
		Galaxy: galaxy.DefaultSettings(),
		Server: ServerConfig{
			Listen: ":8080",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{},
				MaxMessageSize: 1 << 20, // painted maps run to a few hundred KB
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 4,
				MaxTotal: 200,
			},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 2,
				Burst:             10,
			},
		},
		Database: database.DefaultConfig("data/scenarios.db"),
	}
}

// LoadConfig loads configuration from a YAML file over the defaults, then
// applies environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, err
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadEnv loads .env style files into the process environment. Files that
// don't exist are skipped; variables already set are kept.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PAINTGALAXY_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("PAINTGALAXY_ADMIN_TOKEN"); v != "" {
		c.Server.AdminToken = v
	}
	if v := os.Getenv("PAINTGALAXY_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("PAINTGALAXY_SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("PAINTGALAXY_DATABASE_URL"); v != "" {
		c.Database.Postgres.URL = v
	}
	if v := os.Getenv("PAINTGALAXY_FE_SPAWN_RADIUS"); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PAINTGALAXY_FE_SPAWN_RADIUS: %w", err)
		}
		c.Galaxy.FallenEmpireSpawnRadius = r
	}
	return nil
}

// Validate rejects settings the generator cannot work with.
func (c *Config) Validate() error {
	g := c.Galaxy
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("galaxy canvas must be positive, got %dx%d", g.Width, g.Height)
	}
	if c.NameFilter.MaxLength < 0 {
		return fmt.Errorf("name_filter.max_length must not be negative, got %d", c.NameFilter.MaxLength)
	}
	if g.FallenEmpireSpawnRadius <= 0 {
		return fmt.Errorf("fallen_empire_spawn_radius must be positive, got %d", g.FallenEmpireSpawnRadius)
	}
	if g.SpawnsPerMaxAIEmpire <= 0 {
		return fmt.Errorf("spawns_per_max_ai_empire must be positive, got %g", g.SpawnsPerMaxAIEmpire)
	}
	if len(g.Tiers) == 0 {
		return errors.New("at least one size tier is required")
	}
	for i := 1; i < len(g.Tiers); i++ {
		if g.Tiers[i].MinStars <= g.Tiers[i-1].MinStars {
			return fmt.Errorf("size tier %q must start above %q", g.Tiers[i].Name, g.Tiers[i-1].Name)
		}
	}

	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		return err
	}

	switch c.Database.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// TrustedProxyPrefixes parses TrustedProxies. A bare IP becomes a
// single-address prefix.
func (c *ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted_proxies: %w", err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted_proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
