package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Google endpoints, used when no provider override is configured.
const (
	DefaultOAuthAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	DefaultOAuthTokenURL    = "https://oauth2.googleapis.com/token"
	DefaultOAuthUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	minSessionSecretLen = 32
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Bookmark table
	DBPath string // SQLite file, ":memory:" for an ephemeral table

	// Sessions
	SessionSecret string        // HMAC key for session cookies
	SessionTTL    time.Duration // ex: 168h
	CookieSecure  bool          // false only for plain-http local development

	// OAuth identity provider
	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthUserInfoURL  string

	// Redis (optional, empty addr => in-process change feed)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Live sessions
	LivePingInterval time.Duration // websocket keepalive ping (ex: 30s)

	// Mutation rate limit
	RateBurst  int // tokens per client IP
	RatePerMin int // refill per client IP per minute

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict healthz/readyz/infra to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SMARTMARK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SMARTMARK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SMARTMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SMARTMARK_PRETTY_LOG", true),

		// Bookmark table
		DBPath: getenv("SMARTMARK_DB_PATH", "smartmark.db"),

		// Sessions
		SessionSecret: requireEnv("SMARTMARK_SESSION_SECRET"),
		SessionTTL:    mustDuration("SMARTMARK_SESSION_TTL", 7*24*time.Hour),
		CookieSecure:  mustBool("SMARTMARK_COOKIE_SECURE", true),

		// OAuth
		OAuthClientID:     requireEnv("SMARTMARK_OAUTH_CLIENT_ID"),
		OAuthClientSecret: requireEnv("SMARTMARK_OAUTH_CLIENT_SECRET"),
		OAuthAuthURL:      getenv("SMARTMARK_OAUTH_AUTH_URL", DefaultOAuthAuthURL),
		OAuthTokenURL:     getenv("SMARTMARK_OAUTH_TOKEN_URL", DefaultOAuthTokenURL),
		OAuthUserInfoURL:  getenv("SMARTMARK_OAUTH_USERINFO_URL", DefaultOAuthUserInfoURL),

		// Redis settings
		RedisAddr:             getenv("SMARTMARK_REDIS_ADDR", ""),
		RedisUser:             getenv("SMARTMARK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SMARTMARK_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SMARTMARK_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SMARTMARK_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Live sessions
		LivePingInterval: mustDuration("SMARTMARK_LIVE_PING_INTERVAL", 30*time.Second),

		// Rate limit
		RateBurst:  getenvInt("SMARTMARK_RATE_BURST", 20),
		RatePerMin: getenvInt("SMARTMARK_RATE_PER_MIN", 60),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SMARTMARK_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SMARTMARK_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SMARTMARK_TRUST_PROXY", true),
	}

	if len(cfg.SessionSecret) < minSessionSecretLen {
		panic(fmt.Sprintf("❌ FATAL: SMARTMARK_SESSION_SECRET must be at least %d bytes", minSessionSecretLen))
	}

	// Validate Redis password configuration
	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SMARTMARK_REDIS_PASSWORD is required when SMARTMARK_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	const mask = "***REDACTED***"
	c.SessionSecret = mask
	c.OAuthClientSecret = mask
	c.RedisPassword = mask
	if c.RedisUser != "" {
		c.RedisUser = mask
	}
	return c
}

// RedisEnabled reports whether the Redis change feed is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
