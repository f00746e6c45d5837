package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/2beens/notesweb/pkg"
)

const (
	FlashBackendRedis  = "redis"
	FlashBackendMemory = "memory"

	defaultFlashTTLSeconds = 60
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// notes backend
	NotesApiBaseURL        string `toml:"notes_api_base_url"`
	NotesApiTimeoutSeconds int    `toml:"notes_api_timeout_seconds"`
	// share URLs returned by the backend are rewritten to point here, if set
	PublicBaseURL string `toml:"public_base_url"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// flash messages (share URL shown after redirect)
	FlashBackend    string `toml:"flash_backend"`
	FlashTTLSeconds int    `toml:"flash_ttl_seconds"`

	// 0 disables rate limiting of the note mutating routes
	RateLimitAllowedPerMin int `toml:"rate_limit_allowed_per_min"`
	// reverse proxies (ips or cidr ranges) allowed to set X-Real-Ip / X-Forwarded-For
	TrustedProxies []string `toml:"trusted_proxies"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing in %s", env, path)
	}

	cfg.Environment = strings.ToLower(env)
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.FlashBackend == "" {
		c.FlashBackend = FlashBackendMemory
	}
	if c.FlashTTLSeconds <= 0 {
		c.FlashTTLSeconds = defaultFlashTTLSeconds
	}
	c.NotesApiBaseURL = strings.TrimRight(c.NotesApiBaseURL, "/")
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("port must be positive, got %d", c.Port)
	}
	if c.NotesApiBaseURL == "" {
		return errors.New("notes_api_base_url not set")
	}
	if u, err := url.Parse(c.NotesApiBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("notes_api_base_url [%s] is not an absolute url", c.NotesApiBaseURL)
	}
	if c.PublicBaseURL != "" {
		if u, err := url.Parse(c.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("public_base_url [%s] is not an absolute url", c.PublicBaseURL)
		}
	}
	if c.NotesApiTimeoutSeconds < 0 {
		return fmt.Errorf("notes_api_timeout_seconds cannot be negative, got %d", c.NotesApiTimeoutSeconds)
	}
	switch c.FlashBackend {
	case FlashBackendRedis, FlashBackendMemory:
	default:
		return fmt.Errorf("unknown flash_backend: %s", c.FlashBackend)
	}
	if _, err := pkg.NewClientIPReader(c.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted_proxies: %w", err)
	}
	if c.RedisRequired() && (c.RedisHost == "" || c.RedisPort == "") {
		return errors.New("redis_host and redis_port must be set for redis flash backend or rate limiting")
	}
	return nil
}

// RedisRequired tells if any of the configured components needs a redis connection.
func (c *Config) RedisRequired() bool {
	return c.FlashBackend == FlashBackendRedis || c.RateLimitAllowedPerMin > 0
}

func (c *Config) NotesApiTimeout() time.Duration {
	return time.Duration(c.NotesApiTimeoutSeconds) * time.Second
}

func (c *Config) FlashTTL() time.Duration {
	return time.Duration(c.FlashTTLSeconds) * time.Second
}
