// Package config loads the PetVend server configuration from a YAML file and
// environment variables. Environment variables win over the file, and
// command-line flags (applied by the caller) win over both.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Site      SiteConfig      `yaml:"site"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// CompressMinSize is the smallest response body gzipped, in bytes.
	CompressMinSize int `yaml:"compressMinSize"`
	// TrustedProxies lists the CIDR ranges or addresses of reverse proxies
	// whose X-Forwarded-For header identifies the client. Empty means the
	// header is ignored.
	TrustedProxies []string `yaml:"trustedProxies"`
}

type DatabaseConfig struct {
	// Path of the SQLite database. Empty disables lead storage, and leads
	// are only logged.
	Path string `yaml:"path"`
}

type AuthConfig struct {
	// JWTSecret signs admin sessions. When empty a random secret is
	// generated at startup, so sessions do not survive restarts.
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`

	// BootstrapEmail and BootstrapPassword create the first admin on
	// startup when no account with that email exists.
	BootstrapEmail    string `yaml:"bootstrapEmail"`
	BootstrapPassword string `yaml:"bootstrapPassword"`
}

type CacheConfig struct {
	// Size of the in-process result cache in entries. 0 disables it.
	Size int `yaml:"size"`
	// RedisAddr switches to a shared Redis cache, e.g. "localhost:6379".
	RedisAddr string        `yaml:"redisAddr"`
	TTL       time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	// LeadsPerMinute limits form submissions per client IP.
	LeadsPerMinute int `yaml:"leadsPerMinute"`
	Burst          int `yaml:"burst"`
}

type SiteConfig struct {
	ConfigPath  string `yaml:"configPath"`
	ContentDir  string `yaml:"contentDir"`
	OutDir      string `yaml:"outDir"`
	GitHubPages bool   `yaml:"githubPages"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CompressMinSize: 1024,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Cache: CacheConfig{
			Size: 1024,
			TTL:  time.Hour,
		},
		RateLimit: RateLimitConfig{
			LeadsPerMinute: 5,
			Burst:          3,
		},
		Site: SiteConfig{
			ConfigPath: "site.yaml",
			ContentDir: "content",
			OutDir:     "out",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is only an error when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DB_PATH", &c.Database.Path)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("ADMIN_EMAIL", &c.Auth.BootstrapEmail)
	str("ADMIN_PASSWORD", &c.Auth.BootstrapPassword)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("SITE_CONFIG", &c.Site.ConfigPath)
	str("CONTENT_DIR", &c.Site.ContentDir)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT=%q is not a number", ErrInvalid, v)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("TRUSTED_PROXIES"); ok && v != "" {
		c.Server.TrustedProxies = strings.Split(v, ",")
	}
	if v, ok := lookup("GITHUB_PAGES"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: GITHUB_PAGES=%q is not a boolean", ErrInvalid, v)
		}
		c.Site.GitHubPages = enabled
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, c.Server.Port)
	}
	if c.Server.CompressMinSize < 0 {
		return fmt.Errorf("%w: server.compressMinSize must not be negative", ErrInvalid)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: auth.tokenTTL must be positive", ErrInvalid)
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("%w: auth.jwtSecret must be at least 32 characters", ErrInvalid)
	}
	if (c.Auth.BootstrapEmail == "") != (c.Auth.BootstrapPassword == "") {
		return fmt.Errorf("%w: set both or neither of auth.bootstrapEmail and auth.bootstrapPassword", ErrInvalid)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("%w: cache.size must not be negative", ErrInvalid)
	}
	if c.RateLimit.LeadsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalid)
	}
	if c.Site.ConfigPath == "" {
		return fmt.Errorf("%w: site.configPath is required", ErrInvalid)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
