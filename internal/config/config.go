package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file omits a value.
const (
	// DefaultConfigFile is the config file looked up in the working directory.
	DefaultConfigFile = "config.yaml"
	// DefaultListenAddr is the default HTTP listen address.
	DefaultListenAddr = ":8080"
	// DefaultSessionCookie is the cookie carrying the session token.
	DefaultSessionCookie = "pac_session"
	// DefaultStepUpCookie is the cookie carrying the admin step-up token.
	DefaultStepUpCookie = "pac_admin_stepup"
	// DefaultCacheTTL is how long a cached role/status stays fresh.
	DefaultCacheTTL = 5 * time.Minute
	// DefaultCacheCapacity bounds the in-memory role cache.
	DefaultCacheCapacity = 10000
)

// Failure policies for the session gate.
const (
	// FailurePolicyAllow passes the request through when a lookup fails.
	FailurePolicyAllow = "allow"
	// FailurePolicyDeny sends the caller to the login route when a lookup fails.
	FailurePolicyDeny = "deny"
)

// Cache backends for the role cache.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// configEnvVar overrides the config file location.
const configEnvVar = "PORTAL_CONFIG"

// AppConfig carries process-level options resolved from the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the full runtime configuration loaded from YAML.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Routes   RoutesConfig   `yaml:"routes"`
	Gate     GateConfig     `yaml:"gate"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener options.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// UpstreamURL is the page rendering service passed-through requests are proxied to.
	UpstreamURL     string        `yaml:"upstream-url"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout"`
}

// DatabaseConfig holds the profile store connection string.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// JWTConfig holds session token options.
type JWTConfig struct {
	Secret        string        `yaml:"secret"`
	SessionTTL    time.Duration `yaml:"session-ttl"`
	RefreshWindow time.Duration `yaml:"refresh-window"`
	StepUpTTL     time.Duration `yaml:"stepup-ttl"`
	CookieName    string        `yaml:"cookie-name"`
	StepUpCookie  string        `yaml:"stepup-cookie-name"`
	SecureCookie  bool          `yaml:"secure-cookie"`
}

// RoutesConfig lists the redirect targets and public pages used by the gate.
type RoutesConfig struct {
	Login        string   `yaml:"login"`
	Unauthorized string   `yaml:"unauthorized"`
	AdminLanding string   `yaml:"admin-landing"`
	AgentLanding string   `yaml:"agent-landing"`
	PublicPaths  []string `yaml:"public-paths"`
}

// GateConfig holds session gate options.
type GateConfig struct {
	FailurePolicy string        `yaml:"failure-policy"`
	CacheBackend  string        `yaml:"cache-backend"`
	CacheTTL      time.Duration `yaml:"cache-ttl"`
	CacheCapacity int           `yaml:"cache-capacity"`
}

// RedisConfig holds options for the shared role cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// LogConfig holds logger options.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// ResolveConfigPath picks the config file path from the flag, env var or default.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return filepath.Clean(trimmed)
	}
	if env := strings.TrimSpace(os.Getenv(configEnvVar)); env != "" {
		return filepath.Clean(env)
	}
	return DefaultConfigFile
}

// ConfigExists reports whether a config file is present at path.
func ConfigExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Load reads, defaults and validates the YAML config at path.
func Load(path string) (Config, error) {
	data, errRead := os.ReadFile(path)
	if errRead != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if errDecode := yaml.Unmarshal(data, &cfg); errDecode != nil {
		return Config{}, fmt.Errorf("config: decode: %w", errDecode)
	}
	cfg.ApplyDefaults()
	if errValidate := cfg.Validate(); errValidate != nil {
		return Config{}, errValidate
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultListenAddr
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		c.Database.DSN = "file:data/portal.db"
	}

	if c.JWT.SessionTTL <= 0 {
		c.JWT.SessionTTL = 24 * time.Hour
	}
	if c.JWT.RefreshWindow <= 0 {
		c.JWT.RefreshWindow = time.Hour
	}
	if c.JWT.StepUpTTL <= 0 {
		c.JWT.StepUpTTL = 30 * time.Minute
	}
	if c.JWT.CookieName == "" {
		c.JWT.CookieName = DefaultSessionCookie
	}
	if c.JWT.StepUpCookie == "" {
		c.JWT.StepUpCookie = DefaultStepUpCookie
	}

	if c.Routes.Login == "" {
		c.Routes.Login = "/login"
	}
	if c.Routes.Unauthorized == "" {
		c.Routes.Unauthorized = "/unauthorized"
	}
	if c.Routes.AdminLanding == "" {
		c.Routes.AdminLanding = "/admin/dashboard"
	}
	if c.Routes.AgentLanding == "" {
		c.Routes.AgentLanding = "/agent/perfil"
	}
	if len(c.Routes.PublicPaths) == 0 {
		c.Routes.PublicPaths = []string{"/login", "/register", "/forgot-password", "/reset-password", "/sobre", "/contato"}
	}

	c.Gate.FailurePolicy = strings.ToLower(strings.TrimSpace(c.Gate.FailurePolicy))
	if c.Gate.FailurePolicy == "" {
		c.Gate.FailurePolicy = FailurePolicyAllow
	}
	c.Gate.CacheBackend = strings.ToLower(strings.TrimSpace(c.Gate.CacheBackend))
	if c.Gate.CacheBackend == "" {
		c.Gate.CacheBackend = CacheBackendMemory
	}
	if c.Gate.CacheTTL <= 0 {
		c.Gate.CacheTTL = DefaultCacheTTL
	}
	if c.Gate.CacheCapacity <= 0 {
		c.Gate.CacheCapacity = DefaultCacheCapacity
	}

	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "portal:role:"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 30
	}
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt.secret is required")
	}
	switch c.Gate.FailurePolicy {
	case FailurePolicyAllow, FailurePolicyDeny:
	default:
		return fmt.Errorf("config: unknown gate.failure-policy %q", c.Gate.FailurePolicy)
	}
	switch c.Gate.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("config: redis.addr is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("config: unknown gate.cache-backend %q", c.Gate.CacheBackend)
	}
	for _, route := range []string{c.Routes.Login, c.Routes.Unauthorized, c.Routes.AdminLanding, c.Routes.AgentLanding} {
		if !strings.HasPrefix(route, "/") {
			return fmt.Errorf("config: route %q must start with /", route)
		}
	}
	return nil
}
