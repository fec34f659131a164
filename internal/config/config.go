// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Glossary  GlossaryConfig
	Translate TranslateConfig
	Pipeline  PipelineConfig
	Upload    UploadConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the optional PostgreSQL glossary store settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; the store is disabled when empty.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// ConnectTimeout bounds the initial connection attempt (default: 5s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"5s"`
}

// Enabled reports whether a database URL is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// RedisConfig holds the optional Redis glossary source settings.
type RedisConfig struct {
	// Addr is host:port; the source is disabled when empty.
	Addr string `env:"REDIS_ADDR"`

	// Password is the AUTH password.
	Password string `env:"REDIS_PASSWORD"`

	// DB is the database number (default: 0)
	DB int `env:"REDIS_DB" default:"0"`

	// GlossaryKey is the hash holding glossary terms (default: sizetable:glossary)
	GlossaryKey string `env:"REDIS_GLOSSARY_KEY" default:"sizetable:glossary"`
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// GlossaryConfig controls where the glossary is loaded from.
type GlossaryConfig struct {
	// Sources is the lookup order; the first non-empty glossary wins.
	// Unconfigured sources are skipped (default: postgres,redis,file,url,embedded)
	Sources []string `env:"GLOSSARY_SOURCES" default:"postgres,redis,file,url,embedded"`

	// Path is a local CSV file (source,target with header row).
	Path string `env:"GLOSSARY_PATH"`

	// URL is a CSV download location.
	URL string `env:"GLOSSARY_URL"`

	// LoadTimeout bounds loading across all sources (default: 15s)
	LoadTimeout time.Duration `env:"GLOSSARY_LOAD_TIMEOUT" default:"15s"`
}

// TranslateConfig holds remote translation settings.
type TranslateConfig struct {
	// Provider is none, google or openai (default: none)
	Provider string `env:"TRANSLATE_PROVIDER" default:"none"`

	// SourceLanguage is the language of the sheet labels (default: ja)
	SourceLanguage string `env:"TRANSLATE_SOURCE_LANG" default:"ja"`

	// TargetLanguage is the language of the tables (default: zh)
	TargetLanguage string `env:"TRANSLATE_TARGET_LANG" default:"zh"`

	// Timeout bounds one remote call; expiry counts as unavailable (default: 20s)
	Timeout time.Duration `env:"TRANSLATE_TIMEOUT" default:"20s"`

	GoogleEndpoint    string `env:"GOOGLE_TRANSLATE_ENDPOINT" default:"https://translation.googleapis.com/v3"`
	GoogleProject     string `env:"GOOGLE_PROJECT_ID"`
	GoogleLocation    string `env:"GOOGLE_LOCATION" default:"us-central1"`
	GoogleGlossary    string `env:"GOOGLE_GLOSSARY_ID"`
	// GoogleAccessToken overrides Application Default Credentials. It is
	// never refreshed, so it only suits short runs.
	GoogleAccessToken string `env:"GOOGLE_ACCESS_TOKEN"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
}

// PipelineConfig holds table building settings.
type PipelineConfig struct {
	// SizeLabel heads the size column (default: 尺码)
	SizeLabel string `env:"PIPELINE_SIZE_LABEL" default:"尺码"`

	// LabelSet selects the header labels: ja or en (default: ja)
	LabelSet string `env:"PIPELINE_LABEL_SET" default:"ja"`

	// OnDuplicate is keep-first or error (default: keep-first)
	OnDuplicate string `env:"PIPELINE_ON_DUPLICATE" default:"keep-first"`

	// OnMismatch is reject or align-by-name (default: reject)
	OnMismatch string `env:"PIPELINE_ON_MISMATCH" default:"reject"`

	// TranslateMisses sends glossary misses to the remote translator (default: false)
	TranslateMisses bool `env:"PIPELINE_TRANSLATE_MISSES" default:"false"`

	// SheetName is the worksheet to read; the first one when empty.
	SheetName string `env:"PIPELINE_SHEET_NAME"`
}

// UploadConfig holds upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of parallel runs (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single run (default: 2m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload endpoints (default: 20)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the /api routes with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
