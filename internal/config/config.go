package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	AI        AIConfig        `yaml:"ai"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Storage   StorageConfig   `yaml:"storage"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"   env:"SERVER_RATE_LIMIT_RPS"   env-default:"10"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"SERVER_RATE_LIMIT_BURST" env-default:"30"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	// StatementTimeout bounds every statement server-side. Zero disables it.
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DATABASE_STATEMENT_TIMEOUT" env-default:"30s"`
}

// AuthConfig holds bearer token settings. Tokens are issued by an external
// identity service; this backend only validates them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"mindump"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// AIConfig configures the generative extraction model.
type AIConfig struct {
	APIKey        string        `yaml:"api_key"         env:"AI_API_KEY"`
	Model         string        `yaml:"model"           env:"AI_MODEL"           env-default:"claude-sonnet-4-5"`
	MaxTokens     int64         `yaml:"max_tokens"      env:"AI_MAX_TOKENS"      env-default:"2048"`
	Timeout       time.Duration `yaml:"timeout"         env:"AI_TIMEOUT"         env-default:"60s"`
	RatePerSecond float64       `yaml:"rate_per_second" env:"AI_RATE_PER_SECOND" env-default:"2"`
	RateBurst     int           `yaml:"rate_burst"      env:"AI_RATE_BURST"      env-default:"4"`
}

// EmbeddingConfig configures the OpenAI-compatible embedding endpoint.
type EmbeddingConfig struct {
	BaseURL string `yaml:"base_url"        env:"EMBEDDING_BASE_URL"`
	Model   string `yaml:"model"           env:"EMBEDDING_MODEL"           env-default:"text-embedding-3-small"`
	APIKey  string `yaml:"api_key"         env:"EMBEDDING_API_KEY"`
	// Dimensions pins the embedding size. Zero accepts any size, but pgvector's
	// distance operators reject vectors of mixed sizes, so a model change would
	// leave similarity lookups failing and dumps extracted without context.
	Dimensions    int           `yaml:"dimensions"      env:"EMBEDDING_DIMENSIONS"      env-default:"1536"`
	Timeout       time.Duration `yaml:"timeout"         env:"EMBEDDING_TIMEOUT"         env-default:"15s"`
	RatePerSecond float64       `yaml:"rate_per_second" env:"EMBEDDING_RATE_PER_SECOND" env-default:"10"`
}

// CalendarConfig configures Google Calendar sync.
type CalendarConfig struct {
	Enabled           bool          `yaml:"enabled"             env:"CALENDAR_ENABLED"             env-default:"false"`
	ClientID          string        `yaml:"client_id"           env:"CALENDAR_CLIENT_ID"`
	ClientSecret      string        `yaml:"client_secret"       env:"CALENDAR_CLIENT_SECRET"`
	RedirectURL       string        `yaml:"redirect_url"        env:"CALENDAR_REDIRECT_URL"`
	DefaultCalendarID string        `yaml:"default_calendar_id" env:"CALENDAR_DEFAULT_ID"          env-default:"primary"`
	TimeZone          string        `yaml:"time_zone"           env:"CALENDAR_TIME_ZONE"           env-default:"UTC"`
	Timeout           time.Duration `yaml:"timeout"             env:"CALENDAR_TIMEOUT"             env-default:"10s"`
}

// StorageConfig configures where dump media is fetched from.
type StorageConfig struct {
	AzureConnectionString string        `yaml:"azure_connection_string" env:"STORAGE_AZURE_CONNECTION_STRING"`
	AzureContainer        string        `yaml:"azure_container"         env:"STORAGE_AZURE_CONTAINER"         env-default:"dumps"`
	LocalMediaRoot        string        `yaml:"local_media_root"        env:"STORAGE_LOCAL_MEDIA_ROOT"`
	MaxMediaBytes         int64         `yaml:"max_media_bytes"         env:"STORAGE_MAX_MEDIA_BYTES"         env-default:"10485760"`
	FetchTimeout          time.Duration `yaml:"fetch_timeout"           env:"STORAGE_FETCH_TIMEOUT"           env-default:"20s"`
}

// PipelineConfig configures the dump processing queue.
type PipelineConfig struct {
	Workers      int           `yaml:"workers"       env:"PIPELINE_WORKERS"       env-default:"4"`
	QueueSize    int           `yaml:"queue_size"    env:"PIPELINE_QUEUE_SIZE"    env-default:"256"`
	DumpTimeout  time.Duration `yaml:"dump_timeout"  env:"PIPELINE_DUMP_TIMEOUT"  env-default:"2m"`
	ContextLimit int           `yaml:"context_limit" env:"PIPELINE_CONTEXT_LIMIT" env-default:"3"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// HasAI reports whether an extraction model key is configured.
func (c AIConfig) HasAI() bool {
	return c.APIKey != ""
}

// IsAzure reports whether blob-backed media references can be resolved.
func (c StorageConfig) IsAzure() bool {
	return c.AzureConnectionString != ""
}

// AllowedOriginList splits the comma-separated origin list.
func (c CORSConfig) AllowedOriginList() []string {
	return splitList(c.AllowedOrigins)
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
