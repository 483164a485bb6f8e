// Package config provides unified configuration loading for the service,
// supporting YAML files with environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("config.yaml").
//	    WithEnvPrefix("CAMPUSRAG").
//	    Load()
//
// Precedence: defaults -> YAML file -> environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	LLM       LLMConfig       `yaml:"llm" env:"LLM"`
	Embedding EmbeddingConfig `yaml:"embedding" env:"EMBEDDING"`
	Pinecone  PineconeConfig  `yaml:"pinecone" env:"PINECONE"`
	Redis     RedisConfig     `yaml:"redis" env:"REDIS"`
	History   HistoryConfig   `yaml:"history" env:"HISTORY"`
	Auth      AuthConfig      `yaml:"auth" env:"AUTH"`
	Ingest    IngestConfig    `yaml:"ingest" env:"INGEST"`
	Pipeline  PipelineConfig  `yaml:"pipeline" env:"PIPELINE"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	HTTPPort           int           `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort        int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout        time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout       time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	RateLimitRPS       int           `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst     int           `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// LLMConfig selects and configures the completion backend.
// Provider is one of "gemini" or "ollama"; the choice is made once at startup.
type LLMConfig struct {
	Provider string        `yaml:"provider" env:"PROVIDER"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`

	Gemini GeminiConfig `yaml:"gemini" env:"GEMINI"`
	Ollama OllamaConfig `yaml:"ollama" env:"OLLAMA"`
}

// GeminiConfig configures the hosted Gemini completion backend.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key" env:"API_KEY"`
	Model   string `yaml:"model" env:"MODEL"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
}

// OllamaConfig configures the locally hosted Ollama completion backend.
type OllamaConfig struct {
	Model       string  `yaml:"model" env:"MODEL"`
	BaseURL     string  `yaml:"base_url" env:"BASE_URL"`
	Temperature float64 `yaml:"temperature" env:"TEMPERATURE"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	Model   string        `yaml:"model" env:"MODEL"`
	APIKey  string        `yaml:"api_key" env:"API_KEY"`
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// PineconeConfig configures the vector index.
type PineconeConfig struct {
	APIKey    string        `yaml:"api_key" env:"API_KEY"`
	Index     string        `yaml:"index" env:"INDEX"`
	BaseURL   string        `yaml:"base_url" env:"BASE_URL"`
	Namespace string        `yaml:"namespace" env:"NAMESPACE"`
	Timeout   time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// RedisConfig configures the answer cache and the Redis history backend.
type RedisConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	Password     string        `yaml:"password" env:"PASSWORD"`
	DB           int           `yaml:"db" env:"DB"`
	PoolSize     int           `yaml:"pool_size" env:"POOL_SIZE"`
	AnswerTTL    time.Duration `yaml:"answer_ttl" env:"ANSWER_TTL"`
	CacheEnabled bool          `yaml:"cache_enabled" env:"CACHE_ENABLED"`
}

// HistoryConfig selects the interaction log backend.
// Backend is one of "file", "redis", or "sqlite".
type HistoryConfig struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	Path    string `yaml:"path" env:"PATH"`
	DSN     string `yaml:"dsn" env:"DSN"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	RosterPath  string        `yaml:"roster_path" env:"ROSTER_PATH"`
	UserDBPath  string        `yaml:"user_db_path" env:"USER_DB_PATH"`
	RecordsPath string        `yaml:"records_path" env:"RECORDS_PATH"`
}

// IngestConfig holds document ingestion settings.
type IngestConfig struct {
	ChunkSizeWords int  `yaml:"chunk_size_words" env:"CHUNK_SIZE_WORDS"`
	MetadataMaxLen int  `yaml:"metadata_max_len" env:"METADATA_MAX_LEN"`
	RejectOversize bool `yaml:"reject_oversize" env:"REJECT_OVERSIZE"`
	EmbedBatchSize int  `yaml:"embed_batch_size" env:"EMBED_BATCH_SIZE"`
	Parallelism    int  `yaml:"parallelism" env:"PARALLELISM"`
}

// PipelineConfig bounds the query pipeline stages.
type PipelineConfig struct {
	TopK             int           `yaml:"top_k" env:"TOP_K"`
	RetrieveTimeout  time.Duration `yaml:"retrieve_timeout" env:"RETRIEVE_TIMEOUT"`
	CompleteTimeout  time.Duration `yaml:"complete_timeout" env:"COMPLETE_TIMEOUT"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string   `yaml:"level" env:"LEVEL"`
	Format      string   `yaml:"format" env:"FORMAT"`
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// Loader loads configuration using the builder pattern.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "CAMPUSRAG",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a config validator.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load loads the configuration.
// Precedence: defaults -> YAML file -> environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration is an int64 underneath but parses differently.
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// Comma-separated string slices.
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	switch c.LLM.Provider {
	case "gemini", "ollama":
	default:
		errs = append(errs, fmt.Sprintf("unknown llm provider %q (supported: gemini, ollama)", c.LLM.Provider))
	}
	switch c.History.Backend {
	case "file", "redis", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("unknown history backend %q (supported: file, redis, sqlite)", c.History.Backend))
	}
	if c.Ingest.ChunkSizeWords <= 0 {
		errs = append(errs, "chunk_size_words must be positive")
	}
	if c.Pipeline.TopK <= 0 {
		errs = append(errs, "top_k must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
