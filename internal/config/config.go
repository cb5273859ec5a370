package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Dataset    DatasetConfig
	PostgreSQL PostgreSQLConfig
	Search     SearchConfig
	Ranking    RankingConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
	Redis      RedisConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// DatasetConfig selects where the project table is loaded from
type DatasetConfig struct {
	Source string // csv | postgres
	Dir    string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, wins over the parts below
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	LogSearches        bool
}

// SearchConfig holds result-size limits
type SearchConfig struct {
	DefaultTopK int
	MaxTopK     int
}

// RankingConfig holds score weights and relaxation tolerance
type RankingConfig struct {
	WeightCity       float64
	WeightLocality   float64
	WeightBHK        float64
	WeightBudget     float64
	WeightPossession float64
	WeightAmenity    float64
	WeightFreeText   float64
	BudgetTolerance  float64
	FuzzyEnabled     bool
	FuzzyThreshold   float64
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds the OpenAI-compatible chat API configuration used by the model parser
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatMaxTokens   int
	Timeout         time.Duration
	MaxRetries      int
	Enabled         bool
}

// RedisConfig holds the optional response cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Enabled  bool
}

type setting struct {
	key string
	env string
	def interface{}
}

var settings = []setting{
	{"server.port", "SERVER_PORT", 8080},
	{"server.host", "SERVER_HOST", "0.0.0.0"},
	{"server.gin_mode", "GIN_MODE", "release"},
	{"server.allowed_origins", "CORS_ALLOWED_ORIGINS", "*"},
	{"server.allowed_methods", "CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"},
	{"server.allowed_headers", "CORS_ALLOWED_HEADERS", "Content-Type,Authorization"},

	{"dataset.source", "DATASET_SOURCE", "csv"},
	{"dataset.dir", "DATASET_DIR", "./data"},

	{"postgres.dsn", "DATABASE_URL", ""},
	{"postgres.host", "PG_HOST", "localhost"},
	{"postgres.port", "PG_PORT", 5432},
	{"postgres.user", "PG_USER", "postgres"},
	{"postgres.password", "PG_PASSWORD", ""},
	{"postgres.database", "PG_DATABASE", "project_search"},
	{"postgres.sslmode", "PG_SSLMODE", "disable"},
	{"postgres.max_connections", "PG_MAX_CONNECTIONS", 25},
	{"postgres.max_idle_connections", "PG_MAX_IDLE_CONNECTIONS", 5},
	{"postgres.log_searches", "PG_LOG_SEARCHES", false},

	{"search.default_top_k", "SEARCH_DEFAULT_TOP_K", 5},
	{"search.max_top_k", "SEARCH_MAX_TOP_K", 50},

	{"ranking.weight_city", "RANK_WEIGHT_CITY", 40.0},
	{"ranking.weight_locality", "RANK_WEIGHT_LOCALITY", 30.0},
	{"ranking.weight_bhk", "RANK_WEIGHT_BHK", 25.0},
	{"ranking.weight_budget", "RANK_WEIGHT_BUDGET", 10.0},
	{"ranking.weight_possession", "RANK_WEIGHT_POSSESSION", 10.0},
	{"ranking.weight_amenity", "RANK_WEIGHT_AMENITY", 5.0},
	{"ranking.weight_free_text", "RANK_WEIGHT_FREE_TEXT", 15.0},
	{"ranking.budget_tolerance", "RANK_BUDGET_TOLERANCE", 0.10},
	{"ranking.fuzzy_enabled", "RANK_FUZZY_ENABLED", true},
	{"ranking.fuzzy_threshold", "RANK_FUZZY_THRESHOLD", 0.75},

	{"logging.level", "LOG_LEVEL", "info"},
	{"logging.format", "LOG_FORMAT", "json"},

	{"openai.api_key", "OPENAI_API_KEY", ""},
	{"openai.api_base", "OPENAI_API_BASE", "https://api.openai.com/v1"},
	{"openai.chat_model", "OPENAI_CHAT_MODEL", "gpt-4o-mini"},
	{"openai.chat_temperature", "OPENAI_CHAT_TEMPERATURE", 0.0},
	{"openai.chat_max_tokens", "OPENAI_CHAT_MAX_TOKENS", 512},
	{"openai.timeout", "OPENAI_TIMEOUT", "8s"},
	{"openai.max_retries", "OPENAI_MAX_RETRIES", 1},

	{"redis.addr", "REDIS_ADDR", ""},
	{"redis.password", "REDIS_PASSWORD", ""},
	{"redis.db", "REDIS_DB", 0},
	{"redis.ttl", "REDIS_TTL", "10m"},
}

// Load reads configuration from an optional .env file, an optional YAML file named
// by CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("bind CONFIG_FILE: %w", err)
	}
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			Host:           v.GetString("server.host"),
			GinMode:        v.GetString("server.gin_mode"),
			AllowedOrigins: v.GetString("server.allowed_origins"),
			AllowedMethods: v.GetString("server.allowed_methods"),
			AllowedHeaders: v.GetString("server.allowed_headers"),
		},
		Dataset: DatasetConfig{
			Source: strings.ToLower(v.GetString("dataset.source")),
			Dir:    v.GetString("dataset.dir"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                v.GetString("postgres.dsn"),
			Host:               v.GetString("postgres.host"),
			Port:               v.GetInt("postgres.port"),
			User:               v.GetString("postgres.user"),
			Password:           v.GetString("postgres.password"),
			Database:           v.GetString("postgres.database"),
			SSLMode:            v.GetString("postgres.sslmode"),
			MaxConnections:     v.GetInt("postgres.max_connections"),
			MaxIdleConnections: v.GetInt("postgres.max_idle_connections"),
			LogSearches:        v.GetBool("postgres.log_searches"),
		},
		Search: SearchConfig{
			DefaultTopK: v.GetInt("search.default_top_k"),
			MaxTopK:     v.GetInt("search.max_top_k"),
		},
		Ranking: RankingConfig{
			WeightCity:       v.GetFloat64("ranking.weight_city"),
			WeightLocality:   v.GetFloat64("ranking.weight_locality"),
			WeightBHK:        v.GetFloat64("ranking.weight_bhk"),
			WeightBudget:     v.GetFloat64("ranking.weight_budget"),
			WeightPossession: v.GetFloat64("ranking.weight_possession"),
			WeightAmenity:    v.GetFloat64("ranking.weight_amenity"),
			WeightFreeText:   v.GetFloat64("ranking.weight_free_text"),
			BudgetTolerance:  v.GetFloat64("ranking.budget_tolerance"),
			FuzzyEnabled:     v.GetBool("ranking.fuzzy_enabled"),
			FuzzyThreshold:   v.GetFloat64("ranking.fuzzy_threshold"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
		OpenAI: OpenAIConfig{
			APIKey:          v.GetString("openai.api_key"),
			APIBase:         strings.TrimRight(v.GetString("openai.api_base"), "/"),
			ChatModel:       v.GetString("openai.chat_model"),
			ChatTemperature: v.GetFloat64("openai.chat_temperature"),
			ChatMaxTokens:   v.GetInt("openai.chat_max_tokens"),
			Timeout:         v.GetDuration("openai.timeout"),
			MaxRetries:      v.GetInt("openai.max_retries"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
	}
	cfg.OpenAI.Enabled = cfg.OpenAI.APIKey != ""
	cfg.Redis.Enabled = cfg.Redis.Addr != ""

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	var errs []error
	switch c.Dataset.Source {
	case "csv":
		if c.Dataset.Dir == "" {
			errs = append(errs, errors.New("dataset.dir is required for the csv source"))
		}
	case "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown dataset source %q", c.Dataset.Source))
	}
	if c.Search.DefaultTopK <= 0 {
		errs = append(errs, errors.New("search.default_top_k must be positive"))
	}
	if c.Search.MaxTopK < c.Search.DefaultTopK {
		errs = append(errs, errors.New("search.max_top_k must be >= search.default_top_k"))
	}
	if c.Ranking.BudgetTolerance < 0 || c.Ranking.BudgetTolerance >= 1 {
		errs = append(errs, errors.New("ranking.budget_tolerance must be in [0, 1)"))
	}
	if c.Ranking.FuzzyThreshold <= 0 || c.Ranking.FuzzyThreshold > 1 {
		errs = append(errs, errors.New("ranking.fuzzy_threshold must be in (0, 1]"))
	}
	if c.OpenAI.MaxRetries < 0 || c.OpenAI.MaxRetries > 1 {
		errs = append(errs, errors.New("openai.max_retries must be 0 or 1"))
	}
	return errors.Join(errs...)
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Address is the host:port the HTTP server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
