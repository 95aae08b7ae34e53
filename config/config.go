package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Server   ServerConfig `yaml:"server"`
	Store    StoreConfig  `yaml:"store"`
	Valkey   ValkeyConfig `yaml:"valkey"`
	Search   SearchConfig `yaml:"search"`
	LogLevel string       `yaml:"log_level"`
	Health   HealthConfig `yaml:"health"`
}

type ServerConfig struct {
	HTTPAddr           string        `yaml:"http_addr"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
}

type StoreConfig struct {
	Backend         string `yaml:"backend"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
	AWSRegion       string `yaml:"aws_region"`
	AWSEndpoint     string `yaml:"aws_endpoint"`
	DynamoDBTable   string `yaml:"dynamodb_table"`
	PostgresDSN     string `yaml:"postgres_dsn"`
	PostgresTable   string `yaml:"postgres_table"`
	MemoryDumpPath  string `yaml:"memory_dump_path"`
}

type ValkeyConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	UseTLS   bool   `yaml:"tls"`
}

type SearchConfig struct {
	TitleSearchCap int `yaml:"title_search_cap"`
	MaxLimit       int `yaml:"max_limit"`
}

type HealthConfig struct {
	CheckInterval time.Duration `yaml:"check_interval"`
}

// Load applies defaults, then the YAML file at path (if any), then the
// environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load_config: failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse_config: invalid YAML in %s: %w", path, err)
		}
	}

	if err := overrideFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.LogLevel = "info"
	cfg.Server = ServerConfig{
		HTTPAddr:        ":5000",
		RequestTimeout:  30 * time.Second,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	cfg.Store = StoreConfig{
		Backend:         BackendMongo,
		MongoURI:        "mongodb://localhost:27017/nairaland",
		MongoDatabase:   "nairaland",
		MongoCollection: "topics",
		AWSRegion:       "us-west-2",
		DynamoDBTable:   "Topics",
		PostgresTable:   "topics",
	}
	cfg.Search = SearchConfig{
		TitleSearchCap: 100,
		MaxLimit:       100,
	}
	cfg.Health = HealthConfig{
		CheckInterval: 15 * time.Second,
	}
}

func overrideFromEnv(cfg *Config) error {
	setString(&cfg.LogLevel, "LOG_LEVEL")

	setString(&cfg.Server.HTTPAddr, "HTTP_ADDR")
	if err := setDuration(&cfg.Server.RequestTimeout, "REQUEST_TIMEOUT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Server.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE"); err != nil {
		return err
	}

	setString(&cfg.Store.Backend, "STORE_BACKEND")
	setString(&cfg.Store.MongoURI, "MONGO_URI")
	setString(&cfg.Store.MongoDatabase, "MONGODB_DB")
	setString(&cfg.Store.MongoCollection, "MONGODB_COLLECTION")
	setString(&cfg.Store.AWSRegion, "AWS_REGION")
	setString(&cfg.Store.AWSEndpoint, "AWS_ENDPOINT")
	setString(&cfg.Store.DynamoDBTable, "DYNAMODB_TABLE")
	setString(&cfg.Store.PostgresDSN, "DATABASE_URL")
	setString(&cfg.Store.PostgresTable, "POSTGRES_TABLE")
	setString(&cfg.Store.MemoryDumpPath, "MEMORY_DUMP_PATH")

	setString(&cfg.Valkey.Address, "VALKEY_INIT_ADDRESS")
	setString(&cfg.Valkey.Password, "VALKEY_PASSWORD")
	if v := os.Getenv("VALKEY_TLS"); v != "" {
		cfg.Valkey.UseTLS = v == "true"
	}

	if err := setInt(&cfg.Search.TitleSearchCap, "TITLE_SEARCH_CAP"); err != nil {
		return err
	}
	if err := setInt(&cfg.Search.MaxLimit, "MAX_LIMIT"); err != nil {
		return err
	}
	return setDuration(&cfg.Health.CheckInterval, "HEALTHCHECK_INTERVAL")
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" || c.Store.MongoCollection == "" {
			return fmt.Errorf("validate_config: mongo backend needs MONGO_URI, MONGODB_DB and MONGODB_COLLECTION")
		}
	case BackendDynamoDB:
		if c.Store.DynamoDBTable == "" || c.Store.AWSRegion == "" {
			return fmt.Errorf("validate_config: dynamodb backend needs DYNAMODB_TABLE and AWS_REGION")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("validate_config: postgres backend needs DATABASE_URL")
		}
	case BackendMemory:
		if c.Store.MemoryDumpPath == "" {
			return fmt.Errorf("validate_config: memory backend needs MEMORY_DUMP_PATH")
		}
	default:
		return fmt.Errorf("validate_config: unknown store backend %q", c.Store.Backend)
	}

	if c.Search.TitleSearchCap <= 0 || c.Search.MaxLimit <= 0 {
		return fmt.Errorf("validate_config: TITLE_SEARCH_CAP and MAX_LIMIT must be positive")
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("validate_config: RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.Server.RateLimitPerMinute > 0 && c.Valkey.Address == "" {
		return fmt.Errorf("validate_config: rate limiting needs VALKEY_INIT_ADDRESS")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse_config: %s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse_config: %s must be a duration: %w", key, err)
	}
	*dst = d
	return nil
}
