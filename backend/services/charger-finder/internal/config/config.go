package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	libconfig "markev/backend/libs/config"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

const (
	defaultPort              = "5000"
	defaultMongoURI          = "mongodb://127.0.0.1:27017"
	defaultMongoDatabase     = "markev"
	defaultRepositoryTimeout = 3
	defaultJWTExpiresMinutes = 24 * 60
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"CHARGERS_HTTP_PORT"`
	} `yaml:"http"`
	Storage struct {
		Driver string `yaml:"driver" env:"CHARGERS_STORAGE_DRIVER"`
	} `yaml:"storage"`
	Mongo struct {
		URI        string `yaml:"uri" env:"MONGO_URI"`
		Database   string `yaml:"database" env:"MONGO_DATABASE"`
		Username   string `yaml:"username" env:"MONGO_USERNAME"`
		Password   string `yaml:"password" env:"MONGO_PASSWORD"`
		AuthSource string `yaml:"authSource" env:"MONGO_AUTH_SOURCE"`
	} `yaml:"mongo"`
	Database struct {
		DSN string `yaml:"dsn" env:"CHARGERS_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"CHARGERS_REDIS_ADDR"`
		Password string `yaml:"password" env:"CHARGERS_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"CHARGERS_REDIS_DB"`
	} `yaml:"redis"`
	Repository struct {
		TimeoutSeconds int `yaml:"timeoutSeconds" env:"CHARGERS_REPOSITORY_TIMEOUT_SECONDS"`
	} `yaml:"repository"`
	Fallback struct {
		Enabled bool   `yaml:"enabled" env:"CHARGERS_FALLBACK_ENABLED"`
		Policy  string `yaml:"policy" env:"CHARGERS_FALLBACK_POLICY"`
	} `yaml:"fallback"`
	JWT struct {
		Secret           string `yaml:"secret" env:"JWT_SECRET"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"JWT_EXPIRES_MINUTES"`
	} `yaml:"jwt"`
	Auth struct {
		ProtectSeed         bool `yaml:"protectSeed" env:"CHARGERS_PROTECT_SEED"`
		BcryptCost          int  `yaml:"bcryptCost" env:"CHARGERS_BCRYPT_COST"`
		AllowRoleOnRegister bool `yaml:"allowRoleOnRegister" env:"CHARGERS_ALLOW_ROLE_ON_REGISTER"`
	} `yaml:"auth"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"CHARGERS_METRICS_ENABLED"`
	} `yaml:"metrics"`
	Feed struct {
		Enabled bool `yaml:"enabled" env:"CHARGERS_FEED_ENABLED"`
	} `yaml:"feed"`
	CORS struct {
		AllowedOrigin string `yaml:"allowedOrigin" env:"CHARGERS_CORS_ORIGIN"`
	} `yaml:"cors"`
}

// Load reads configuration for the HTTP server using the shared config loader.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom reads the YAML file at path (optional) plus env overrides and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	return cfg, nil
}

// LoadStorage is Load without the token settings, for tools that only touch the store.
func LoadStorage() (*Config, error) {
	cfg, err := load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	cfg := defaults()
	if err := libconfig.LoadConfigFrom(path, cfg); err != nil {
		return nil, err
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	cfg.Fallback.Policy = strings.ToLower(strings.TrimSpace(cfg.Fallback.Policy))
	if cfg.Repository.TimeoutSeconds <= 0 {
		cfg.Repository.TimeoutSeconds = defaultRepositoryTimeout
	}
	if cfg.JWT.ExpiresInMinutes <= 0 {
		cfg.JWT.ExpiresInMinutes = defaultJWTExpiresMinutes
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = defaultMongoDatabase
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Storage.Driver = DriverMongo
	cfg.Mongo.URI = defaultMongoURI
	cfg.Mongo.Database = defaultMongoDatabase
	cfg.Repository.TimeoutSeconds = defaultRepositoryTimeout
	cfg.Fallback.Enabled = true
	cfg.Fallback.Policy = "empty"
	cfg.JWT.ExpiresInMinutes = defaultJWTExpiresMinutes
	cfg.Auth.ProtectSeed = true
	cfg.Metrics.Enabled = true
	cfg.Feed.Enabled = true
	cfg.CORS.AllowedOrigin = "*"
	return cfg
}

// Validate checks storage and fallback settings.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" {
			return errors.New("config: mongo uri is required")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database DSN is required")
		}
	case DriverRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("config: redis addr is required")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Fallback.Policy {
	case "empty", "unavailable":
	default:
		return fmt.Errorf("config: unknown fallback policy %q", c.Fallback.Policy)
	}
	return nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.Contains(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}

// RepositoryTimeout bounds each store call.
func (c *Config) RepositoryTimeout() time.Duration {
	return time.Duration(c.Repository.TimeoutSeconds) * time.Second
}
