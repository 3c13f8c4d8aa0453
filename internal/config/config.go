// Package config loads service settings from the environment (and an
// optional .env file) with defaults and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig selects and addresses the SQL store holding the location
// dataset and, for the "sql" durable backend, the lookup cache.
type DatabaseConfig struct {
	Driver     string // postgres|sqlite
	Host       string
	Port       string
	User       string
	Name       string
	Password   string
	SQLitePath string
}

// DSN returns the postgres connection string in the form the server has
// always used.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}

// RedisConfig addresses the Redis durable cache backend.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// ResolverConfig tunes the location resolution tiers.
type ResolverConfig struct {
	MemoryCacheSize    int
	DurableBackend     string        // sql|redis|none
	DurableTTL         time.Duration // entries older than this by last access are not served
	DurableTimeout     time.Duration
	RepositoryTimeout  time.Duration
	RetentionDays      int // purge window for the sweep job
	SweepInterval      time.Duration
	FuzzyIndexTTL      time.Duration
	DatasetURL         string
	SeedOnEmptyDataset bool
}

// Config holds all configuration values for the service.
type Config struct {
	AppEnv string
	Port   string

	DB       DatabaseConfig
	Redis    RedisConfig
	Resolver ResolverConfig

	RateRPS        float64
	RateBurst      int
	AdminJWTSecret string
	AllowedOrigins []string
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults and
// validates the result. A .env file in the working directory is loaded first
// when present; real environment variables win over it.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv: strings.ToLower(getenv("APP_ENV", "development")),
		Port:   getenv("PORT", "8080"),

		DB: DatabaseConfig{
			Driver:     strings.ToLower(getenv("DB_DRIVER", "postgres")),
			Host:       getenv("PG_HOST", "localhost"),
			Port:       getenv("PG_PORT", "5432"),
			User:       getenv("PG_USER", ""),
			Name:       getenv("PG_DB", ""),
			Password:   getenv("PG_PASSWORD", ""),
			SQLitePath: getenv("SQLITE_PATH", "wayfinder.db"),
		},

		Redis: RedisConfig{
			Host:     getenv("REDIS_HOST", "localhost"),
			Port:     getenv("REDIS_PORT", "6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
		},

		Resolver: ResolverConfig{
			MemoryCacheSize:    getint("MEMORY_CACHE_SIZE", 1000),
			DurableBackend:     strings.ToLower(getenv("DURABLE_CACHE_BACKEND", "sql")),
			DurableTTL:         getdur("DURABLE_CACHE_TTL", 7*24*time.Hour),
			DurableTimeout:     getdur("DURABLE_CACHE_TIMEOUT", 250*time.Millisecond),
			RepositoryTimeout:  getdur("REPOSITORY_TIMEOUT", 2*time.Second),
			RetentionDays:      getint("CACHE_RETENTION_DAYS", 30),
			SweepInterval:      getdur("CACHE_SWEEP_INTERVAL", 6*time.Hour),
			FuzzyIndexTTL:      getdur("FUZZY_INDEX_TTL", 15*time.Minute),
			DatasetURL:         getenv("AIRPORT_DATASET_URL", ""),
			SeedOnEmptyDataset: getbool("SEED_ON_EMPTY_DATASET", true),
		},

		RateRPS:        getfloat("RATE_RPS", 5),
		RateBurst:      getint("RATE_BURST", 10),
		AdminJWTSecret: getenv("ADMIN_JWT_SECRET", ""),
		AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "https://*,http://localhost:8081")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}
	switch c.Resolver.DurableBackend {
	case "sql", "redis", "none":
	default:
		errs = append(errs, fmt.Errorf("DURABLE_CACHE_BACKEND must be sql, redis or none, got %q", c.Resolver.DurableBackend))
	}
	if c.Resolver.MemoryCacheSize < 1 {
		errs = append(errs, errors.New("MEMORY_CACHE_SIZE must be >= 1"))
	}
	if c.Resolver.DurableTTL <= 0 {
		errs = append(errs, errors.New("DURABLE_CACHE_TTL must be > 0"))
	}
	if c.Resolver.DurableTimeout <= 0 || c.Resolver.RepositoryTimeout <= 0 {
		errs = append(errs, errors.New("DURABLE_CACHE_TIMEOUT and REPOSITORY_TIMEOUT must be > 0"))
	}
	if c.Resolver.RetentionDays < 1 {
		errs = append(errs, errors.New("CACHE_RETENTION_DAYS must be >= 1"))
	}
	if c.RateRPS < 0 {
		errs = append(errs, errors.New("RATE_RPS must be >= 0"))
	}
	if c.RateBurst < 1 {
		errs = append(errs, errors.New("RATE_BURST must be >= 1"))
	}
	if c.AppEnv == "production" && c.AdminJWTSecret == "" {
		errs = append(errs, errors.New("ADMIN_JWT_SECRET is required in production"))
	}

	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return def
}

func getint(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getdur accepts Go durations ("90s") or bare integers as seconds.
func getdur(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
