// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageDriverFile     = "file"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// Config holds all configuration for the storefront gateway
type Config struct {
	App      AppConfig
	Server   ServerConfig
	API      APIConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Security SecurityConfig
	Cart     CartConfig
	Display  DisplayConfig
	Company  CompanyConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CookieSecure   bool
	VisitorTTL     time.Duration
}

// APIConfig describes the remote storefront backend
type APIConfig struct {
	BaseURL          string
	Timeout          time.Duration
	ListRetries      int
	RetryBackoff     time.Duration
	BreakerFailures  uint32
	BreakerOpenFor   time.Duration
	BreakerHalfOpen  uint32
	DefaultPageTake  int
	RequestIDHeader  string
	UserAgentProduct string
}

// StorageConfig selects where client state (cart snapshot, tokens) is persisted
type StorageConfig struct {
	Driver   string
	FilePath string
	Secret   string
	KeyTTL   time.Duration
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
}

// CartConfig contains cart presentation limits
type CartConfig struct {
	MaxLineQuantity int
}

// DisplayConfig controls price and quantity formatting
type DisplayConfig struct {
	Locale   string
	Currency string
}

// CompanyConfig is printed on order receipts
type CompanyConfig struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Storefront"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			MaxBodyBytes:   getEnvAsInt64("SERVER_MAX_BODY_BYTES", 1<<20),
			CookieSecure:   getEnvAsBool("SERVER_COOKIE_SECURE", false),
			VisitorTTL:     getEnvAsDuration("SERVER_VISITOR_TTL", 30*24*time.Hour),
		},
		API: APIConfig{
			BaseURL:          getEnv("API_BASE_URL", "http://localhost:3000"),
			Timeout:          getEnvAsDuration("API_TIMEOUT", 30*time.Second),
			ListRetries:      getEnvAsInt("API_LIST_RETRIES", 2),
			RetryBackoff:     getEnvAsDuration("API_RETRY_BACKOFF", 200*time.Millisecond),
			BreakerFailures:  uint32(getEnvAsInt("API_BREAKER_FAILURES", 5)),
			BreakerOpenFor:   getEnvAsDuration("API_BREAKER_OPEN_FOR", 30*time.Second),
			BreakerHalfOpen:  uint32(getEnvAsInt("API_BREAKER_HALF_OPEN_REQUESTS", 1)),
			DefaultPageTake:  getEnvAsInt("API_DEFAULT_PAGE_TAKE", 10),
			RequestIDHeader:  getEnv("API_REQUEST_ID_HEADER", "X-Request-ID"),
			UserAgentProduct: getEnv("API_USER_AGENT", "storefront-gateway"),
		},
		Storage: StorageConfig{
			Driver:   getEnv("STORAGE_DRIVER", StorageDriverFile),
			FilePath: getEnv("STORAGE_FILE_PATH", "data/storefront.json"),
			Secret:   getEnv("STORAGE_SECRET", ""),
			KeyTTL:   getEnvAsDuration("STORAGE_KEY_TTL", 0),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "storefront_db"),
			User:         getEnv("DB_USER", "storefront_user"),
			Password:     getEnv("DB_PASSWORD", "storefront_password"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 40),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},
		Cart: CartConfig{
			MaxLineQuantity: getEnvAsInt("CART_MAX_QUANTITY", 10),
		},
		Display: DisplayConfig{
			Locale:   getEnv("DISPLAY_LOCALE", "fa"),
			Currency: getEnv("DISPLAY_CURRENCY", "Toman"),
		},
		Company: CompanyConfig{
			Name:    getEnv("COMPANY_NAME", "Storefront"),
			Address: getEnv("COMPANY_ADDRESS", ""),
			Phone:   getEnv("COMPANY_PHONE", ""),
			Email:   getEnv("COMPANY_EMAIL", "support@example.com"),
			Website: getEnv("COMPANY_WEBSITE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "debug"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL)
	}

	if c.API.ListRetries < 0 {
		return fmt.Errorf("API_LIST_RETRIES cannot be negative")
	}

	switch c.Storage.Driver {
	case StorageDriverFile:
		if c.Storage.FilePath == "" {
			return fmt.Errorf("STORAGE_FILE_PATH is required for the file driver")
		}
	case StorageDriverRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis driver")
		}
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("DB_HOST, DB_NAME and DB_USER are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Storage.Secret != "" && len(c.Storage.Secret) < 32 {
		return fmt.Errorf("STORAGE_SECRET must be at least 32 characters long")
	}

	if c.Cart.MaxLineQuantity < 1 {
		return fmt.Errorf("CART_MAX_QUANTITY must be at least 1")
	}

	// Validate server port
	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
