package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server         ServerConfig
	App            AppConfig
	Cache          CacheConfig
	Accounts       AccountsDBConfig
	MarketDB       MarketDBConfig
	NotificationDB NotificationDBConfig
	Offers         OfferConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"classifieds-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// CacheConfig holds Redis settings shared by the session store and the
// read-receipt buffer.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"`
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	ReceiptFlushInterval time.Duration `envconfig:"RECEIPT_FLUSH_INTERVAL" default:"30s"`
}

// AccountsDBConfig holds MySQL connection settings for the accounts database.
type AccountsDBConfig struct {
	Host     string `envconfig:"ACCOUNTS_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"ACCOUNTS_DB_PORT" default:"3306"`
	Name     string `envconfig:"ACCOUNTS_DB_NAME" default:"classifieds"`
	User     string `envconfig:"ACCOUNTS_DB_USER" default:"root"`
	Password string `envconfig:"ACCOUNTS_DB_PASS" default:""`
}

// MarketDBConfig holds settings for the marketplace database (listings,
// conversations, offers, reviews, locations).
type MarketDBConfig struct {
	Type string `envconfig:"MARKET_DB_TYPE" default:"sqlite"` // sqlite or postgres
	Path string `envconfig:"MARKET_DB_PATH" default:"./data/market.db"`
	// PostgreSQL settings
	Host     string `envconfig:"MARKET_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"MARKET_DB_PORT" default:"5432"`
	Name     string `envconfig:"MARKET_DB_NAME" default:"classifieds"`
	User     string `envconfig:"MARKET_DB_USER" default:"postgres"`
	Password string `envconfig:"MARKET_DB_PASS" default:""`
	SSLMode  string `envconfig:"MARKET_DB_SSLMODE" default:"disable"`
}

// NotificationDBConfig holds settings for notification storage.
type NotificationDBConfig struct {
	Type            string `envconfig:"NOTIFICATION_DB_TYPE" default:"sqlite"` // sqlite or mongodb
	MongoURI        string `envconfig:"MONGODB_URI" default:""`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"classifieds"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"notifications"`
}

// OfferConfig holds negotiation settings.
type OfferConfig struct {
	// OfferTTL is how long a pending offer stays open before the sweeper
	// marks it expired. Zero disables offer expiry.
	OfferTTL time.Duration `envconfig:"OFFER_TTL" default:"168h"`
	// ReservationTTL is the hold window placed on a listing after an
	// accepted offer.
	ReservationTTL time.Duration `envconfig:"RESERVATION_TTL" default:"48h"`
	// SweepInterval is how often the expiry sweeper runs.
	SweepInterval time.Duration `envconfig:"OFFER_SWEEP_INTERVAL" default:"5m"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (m *MarketDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		m.User, m.Password, m.Host, m.Port, m.Name, m.SSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// DSN returns the MySQL data source name for the accounts database.
func (a *AccountsDBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		a.User, a.Password, a.Host, a.Port, a.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
