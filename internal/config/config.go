package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Security configuration
	Security SecurityConfig

	// Google sign-in configuration
	Google GoogleConfig

	// Upload storage configuration
	Uploads UploadConfig

	// SMS alert configuration
	SMS SMSConfig

	// Hostel building configuration
	Hostel HostelConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string
	Environment  string // development, staging, production
	LogLevel     string // debug, info, warn, error
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	Driver             string // "postgres" (lib/pq) or "pgx"
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost           int
	LoginRateLimitMax    int
	LoginRateLimitWindow time.Duration
	EnableActivityLog    bool
}

// GoogleConfig holds Google sign-in configuration
type GoogleConfig struct {
	ClientID string
}

// UploadConfig holds uploaded image storage configuration
type UploadConfig struct {
	Dir       string
	URLPrefix string
}

// SMSConfig holds SMS gateway configuration used for inquiry alerts
type SMSConfig struct {
	Mode        string // "log" writes alerts to the log, "http" sends them through the gateway
	APIURL      string
	Username    string
	Password    string
	Sender      string
	AlertPhones []string
}

// HostelConfig holds building and billing configuration
type HostelConfig struct {
	TotalFloors      int
	RoomsPerCategory int
	Timezone         string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Driver:             getEnv("DATABASE_DRIVER", "postgres"),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 604800)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 2592000)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Security: SecurityConfig{
			BcryptCost:           getEnvAsInt("BCRYPT_COST", 12),
			LoginRateLimitMax:    getEnvAsInt("LOGIN_RATE_LIMIT_MAX", 10),
			LoginRateLimitWindow: getEnvAsDuration("LOGIN_RATE_LIMIT_WINDOW", 15*time.Minute),
			EnableActivityLog:    getEnvAsBool("ENABLE_ACTIVITY_LOGGING", true),
		},
		Google: GoogleConfig{
			ClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
		Uploads: UploadConfig{
			Dir:       getEnv("UPLOAD_DIR", "./uploads"),
			URLPrefix: getEnv("PUBLIC_URL_PREFIX", "/uploads"),
		},
		SMS: SMSConfig{
			Mode:        getEnv("SMS_MODE", "log"),
			APIURL:      getEnv("SMS_API_URL", ""),
			Username:    getEnv("SMS_USERNAME", ""),
			Password:    getEnv("SMS_PASSWORD", ""),
			Sender:      getEnv("SMS_SENDER", "MKHGTS"),
			AlertPhones: getEnvAsSlice("SMS_ALERT_PHONES", nil),
		},
		Hostel: HostelConfig{
			TotalFloors:      getEnvAsInt("TOTAL_FLOORS", 8),
			RoomsPerCategory: getEnvAsInt("ROOMS_PER_CATEGORY", 40),
			Timezone:         getEnv("TIMEZONE", "Asia/Kolkata"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "pgx" {
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be 'postgres' or 'pgx')", c.Database.Driver)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	// Refresh tokens fall back to the access secret for single-secret deployments
	if c.JWT.RefreshSecret == "" {
		c.JWT.RefreshSecret = c.JWT.Secret
	}

	switch c.SMS.Mode {
	case "log":
	case "http":
		if c.SMS.APIURL == "" {
			return fmt.Errorf("SMS_API_URL is required when SMS_MODE is http")
		}
		if c.SMS.Username == "" || c.SMS.Password == "" {
			return fmt.Errorf("SMS_USERNAME and SMS_PASSWORD are required when SMS_MODE is http")
		}
	default:
		return fmt.Errorf("invalid SMS_MODE: %s (must be 'log' or 'http')", c.SMS.Mode)
	}

	if c.Hostel.TotalFloors < 1 {
		return fmt.Errorf("TOTAL_FLOORS must be positive")
	}

	if _, err := time.LoadLocation(c.Hostel.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Hostel.Timezone, err)
	}

	return nil
}

// Location returns the hostel's billing timezone.
func (h HostelConfig) Location() *time.Location {
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration value for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
