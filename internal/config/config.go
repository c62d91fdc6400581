package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string // Application port
	JWTSecret     string // JWT secret key
	DBUser        string // Database user (optional DB-backed ledger)
	DBPassword    string // Database password
	DBHost        string // Database host; empty selects the in-memory ledger
	DBPort        string // Database port
	DBName        string // Database name
	RedisAddr     string // Redis server address; empty disables the card cache
	RedisPass     string // Redis password
	RedisDB       int    // Redis database number
	SeedDemoUsers bool   // Seed the two demo accounts at startup
	IsProd        bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:       os.Getenv("APP_PORT"),                  // Application port
		JWTSecret:     os.Getenv("JWT_SECRET"),                // JWT secret key
		DBUser:        os.Getenv("DB_USER"),                   // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),               // Database password
		DBHost:        os.Getenv("DB_HOST"),                   // Database host
		DBPort:        os.Getenv("DB_PORT"),                   // Database port
		DBName:        os.Getenv("DB_NAME"),                   // Database name
		RedisAddr:     os.Getenv("REDIS_ADDR"),                // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),                // Redis password
		RedisDB:       redisDB,                                // Redis database number
		SeedDemoUsers: os.Getenv("SEED_DEMO_USERS") == "true", // Seed demo accounts
		IsProd:        os.Getenv("IS_PROD") == "true",         // Is production environment
	}
}

// DSN builds the MySQL data source name for the DB-backed ledger
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// UseDatabase reports whether the DB-backed ledger store is configured
func (c *Config) UseDatabase() bool {
	return c.DBHost != ""
}
