package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment configuration
type Config struct {
	// Database
	DatabaseHost     string
	DatabasePort     string
	PostgresUser     string
	PostgresPassword string
	DatabaseName     string

	// Authentication
	JWTSecret string

	// Judge0
	JudgeURL     string
	RapidAPIKey  string
	RapidAPIHost string
	JudgeTimeout time.Duration

	// GitHub OAuth
	GithubClientID     string
	GithubClientSecret string
	GithubRedirectURL  string

	// Scoring
	BuildathonPoints int

	// Other
	KafkaBroker string
}

var (
	appConfig *Config
	onceEnv   sync.Once
)

// loadConfig loads and validates all environment variables
func loadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		// Database - required
		DatabaseHost:     getEnvWithDefault("DATABASE_HOST", "localhost"),
		DatabasePort:     getEnvWithDefault("DATABASE_PORT", "5432"),
		PostgresUser:     getEnvWithDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnvWithDefault("POSTGRES_PASSWORD", "postgres"),
		DatabaseName:     getEnvWithDefault("DATABASE_NAME", "postgres"),

		// JWT - required
		JWTSecret: getEnvWithDefault("JWT_SECRET", "dummyjwt"),

		// Judge0 - required for grading
		JudgeURL:     getEnvWithDefault("JUDGE_URL", "https://judge0-ce.p.rapidapi.com"),
		RapidAPIKey:  getEnv("RAPIDAPI_KEY"),
		RapidAPIHost: getEnvWithDefault("RAPIDAPI_HOST", "judge0-ce.p.rapidapi.com"),
		JudgeTimeout: time.Duration(getEnvAsInt("JUDGE_TIMEOUT_SECONDS", 30)) * time.Second,

		// GitHub OAuth - optional
		GithubClientID:     getEnv("GITHUB_CLIENT_ID"),
		GithubClientSecret: getEnv("GITHUB_CLIENT_SECRET"),
		GithubRedirectURL:  getEnvWithDefault("GITHUB_REDIRECT_URL", "http://localhost:8000/api/oauth/github/callback"),

		// Scoring
		BuildathonPoints: getEnvAsInt("BUILDATHON_POINTS", 50),

		// Other
		KafkaBroker: getEnvWithDefault("KAFKA_BROKER", ""),
	}

	appConfig = config
	return config
}

func Env() *Config {
	onceEnv.Do(func() {
		appConfig = loadConfig()
	})
	return appConfig
}

// Helper functions
func getEnv(key string) string {
	value := os.Getenv(key)
	if value == "" && IsProduction() {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// IsProduction returns true if running in production
func IsProduction() bool {
	return getEnvWithDefault("ENVIRONMENT", "development") == "production"
}

// IsDevelopment returns true if running in development
func IsDevelopment() bool {
	return !IsProduction()
}
