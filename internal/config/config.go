package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Env         string
	LogLevel    string
	FrontendURL string

	// Database
	DBDriver   string // "postgres" | "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string
	SQLitePath string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT session tokens handed out after the login check
	JWTSecret              string
	JWTAccessTokenDuration time.Duration

	// Admin console credentials
	AdminUsername     string
	AdminPasswordHash string
	AdminPassword     string

	// Automation platform (webhooks in front of the band data store)
	AutomationBaseURL     string
	AutomationBandsPath   string
	AutomationRefreshPath string
	AutomationStatusPath  string
	AutomationTimeout     time.Duration
	AutomationRetryMax    int

	// Bands
	BandCacheTTL       time.Duration
	RefreshGate        time.Duration
	RankingProfilePath string

	// DJ queue
	Venue            string
	CooldownDuration time.Duration

	// Finance
	Currency string

	// Security
	RateLimitRequests int
	RateLimitDuration time.Duration

	// CORS
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

func New() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "stagedoor"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "stagedoor_db"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),
		DBTimeZone: getEnv("DB_TIMEZONE", "America/Chicago"),
		SQLitePath: getEnv("SQLITE_PATH", "stagedoor.sqlite"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// JWT
		JWTSecret:              getEnv("JWT_SECRET", "your-secret-key"),
		JWTAccessTokenDuration: getEnvAsDuration("JWT_ACCESS_TOKEN_DURATION", "12h"),

		// Admin
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", "admin123"),

		// Automation platform
		AutomationBaseURL:     getEnv("AUTOMATION_BASE_URL", "http://localhost:5678/webhook"),
		AutomationBandsPath:   getEnv("AUTOMATION_BANDS_PATH", "/bands"),
		AutomationRefreshPath: getEnv("AUTOMATION_REFRESH_PATH", "/bands/refresh"),
		AutomationStatusPath:  getEnv("AUTOMATION_STATUS_PATH", "/band-status"),
		AutomationTimeout:     getEnvAsDuration("AUTOMATION_TIMEOUT", "15s"),
		AutomationRetryMax:    getEnvAsInt("AUTOMATION_RETRY_MAX", 0),

		// Bands
		BandCacheTTL:       getEnvAsDuration("BAND_CACHE_TTL", "60s"),
		RefreshGate:        getEnvAsDuration("BAND_REFRESH_GATE", "240s"),
		RankingProfilePath: getEnv("RANKING_PROFILE_PATH", ""),

		// DJ queue
		Venue:            getEnv("VENUE_NAME", "main-room"),
		CooldownDuration: getEnvAsDuration("SONG_COOLDOWN", "2h"),

		// Finance
		Currency: getEnv("CURRENCY", "USD"),

		// Security
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: getEnvAsDuration("RATE_LIMIT_DURATION", "1m"),

		// CORS
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods: getEnvAsSlice("ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		AllowedHeaders: getEnvAsSlice("ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}
	return time.Hour
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
