package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Session tokens issued after the Google OAuth callback
	JWTSecret        string
	JWTSessionExpiry time.Duration

	// Google OAuth + APIs
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Only emails under this domain may sign in. Empty = allow all.
	AllowedEmailDomain string

	// OpenAI
	OpenAIAPIKey string
	OpenAIModel  string
	AITimeout    time.Duration

	// Slack
	SlackBotToken string

	// Subjects carrying this prefix are excluded from triage.
	CatchAllPrefix string

	// Free-time finder business-hours window (local time, whole hours)
	WorkdayStartHour int
	WorkdayEndHour   int

	// Server
	Port         string
	CORSOrigins  string
	DashboardURL string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "amayai"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTSessionExpiry: parseDuration(getEnv("JWT_SESSION_EXPIRY", "720h"), 720*time.Hour),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:5000/auth/google/callback"),

		AllowedEmailDomain: getEnv("ALLOWED_EMAIL_DOMAIN", ""),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o"),
		AITimeout:    parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		SlackBotToken: getEnv("SLACK_BOT_TOKEN", ""),

		CatchAllPrefix: getEnv("CATCHALL_PREFIX", "[CMAC_CATCHALL]"),

		WorkdayStartHour: parseInt(getEnv("WORKDAY_START_HOUR", "9"), 9),
		WorkdayEndHour:   parseInt(getEnv("WORKDAY_END_HOUR", "18"), 18),

		Port:         getEnv("PORT", "5000"),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		DashboardURL: getEnv("DASHBOARD_URL", "/dashboard"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
