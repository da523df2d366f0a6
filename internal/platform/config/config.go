package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	AdminAPIKey        string
	StateSigningSecret string
	StateTTL           time.Duration

	TokenEncSecret string
	TokenEncSalt   string

	GithubClientID     string
	GithubClientSecret string
	GithubCallbackURL  string
	DefaultRepoName    string
	DefaultBranch      string

	GoogleServiceAccountKeyBase64 string

	// Roster layout: the first link column of the header pairs. The
	// layout has moved between deployments (F, then H), so this is
	// configuration, never a constant.
	SheetOriginColumn string
	SheetExcludedTabs []string

	SyncInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "codetrack_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AdminAPIKey:        getEnv("ADMIN_API_KEY", ""),
		StateSigningSecret: getEnv("STATE_SIGNING_SECRET", ""),
		StateTTL:           time.Duration(getEnvAsInt("STATE_TTL_MINUTES", 15)) * time.Minute,

		TokenEncSecret: getEnv("TOKEN_ENC_SECRET", ""),
		TokenEncSalt:   getEnv("TOKEN_ENC_SALT", "codetrack"),

		GithubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GithubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GithubCallbackURL:  getEnv("GITHUB_CALLBACK_URL", ""),
		DefaultRepoName:    getEnv("DEFAULT_REPO_NAME", "a2sv-solutions"),
		DefaultBranch:      getEnv("DEFAULT_BRANCH", "main"),

		GoogleServiceAccountKeyBase64: getEnv("GOOGLE_SERVICE_ACCOUNT_KEY_BASE64", ""),

		SheetOriginColumn: getEnv("SHEET_ORIGIN_COLUMN", "F"),
		SheetExcludedTabs: splitCSV(getEnv("SHEET_EXCLUDED_TABS", "Dashboard,Attendance")),

		SyncInterval: time.Duration(getEnvAsInt("SYNC_INTERVAL_MINUTES", 5)) * time.Minute,
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
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
