package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	DatabaseURL     string
	SearchAddr      string
	SearchPassword  string
	Env             string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of a local env file for dev convenience.
	_ = godotenv.Load(".env")

	return Config{
		Port:            getEnv("PORT", "8000"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     databaseURL(),
		SearchAddr:      searchAddr(),
		SearchPassword:  os.Getenv("SEARCH_PASSWORD"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
	}
}

// Validate reports configuration errors that must stop startup.
func (c Config) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.Env, validation.In("dev", "local", "staging", "production")),
	}
	if c.Env == "production" {
		rules = append(rules,
			validation.Field(&c.DatabaseURL, validation.Required.Error("DATABASE_URL or DB_* settings are required in production")),
			validation.Field(&c.SearchAddr, validation.Required.Error("SEARCH_HOST is required in production")),
		)
	}
	return validation.ValidateStruct(&c, rules...)
}

// databaseURL prefers an explicit DATABASE_URL and otherwise assembles a DSN
// from the discrete DB_* variables. Empty when neither form is configured.
func databaseURL() string {
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		return dsn
	}
	host := strings.TrimSpace(os.Getenv("DB_HOST"))
	if host == "" {
		return ""
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("DB_USER", "postgres"), os.Getenv("DB_PASSWORD")),
		Host:     fmt.Sprintf("%s:%s", host, getEnv("DB_PORT", "5432")),
		Path:     "/" + getEnv("DB_NAME", "documents"),
		RawQuery: "sslmode=disable",
	}
	return dsn.String()
}

// searchAddr builds the search index address from SEARCH_HOST/SEARCH_PORT.
// Empty when no search host is configured.
func searchAddr() string {
	host := strings.TrimSpace(os.Getenv("SEARCH_HOST"))
	if host == "" {
		return ""
	}
	return host + ":" + getEnv("SEARCH_PORT", "6379")
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
