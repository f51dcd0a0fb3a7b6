package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Rijks    RijksConfig
	Verifier VerifierConfig
	Runner   RunnerConfig
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
}

type RijksConfig struct {
	BaseURL         string
	Locale          string
	AlternateLocale string
	APIKey          string
	Timeout         time.Duration
	UserAgent       string
}

type VerifierConfig struct {
	SearchTerm          string
	ArtistFilter        string
	DetailSeedQuery     string
	PaginationQuery     string
	PageSize            int
	PageSizeCeiling     int
	UnknownObjectNumber string
	EmptyQuery          string
	InvalidAPIKey       string
	UnauthorizedStatus  int
	RejectedStatuses    []int
}

type RunnerConfig struct {
	Concurrency  int
	CheckTimeout time.Duration
	Retries      int
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns a libpq-style connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("RIJKS_BASE_URL", "https://www.rijksmuseum.nl/api")
	v.SetDefault("RIJKS_LOCALE", "en")
	v.SetDefault("RIJKS_ALTERNATE_LOCALE", "nl")
	v.SetDefault("RIJKS_API_KEY", "")
	v.SetDefault("RIJKS_TIMEOUT", "20s")
	v.SetDefault("RIJKS_USER_AGENT", "rijks-verifier/1.0")

	v.SetDefault("VERIFIER_SEARCH_TERM", "Rembrandt")
	v.SetDefault("VERIFIER_ARTIST_FILTER", "Rembrandt van Rijn")
	v.SetDefault("VERIFIER_DETAIL_SEED_QUERY", "vermeer")
	v.SetDefault("VERIFIER_PAGINATION_QUERY", "portrait")
	v.SetDefault("VERIFIER_PAGE_SIZE", 5)
	v.SetDefault("VERIFIER_PAGE_SIZE_CEILING", 100)
	v.SetDefault("VERIFIER_UNKNOWN_OBJECT", "SK-A-999999")
	v.SetDefault("VERIFIER_EMPTY_QUERY", "xyz123nonexistent")
	v.SetDefault("VERIFIER_INVALID_API_KEY", "invalid-api-key")
	v.SetDefault("VERIFIER_UNAUTHORIZED_STATUS", 401)
	v.SetDefault("VERIFIER_REJECTED_STATUSES", "400,401,403")

	v.SetDefault("RUNNER_CONCURRENCY", 3)
	v.SetDefault("RUNNER_CHECK_TIMEOUT", "30s")
	v.SetDefault("RUNNER_RETRIES", 0)

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)

	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "rijks_verifier")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 5)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 1)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	// Env
	v.AutomaticEnv()

	rejected, err := parseStatuses(v.GetString("VERIFIER_REJECTED_STATUSES"))
	if err != nil {
		return nil, fmt.Errorf("VERIFIER_REJECTED_STATUSES: %w", err)
	}

	cfg := &Config{
		Rijks: RijksConfig{
			BaseURL:         v.GetString("RIJKS_BASE_URL"),
			Locale:          v.GetString("RIJKS_LOCALE"),
			AlternateLocale: v.GetString("RIJKS_ALTERNATE_LOCALE"),
			APIKey:          strings.TrimSpace(v.GetString("RIJKS_API_KEY")),
			Timeout:         parseDuration(v.GetString("RIJKS_TIMEOUT"), 20*time.Second),
			UserAgent:       v.GetString("RIJKS_USER_AGENT"),
		},
		Verifier: VerifierConfig{
			SearchTerm:          v.GetString("VERIFIER_SEARCH_TERM"),
			ArtistFilter:        v.GetString("VERIFIER_ARTIST_FILTER"),
			DetailSeedQuery:     v.GetString("VERIFIER_DETAIL_SEED_QUERY"),
			PaginationQuery:     v.GetString("VERIFIER_PAGINATION_QUERY"),
			PageSize:            v.GetInt("VERIFIER_PAGE_SIZE"),
			PageSizeCeiling:     v.GetInt("VERIFIER_PAGE_SIZE_CEILING"),
			UnknownObjectNumber: v.GetString("VERIFIER_UNKNOWN_OBJECT"),
			EmptyQuery:          v.GetString("VERIFIER_EMPTY_QUERY"),
			InvalidAPIKey:       v.GetString("VERIFIER_INVALID_API_KEY"),
			UnauthorizedStatus:  v.GetInt("VERIFIER_UNAUTHORIZED_STATUS"),
			RejectedStatuses:    rejected,
		},
		Runner: RunnerConfig{
			Concurrency:  v.GetInt("RUNNER_CONCURRENCY"),
			CheckTimeout: parseDuration(v.GetString("RUNNER_CHECK_TIMEOUT"), 30*time.Second),
			Retries:      v.GetInt("RUNNER_RETRIES"),
		},
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DATABASE_ENABLED"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: parseDuration(v.GetString("DATABASE_CONN_MAX_LIFETIME"), 30*time.Minute),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// parseStatuses reads a comma separated list of HTTP status codes.
func parseStatuses(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil || code < 100 || code > 599 {
			return nil, fmt.Errorf("invalid status code %q", part)
		}
		out = append(out, code)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one status code is required")
	}
	return out, nil
}
