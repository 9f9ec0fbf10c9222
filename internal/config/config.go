package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string
	LogMode        string
	JWTSecret      string
	JWTTTL         time.Duration

	AdminEmail    string
	AdminPassword string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPass      string
	DBName      string
	DBPort      string

	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	Catalog Catalog

	ViewSyncInterval time.Duration
	// SearchReindexSchedule is a cron spec for rebuilding the search index.
	// Empty disables the job.
	SearchReindexSchedule string
}

// Catalog holds the bounds of the ranked listings.
type Catalog struct {
	NewLimit        int
	BestsellerLimit int
	PopularLimit    int
	TopViewedLimit  int
	RelatedLimit    int
	// PopularWindow restricts bestseller/popular counts to enrollments created
	// within the trailing window. Zero means all-time.
	PopularWindow time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		LogMode:        getEnv("LOG_MODE", "development"),
		JWTSecret:      os.Getenv("JWT_SECRET"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@elearning.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPass:      os.Getenv("DB_PASS"),
		DBName:      getEnv("DB_NAME", "elearning"),
		DBPort:      getEnv("DB_PORT", "5432"),

		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "elearning"),

		SearchReindexSchedule: getEnv("SEARCH_REINDEX_CRON", "0 3 * * *"),
	}

	if cfg.JWTSecret == "" {
		if cfg.AppEnv == "production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-secret"
	}

	var err error
	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"RANKING_NEW_LIMIT", 10, &cfg.Catalog.NewLimit},
		{"RANKING_BESTSELLER_LIMIT", 10, &cfg.Catalog.BestsellerLimit},
		{"POPULAR_LIMIT", 4, &cfg.Catalog.PopularLimit},
		{"TOP_VIEWED_LIMIT", 10, &cfg.Catalog.TopViewedLimit},
		{"RELATED_LIMIT", 5, &cfg.Catalog.RelatedLimit},
	}
	for _, item := range ints {
		if *item.dst, err = parsePositiveInt(getEnv(item.key, strconv.Itoa(item.fallback))); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", item.key, err)
		}
	}

	cfg.Catalog.PopularWindow, err = parseDuration(getEnv("POPULAR_WINDOW", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid POPULAR_WINDOW: %w", err)
	}
	cfg.JWTTTL, err = parseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.ViewSyncInterval, err = parseDuration(getEnv("VIEW_SYNC_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid VIEW_SYNC_INTERVAL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return d, nil
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be greater than zero")
	}
	return v, nil
}
