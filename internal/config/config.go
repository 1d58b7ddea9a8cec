package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// History and storage backends.
const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendMemory    = "memory"

	StorageGCS  = "gcs"
	StorageR2   = "r2"
	StorageNone = "none"
)

// Config holds every setting the server and CLI read from the environment.
type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	FrontendURL string

	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float32
	GeminiMaxAttempts int

	AnalysisWorkers int
	MaxUploadBytes  int64
	DocumentTTL     time.Duration

	JWTSecret string

	HistoryBackend        string
	DatabaseURL           string
	SQLitePath            string
	FirebaseProjectID     string
	GoogleCredentialsFile string
	StorageBackend        string
	FirebaseStorageBucket string
	CloudflareAccountID   string
	R2BucketName          string
	R2AccessKeyID         string
	R2SecretAccessKey     string
	R2PublicURL           string
	DiscordWebhookURL     string
	RateLimitPerMinute    int
	ReportFontPath        string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("GEMINI_TEMPERATURE", 0.2)
	v.SetDefault("GEMINI_MAX_ATTEMPTS", 3)
	v.SetDefault("ANALYSIS_WORKERS", 4)
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("DOCUMENT_TTL", "2h")
	v.SetDefault("HISTORY_BACKEND", BackendMemory)
	v.SetDefault("SQLITE_PATH", "./study_history.db")
	v.SetDefault("STORAGE_BACKEND", StorageNone)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Only a missing file is expected; anything else is a broken .env.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		log.Debug().Msg(".env file not found, relying on system environment variables")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	ttl, err := time.ParseDuration(v.GetString("DOCUMENT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOCUMENT_TTL: %w", err)
	}

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		GinMode:               v.GetString("GIN_MODE"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		FrontendURL:           strings.TrimSuffix(v.GetString("FRONTEND_URL"), "/"),
		GeminiAPIKey:          v.GetString("GEMINI_API_KEY"),
		GeminiModel:           v.GetString("GEMINI_MODEL"),
		GeminiTemperature:     float32(v.GetFloat64("GEMINI_TEMPERATURE")),
		GeminiMaxAttempts:     v.GetInt("GEMINI_MAX_ATTEMPTS"),
		AnalysisWorkers:       v.GetInt("ANALYSIS_WORKERS"),
		MaxUploadBytes:        v.GetInt64("MAX_UPLOAD_BYTES"),
		DocumentTTL:           ttl,
		JWTSecret:             v.GetString("JWT_SECRET"),
		HistoryBackend:        strings.ToLower(v.GetString("HISTORY_BACKEND")),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		SQLitePath:            v.GetString("SQLITE_PATH"),
		FirebaseProjectID:     v.GetString("FIREBASE_PROJECT_ID"),
		GoogleCredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		StorageBackend:        strings.ToLower(v.GetString("STORAGE_BACKEND")),
		FirebaseStorageBucket: v.GetString("FIREBASE_STORAGE_BUCKET"),
		CloudflareAccountID:   v.GetString("CLOUDFLARE_ACCOUNT_ID"),
		R2BucketName:          v.GetString("R2_BUCKET_NAME"),
		R2AccessKeyID:         v.GetString("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:     v.GetString("R2_SECRET_ACCESS_KEY"),
		R2PublicURL:           v.GetString("R2_PUBLIC_URL"),
		DiscordWebhookURL:     v.GetString("DISCORD_WEBHOOK_URL"),
		RateLimitPerMinute:    v.GetInt("RATE_LIMIT_PER_MINUTE"),
		ReportFontPath:        v.GetString("REPORT_FONT_PATH"),
	}
	return cfg, nil
}

// Validate reports every required setting that is missing for the selected
// backends. The AI key is only required when requireAI is set.
func (c *Config) Validate(requireAI bool) error {
	var errs []error
	missing := func(key, val string) {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s must be set", key))
		}
	}

	if requireAI {
		missing("GEMINI_API_KEY", c.GeminiAPIKey)
	}
	missing("JWT_SECRET", c.JWTSecret)

	switch c.HistoryBackend {
	case BackendFirestore:
		missing("FIREBASE_PROJECT_ID", c.FirebaseProjectID)
	case BackendPostgres:
		missing("DATABASE_URL", c.DatabaseURL)
	case BackendSQLite:
		missing("SQLITE_PATH", c.SQLitePath)
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown HISTORY_BACKEND %q", c.HistoryBackend))
	}

	switch c.StorageBackend {
	case StorageGCS:
		missing("FIREBASE_STORAGE_BUCKET", c.FirebaseStorageBucket)
	case StorageR2:
		missing("CLOUDFLARE_ACCOUNT_ID", c.CloudflareAccountID)
		missing("R2_BUCKET_NAME", c.R2BucketName)
		missing("R2_ACCESS_KEY_ID", c.R2AccessKeyID)
		missing("R2_SECRET_ACCESS_KEY", c.R2SecretAccessKey)
		missing("R2_PUBLIC_URL", c.R2PublicURL)
	case StorageNone:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	if c.AnalysisWorkers < 1 {
		errs = append(errs, errors.New("ANALYSIS_WORKERS must be at least 1"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}
