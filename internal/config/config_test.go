package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 3, cfg.GeminiMaxAttempts)
	assert.Equal(t, 4, cfg.AnalysisWorkers)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 2*time.Hour, cfg.DocumentTTL)
	assert.Equal(t, BackendMemory, cfg.HistoryBackend)
	assert.Equal(t, StorageNone, cfg.StorageBackend)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set("FRONTEND_URL", "https://study.example.com/")
	v.Set("HISTORY_BACKEND", "SQLite")
	v.Set("DOCUMENT_TTL", "15m")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "https://study.example.com", cfg.FrontendURL)
	assert.Equal(t, BackendSQLite, cfg.HistoryBackend)
	assert.Equal(t, 15*time.Minute, cfg.DocumentTTL)
}

func TestFromViperRejectsBadTTL(t *testing.T) {
	v := viper.New()
	v.Set("DOCUMENT_TTL", "soon")
	_, err := FromViper(v)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	err = cfg.Validate(true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.GeminiAPIKey = "key"
	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate(true))

	cfg.StorageBackend = StorageR2
	cfg.R2BucketName = "bucket"
	err = cfg.Validate(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R2_PUBLIC_URL")
	assert.NotContains(t, err.Error(), "R2_BUCKET_NAME")

	cfg.StorageBackend = "ftp"
	assert.ErrorContains(t, cfg.Validate(false), "unknown STORAGE_BACKEND")
}
