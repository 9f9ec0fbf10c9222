package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Catalog.NewLimit)
	assert.Equal(t, 10, cfg.Catalog.BestsellerLimit)
	assert.Equal(t, 4, cfg.Catalog.PopularLimit)
	assert.Equal(t, 5, cfg.Catalog.RelatedLimit)
	assert.Equal(t, 7*24*time.Hour, cfg.Catalog.PopularWindow)
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Minute, cfg.ViewSyncInterval)
	assert.Equal(t, "0 3 * * *", cfg.SearchReindexSchedule)
}

func TestLoadAllTimePopularity(t *testing.T) {
	t.Setenv("POPULAR_WINDOW", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Catalog.PopularWindow)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("RELATED_LIMIT", "zero")
	_, err := Load()
	assert.ErrorContains(t, err, "RELATED_LIMIT")

	t.Setenv("RELATED_LIMIT", "5")
	t.Setenv("POPULAR_WINDOW", "-1h")
	_, err = Load()
	assert.ErrorContains(t, err, "POPULAR_WINDOW")
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
