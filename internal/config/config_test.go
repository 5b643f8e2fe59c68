package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RATIO_BAND_POLICY", "")
	t.Setenv("ORDERING_POLICY", "")
	t.Setenv("REPORT_RECIPIENTS", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	band, ordering, err := cfg.Policies()
	require.NoError(t, err)
	assert.Equal(t, models.RatioBandTwoSided, band)
	assert.Equal(t, models.OrderingValueFirst, ordering)
	assert.Greater(t, cfg.ReportWorkers, 0)
	assert.Empty(t, cfg.ReportRecipients)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("RATIO_BAND_POLICY", "upper_only")
	t.Setenv("ORDERING_POLICY", "combined-first")
	t.Setenv("REPORT_WORKERS", "7")
	t.Setenv("REPORT_RECIPIENTS", "a@example.com, b@example.com,,")
	t.Setenv("S3_BUCKET", "comps-test")

	cfg, err := config.Load()
	require.NoError(t, err)

	band, ordering, err := cfg.Policies()
	require.NoError(t, err)
	assert.Equal(t, models.RatioBandUpperOnly, band)
	assert.Equal(t, models.OrderingCombinedFirst, ordering)
	assert.Equal(t, 7, cfg.ReportWorkers)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.ReportRecipients)
	assert.Equal(t, "comps-test", cfg.S3Bucket)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	t.Setenv("RATIO_BAND_POLICY", "diagonal")

	_, err := config.Load()
	assert.ErrorIs(t, err, models.ErrUnknownRatioBand)
}

func TestDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg := &config.Config{DBHost: "localhost", DBPort: 5432, DBName: "comparables", DBUser: "postgres", DBPassword: "pw"}
	assert.Equal(t, "postgres://postgres:pw@localhost:5432/comparables?sslmode=disable", cfg.DatabaseURL())

	cfg.DBHost = "db.internal"
	assert.Contains(t, cfg.DatabaseURL(), "sslmode=require")

	t.Setenv("DATABASE_URL", "postgres://override/db")
	assert.Equal(t, "postgres://override/db", cfg.DatabaseURL())
}
