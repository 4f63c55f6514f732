package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "MONGODB_URI", "MONGODB_DB_NAME",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REPORT_CACHE_TTL",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_EXPORT_ID",
		"MEDIA_BASE_URL",
		"DIGEST_CRON_SCHEDULE", "TIMEZONE", "REPORT_DATE_LAYOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "stockreport", cfg.MongoDB.DBName)
	assert.Equal(t, "0 6 * * *", cfg.Reporting.CronSchedule)
	assert.Equal(t, "UTC", cfg.Reporting.Timezone)
	assert.Equal(t, "2006-01-02", cfg.Reporting.DateLayout)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)

	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.Media.Enabled())
}

func TestLoad_OptionalSubsystems(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REPORT_CACHE_TTL", "5m")
	t.Setenv("MEDIA_BASE_URL", "http://media.local")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/etc/creds.json")
	t.Setenv("GOOGLE_SHEET_EXPORT_ID", "sheet-1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.Media.Enabled())
	assert.True(t, cfg.Sheets.Enabled())
}

func TestLoad_RejectsHalfConfiguredSheets(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_SHEET_EXPORT_ID", "sheet-1")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be set together")
}

func TestLoad_RejectsBadRedisDB(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_RejectsBadCacheTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPORT_CACHE_TTL", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate_NonPositiveTTLWithRedis(t *testing.T) {
	clearEnv(t)
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REPORT_CACHE_TTL", "-1m")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_CACHE_TTL")
}
