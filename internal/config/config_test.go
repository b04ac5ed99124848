package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alert-service/internal/config"
	"alert-service/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.API.Port)
	assert.Equal(t, "/api/v0", cfg.API.BasePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 10*time.Second, cfg.Market.Timeout)
	assert.Equal(t, 5, cfg.Market.RatePerSecond)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", ":9191")
	t.Setenv("TICK_INTERVAL", "30s")
	t.Setenv("EMAIL_ENABLED", "true")
	t.Setenv("EMAIL_SMTP_PORT", "587")
	t.Setenv("SMS_CARRIER_GATEWAY", "vtext.com")
	t.Setenv("TWILIO_ENABLED", "1")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9191", cfg.API.Port)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Interval)
	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, "vtext.com", cfg.SMS.CarrierGateway)
	assert.True(t, cfg.Twilio.Enabled)
	assert.Equal(t, int64(-100200300), cfg.Telegram.ChatID)
}

func TestLoadAlertRanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.json")
	payload := `{
		"BTC": {"normal": 0.5, "low": 0.25, "medium": 0.05, "escalate_final": true},
		"ETH": {"trigger_value": 2500}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	t.Setenv("ALERT_RANGES_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	btc := cfg.BandsFor("BTC")
	assert.Equal(t, 0.5, btc.NormalCutoff)
	assert.Equal(t, 0.25, btc.LowCutoff)
	assert.Equal(t, 0.05, btc.MediumCutoff)
	assert.True(t, btc.EscalateFinal)

	// Entries with only a trigger override keep the default cutoffs.
	eth := cfg.BandsFor("ETH")
	assert.Equal(t, models.DefaultBands().NormalCutoff, eth.NormalCutoff)
	require.NotNil(t, eth.TriggerValue)
	assert.Equal(t, 2500.0, *eth.TriggerValue)

	// Unknown assets fall back to defaults.
	assert.Equal(t, models.DefaultBands(), cfg.BandsFor("SOL"))
}

func TestLoadAlertRangesBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	t.Setenv("ALERT_RANGES_PATH", path)

	_, err := config.Load()
	assert.Error(t, err)
}
