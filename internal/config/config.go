package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"alert-service/internal/models"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
	}
	Logging struct {
		Dir   string
		Level string
	}
	Scheduler struct {
		Interval time.Duration
	}
	Market struct {
		BaseURL       string
		Timeout       time.Duration
		RatePerSecond int
	}
	Email struct {
		Enabled          bool
		SMTPServer       string
		SMTPPort         int
		Username         string
		Password         string
		FromName         string
		DefaultRecipient string
	}
	SMS struct {
		Enabled          bool
		CarrierGateway   string
		DefaultRecipient string
	}
	Twilio struct {
		Enabled          bool
		AccountSID       string
		AuthToken        string
		FlowSID          string
		DefaultToPhone   string
		DefaultFromPhone string
	}
	Telegram struct {
		Enabled       bool
		BotToken      string
		ChatID        int64
		RatePerSecond int
	}
	// AlertRanges overrides band cutoffs (and optionally trigger values)
	// per asset. Assets without an entry use models.DefaultBands.
	AlertRanges map[string]models.Bands
}

// Loader is a zero-argument config source. The notifier re-invokes it on
// every dispatch so operators can hot-reload transport settings.
type Loader func() (Config, error)

// BandsFor returns the band cutoffs for an asset, falling back to defaults.
func (c Config) BandsFor(asset string) models.Bands {
	if b, ok := c.AlertRanges[asset]; ok {
		if b.NormalCutoff == 0 && b.LowCutoff == 0 && b.MediumCutoff == 0 {
			d := models.DefaultBands()
			b.NormalCutoff, b.LowCutoff, b.MediumCutoff = d.NormalCutoff, d.LowCutoff, d.MediumCutoff
		}
		return b
	}
	return models.DefaultBands()
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Kafka settings
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// Database DSN; empty selects the in-memory backend
	cfg.DB.DSN = os.Getenv("DB_DSN")

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Logging
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Scheduler
	if iv, err := time.ParseDuration(os.Getenv("TICK_INTERVAL")); err == nil {
		cfg.Scheduler.Interval = iv
	}

	// Market source
	cfg.Market.BaseURL = os.Getenv("MARKET_API_URL")
	if to, err := time.ParseDuration(os.Getenv("MARKET_TIMEOUT")); err == nil {
		cfg.Market.Timeout = to
	}
	if r, err := strconv.Atoi(os.Getenv("MARKET_RATE_PER_SECOND")); err == nil {
		cfg.Market.RatePerSecond = r
	}

	// Email provider
	cfg.Email.Enabled = envBool("EMAIL_ENABLED")
	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.FromName = os.Getenv("EMAIL_FROM_NAME")
	cfg.Email.DefaultRecipient = os.Getenv("EMAIL_DEFAULT_RECIPIENT")

	// SMS via carrier gateway
	cfg.SMS.Enabled = envBool("SMS_ENABLED")
	cfg.SMS.CarrierGateway = os.Getenv("SMS_CARRIER_GATEWAY")
	cfg.SMS.DefaultRecipient = os.Getenv("SMS_DEFAULT_RECIPIENT")

	// Twilio (SMS fallback and voice calls)
	cfg.Twilio.Enabled = envBool("TWILIO_ENABLED")
	cfg.Twilio.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.Twilio.FlowSID = os.Getenv("TWILIO_FLOW_SID")
	cfg.Twilio.DefaultToPhone = os.Getenv("TWILIO_DEFAULT_TO_PHONE")
	cfg.Twilio.DefaultFromPhone = os.Getenv("TWILIO_DEFAULT_FROM_PHONE")

	// Telegram operator broadcast
	cfg.Telegram.Enabled = envBool("TELEGRAM_ENABLED")
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.ChatID = id
	}
	if r, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_PER_SECOND")); err == nil {
		cfg.Telegram.RatePerSecond = r
	}

	// Per-asset band overrides
	if path := os.Getenv("ALERT_RANGES_PATH"); path != "" {
		ranges, err := loadAlertRanges(path)
		if err != nil {
			return Config{}, err
		}
		cfg.AlertRanges = ranges
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = time.Minute
	}
	if cfg.Market.Timeout == 0 {
		cfg.Market.Timeout = 10 * time.Second
	}
	if cfg.Market.RatePerSecond == 0 {
		cfg.Market.RatePerSecond = 5
	}
	if cfg.Telegram.RatePerSecond == 0 {
		cfg.Telegram.RatePerSecond = 1
	}

	return cfg, nil
}

func loadAlertRanges(path string) (map[string]models.Bands, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert ranges file %s: %w", path, err)
	}
	var ranges map[string]models.Bands
	if err := json.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("failed to parse alert ranges file %s: %w", path, err)
	}
	return ranges, nil
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
