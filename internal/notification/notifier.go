// Package notification maps alert severity to delivery channels and
// dispatches with best-effort semantics.
package notification

import (
	"context"
	"fmt"
	"sync"

	"alert-service/internal/config"
	"alert-service/internal/logging"
	"alert-service/internal/models"
	"alert-service/internal/providers"
)

// Transports holds the channel senders the notifier dispatches through.
// Tests swap these for fakes; production wiring uses Defaults.
type Transports struct {
	Email    func(cfg config.Config, recipient, subject, body string) error
	SMS      func(cfg config.Config, recipient, body string) error
	Call     func(cfg config.Config, recipient, body string) (string, error)
	Telegram func(ctx context.Context, cfg config.Config, text string) error
}

// Defaults returns the production transport set.
func Defaults(logger *logging.Logger) Transports {
	return Transports{
		Email: providers.SendEmail,
		SMS:   providers.SendSMS,
		Call: func(cfg config.Config, recipient, body string) (string, error) {
			return providers.SendCall(cfg, logger, recipient, body)
		},
		Telegram: func(ctx context.Context, cfg config.Config, text string) error {
			return providers.SendTelegram(ctx, cfg, logger, text)
		},
	}
}

// Notifier dispatches a single alert over the channels its severity
// selects. It holds no per-alert state between calls.
type Notifier struct {
	loadConfig config.Loader
	transports Transports
	logger     *logging.Logger
}

// New constructs a Notifier with the production transports.
func New(loader config.Loader, logger *logging.Logger) *Notifier {
	return NewWithTransports(loader, Defaults(logger), logger)
}

// NewWithTransports constructs a Notifier over explicit transports.
func NewWithTransports(loader config.Loader, transports Transports, logger *logging.Logger) *Notifier {
	return &Notifier{loadConfig: loader, transports: transports, logger: logger}
}

// SendAlert delivers one alert. HIGH requires SMS and voice to both
// succeed, MEDIUM requires SMS, LOW and NORMAL require email. Transport
// failures are logged and reported as false; SendAlert never panics or
// propagates an error.
func (n *Notifier) SendAlert(ctx context.Context, alert models.Alert) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Errorf("Panic dispatching alert %s: %v", alert.ID, r)
			ok = false
		}
	}()

	// Re-load so operators can change transport settings without a restart.
	cfg, err := n.loadConfig()
	if err != nil {
		n.logger.Errorf("Config load failed dispatching alert %s: %v", alert.ID, err)
		return false
	}

	subject, body := FormatMessage(alert)

	switch alert.Level {
	case models.LevelHigh:
		ok = n.sendHigh(ctx, cfg, alert, subject, body)
	case models.LevelMedium:
		if err := n.transports.SMS(cfg, "", body); err != nil {
			n.logger.Errorf("SMS dispatch failed for alert %s: %v", alert.ID, err)
			return false
		}
		ok = true
	default:
		if err := n.transports.Email(cfg, "", subject, body); err != nil {
			n.logger.Errorf("Email dispatch failed for alert %s: %v", alert.ID, err)
			return false
		}
		ok = true
	}

	n.logger.Infof("Alert %s dispatched level=%s ok=%t", alert.ID, alert.Level, ok)
	return ok
}

// sendHigh fans SMS and voice out concurrently; both must succeed. The
// optional Telegram operator broadcast rides along without affecting the
// outcome.
func (n *Notifier) sendHigh(ctx context.Context, cfg config.Config, alert models.Alert, subject, body string) bool {
	var (
		wg           sync.WaitGroup
		smsErr       error
		callErr      error
		executionSID string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				smsErr = fmt.Errorf("sms transport panicked: %v", r)
			}
		}()
		smsErr = n.transports.SMS(cfg, "", body)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				callErr = fmt.Errorf("call transport panicked: %v", r)
			}
		}()
		executionSID, callErr = n.transports.Call(cfg, "", body)
	}()
	wg.Wait()

	if smsErr != nil {
		n.logger.Errorf("SMS dispatch failed for alert %s: %v", alert.ID, smsErr)
	}
	if callErr != nil {
		n.logger.Errorf("Call dispatch failed for alert %s: %v", alert.ID, callErr)
	} else if executionSID != "" {
		n.logger.Debugf("Call flow started for alert %s: execution=%s", alert.ID, executionSID)
	}

	if cfg.Telegram.Enabled && n.transports.Telegram != nil {
		if err := n.transports.Telegram(ctx, cfg, subject+"\n"+body); err != nil {
			n.logger.Warnf("Telegram broadcast failed for alert %s: %v", alert.ID, err)
		}
	}

	return smsErr == nil && callErr == nil
}

// FormatMessage renders the subject line and multi-line body for an alert.
func FormatMessage(alert models.Alert) (subject, body string) {
	evaluated := "n/a"
	if alert.EvaluatedValue != nil {
		evaluated = fmt.Sprintf("%.2f", *alert.EvaluatedValue)
	}
	alertType := alert.AlertType
	if alertType == "" {
		alertType = "price threshold"
	}

	subject = fmt.Sprintf("[%s] %s alert", alert.Level, alert.Asset)
	body = fmt.Sprintf(
		"Asset: %s\nType: %s\nLevel: %s\nEvaluated: %s\nTrigger: %.2f (%s)",
		alert.Asset,
		alertType,
		alert.Level,
		evaluated,
		alert.TriggerValue,
		alert.Condition,
	)
	return subject, body
}
