// Package enrichment computes a fresh evaluated value and derived severity
// for an alert from current market state. It never persists anything.
package enrichment

import (
	"context"
	"fmt"
	"math"

	"alert-service/internal/logging"
	"alert-service/internal/market"
	"alert-service/internal/models"
)

// Service evaluates alerts against a market source.
type Service struct {
	source market.Source
	logger *logging.Logger
}

// New constructs an enrichment Service.
func New(source market.Source, logger *logging.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Enrich returns a copy of the alert with EvaluatedValue and Level updated
// from the current market value. Missing or non-finite market data returns
// an error wrapping market.ErrNoData and leaves the alert untouched, so
// the previous level and last-known evaluated value survive.
func (s *Service) Enrich(ctx context.Context, alert models.Alert, bands models.Bands) (models.Alert, error) {
	if bands.TriggerValue != nil {
		alert.TriggerValue = *bands.TriggerValue
	}

	value, err := s.source.CurrentValue(ctx, alert.Asset)
	if err != nil {
		return alert, fmt.Errorf("enrich alert %s: %w", alert.ID, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return alert, fmt.Errorf("enrich alert %s: non-finite value for %s: %w", alert.ID, alert.Asset, market.ErrNoData)
	}

	alert.Level = Classify(alert, value, bands)
	alert.EvaluatedValue = &value
	s.logger.Debugf("Alert %s evaluated %s=%.2f level=%s", alert.ID, alert.Asset, value, alert.Level)
	return alert, nil
}

// Classify derives the severity for an observed value. A satisfied
// predicate is HIGH; otherwise the ratio of remaining distance to the
// starting-to-trigger span selects the band, with ties breaking toward the
// less severe level.
func Classify(alert models.Alert, value float64, bands models.Bands) models.Level {
	if satisfied(alert.Condition, value, alert.TriggerValue) {
		return models.LevelHigh
	}

	// Without a reference span there is nothing to grade against; the
	// previous level stands.
	if alert.StartingValue == nil {
		return previousLevel(alert)
	}
	span := alert.TriggerValue - *alert.StartingValue
	if span == 0 {
		return previousLevel(alert)
	}

	remaining := (alert.TriggerValue - value) / span
	switch {
	case remaining >= bands.NormalCutoff:
		return models.LevelNormal
	case remaining >= bands.LowCutoff:
		return models.LevelLow
	case remaining >= bands.MediumCutoff:
		return models.LevelMedium
	case bands.EscalateFinal:
		return models.LevelHigh
	default:
		return models.LevelMedium
	}
}

func satisfied(cond models.Condition, value, trigger float64) bool {
	if cond == models.ConditionBelow {
		return value <= trigger
	}
	return value >= trigger
}

func previousLevel(alert models.Alert) models.Level {
	if alert.Level == "" {
		return models.LevelNormal
	}
	return alert.Level
}
