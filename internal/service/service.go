// Package service drives the alert evaluation pipeline: load active
// alerts, enrich each from market state, persist the result, notify.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alert-service/internal/config"
	"alert-service/internal/enrichment"
	"alert-service/internal/logging"
	"alert-service/internal/market"
	"alert-service/internal/models"
	"alert-service/internal/repository"
	"alert-service/internal/ws"
)

// Notifier dispatches a single enriched alert and reports delivery success.
type Notifier interface {
	SendAlert(ctx context.Context, alert models.Alert) bool
}

// Publisher pushes evaluation updates to live dashboard clients.
type Publisher interface {
	Broadcast(update ws.Update)
}

// Service is the pipeline driver. Ticks are sequential; callers must not
// overlap invocations.
type Service struct {
	repo       *repository.Repository
	enricher   *enrichment.Service
	notifier   Notifier
	loadConfig config.Loader
	publisher  Publisher
	logger     *logging.Logger
}

// New constructs the driver. publisher may be nil.
func New(repo *repository.Repository, enricher *enrichment.Service, notifier Notifier, loader config.Loader, publisher Publisher, logger *logging.Logger) *Service {
	return &Service{
		repo:       repo,
		enricher:   enricher,
		notifier:   notifier,
		loadConfig: loader,
		publisher:  publisher,
		logger:     logger,
	}
}

// Tick runs one full pass over the active alerts. For each alert the
// evaluated value is persisted before the level, so a dashboard reading
// mid-write sees a fresh value with at worst a stale level. Enrichment
// failures skip that alert; persistence errors surface; notification
// failures are logged and swallowed.
func (s *Service) Tick(ctx context.Context) error {
	cfg, err := s.loadConfig()
	if err != nil {
		return fmt.Errorf("tick: load config: %w", err)
	}

	alerts, err := s.repo.GetActiveAlerts(ctx)
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	s.logger.Debugf("Tick started with %d active alerts", len(alerts))

	for _, alert := range alerts {
		enriched, err := s.enricher.Enrich(ctx, alert, cfg.BandsFor(alert.Asset))
		if err != nil {
			if errors.Is(err, market.ErrNoData) {
				s.logger.Debugf("No market data for %s, keeping alert %s at level %s", alert.Asset, alert.ID, alert.Level)
			} else {
				s.logger.Warnf("Enrichment failed for alert %s: %v", alert.ID, err)
			}
			continue
		}

		if err := s.repo.UpdateAlertEvaluatedValue(ctx, enriched.ID, *enriched.EvaluatedValue); err != nil {
			return fmt.Errorf("tick: %w", err)
		}
		if err := s.repo.UpdateAlertLevel(ctx, enriched.ID, enriched.Level); err != nil {
			return fmt.Errorf("tick: %w", err)
		}

		if s.publisher != nil {
			s.publisher.Broadcast(ws.Update{
				ID:             enriched.ID,
				Asset:          enriched.Asset,
				Level:          enriched.Level,
				EvaluatedValue: *enriched.EvaluatedValue,
			})
		}

		if ok := s.notifier.SendAlert(ctx, enriched); !ok {
			s.logger.Warnf("Notification failed for alert %s (level %s)", enriched.ID, enriched.Level)
		}
	}

	return nil
}

// Run ticks the pipeline on the given interval until the context is
// cancelled. Ticks never overlap.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Infof("Pipeline running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Infof("Pipeline stopped")
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logger.Errorf("Tick failed: %v", err)
			}
		}
	}
}
