// Package repository presents the uniform alert surface the pipeline uses,
// isolating it from the shape of the storage backend underneath.
package repository

import (
	"context"
	"errors"
	"fmt"

	"alert-service/internal/logging"
	"alert-service/internal/models"
	"alert-service/internal/storage"
)

// Repository normalises a storage backend into the four operations the
// pipeline needs. Optional backend capabilities are probed once, here,
// rather than per call.
type Repository struct {
	backend storage.Backend
	valuer  storage.CurrentValuer
	deleter storage.Deleter
	logger  *logging.Logger
}

// New constructs a Repository over the given backend, probing its optional
// capabilities via interface assertion.
func New(backend storage.Backend, logger *logging.Logger) (*Repository, error) {
	if backend == nil {
		return nil, &storage.CapabilityError{Op: "create/read/update"}
	}
	r := &Repository{backend: backend, logger: logger}
	if v, ok := backend.(storage.CurrentValuer); ok {
		r.valuer = v
	}
	if d, ok := backend.(storage.Deleter); ok {
		r.deleter = d
	}
	return r, nil
}

// CreateAlert validates and stores a new alert. When the caller supplied no
// starting value and the backend can report current market values, the
// current value for the alert's asset is injected as the starting value.
func (r *Repository) CreateAlert(ctx context.Context, alert models.Alert) (models.Alert, error) {
	if alert.ID == "" {
		return models.Alert{}, fmt.Errorf("alert id is required")
	}
	if alert.Asset == "" {
		return models.Alert{}, fmt.Errorf("alert %s: asset is required", alert.ID)
	}
	if alert.Condition != models.ConditionAbove && alert.Condition != models.ConditionBelow {
		return models.Alert{}, fmt.Errorf("alert %s: invalid condition %q", alert.ID, alert.Condition)
	}
	if alert.Level == "" {
		alert.Level = models.LevelNormal
	}

	if alert.StartingValue == nil && r.valuer != nil {
		value, err := r.valuer.CurrentValue(ctx, alert.Asset)
		switch {
		case err == nil:
			alert.StartingValue = &value
		case errors.Is(err, storage.ErrNoData):
			r.logger.Debugf("No current value for %s, creating alert %s without starting value", alert.Asset, alert.ID)
		default:
			r.logger.Warnf("Current value lookup failed for %s: %v", alert.Asset, err)
		}
	}

	stored, err := r.backend.CreateAlert(ctx, alert)
	if err != nil {
		return models.Alert{}, fmt.Errorf("create alert %s: %w", alert.ID, err)
	}
	return stored, nil
}

// GetActiveAlerts returns the enabled alerts the backend holds, in the
// order the backend returns them.
func (r *Repository) GetActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	alerts, err := r.backend.GetAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active alerts: %w", err)
	}
	active := alerts[:0:0]
	for _, a := range alerts {
		if a.Enabled {
			active = append(active, a)
		}
	}
	return active, nil
}

// GetAlert returns a single alert by id, enabled or not.
func (r *Repository) GetAlert(ctx context.Context, id string) (models.Alert, error) {
	alerts, err := r.backend.GetAlerts(ctx)
	if err != nil {
		return models.Alert{}, fmt.Errorf("get alert %s: %w", id, err)
	}
	for _, a := range alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Alert{}, fmt.Errorf("get alert %s: %w", id, storage.ErrNotFound)
}

// UpdateAlertLevel writes the severity field.
func (r *Repository) UpdateAlertLevel(ctx context.Context, id string, level models.Level) error {
	if err := r.backend.UpdateAlertFields(ctx, id, map[string]interface{}{"level": string(level)}); err != nil {
		return fmt.Errorf("update level for alert %s: %w", id, err)
	}
	return nil
}

// UpdateAlertEvaluatedValue writes the most recent observed value.
func (r *Repository) UpdateAlertEvaluatedValue(ctx context.Context, id string, value float64) error {
	if err := r.backend.UpdateAlertFields(ctx, id, map[string]interface{}{"evaluated_value": value}); err != nil {
		return fmt.Errorf("update evaluated value for alert %s: %w", id, err)
	}
	return nil
}

// SetEnabled flips the enabled flag on an alert.
func (r *Repository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if err := r.backend.UpdateAlertFields(ctx, id, map[string]interface{}{"enabled": enabled}); err != nil {
		return fmt.Errorf("set enabled for alert %s: %w", id, err)
	}
	return nil
}

// DeleteAlert removes an alert when the backend supports deletion. The
// pipeline itself never calls this; it exists for the external API surface.
func (r *Repository) DeleteAlert(ctx context.Context, id string) error {
	if r.deleter == nil {
		return &storage.CapabilityError{Op: "delete_alert"}
	}
	if err := r.deleter.DeleteAlert(ctx, id); err != nil {
		return fmt.Errorf("delete alert %s: %w", id, err)
	}
	return nil
}
