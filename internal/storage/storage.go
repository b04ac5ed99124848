package storage

import (
	"context"
	"errors"
	"fmt"

	"alert-service/internal/models"
)

// ErrNotFound is returned when no alert matches the given id.
var ErrNotFound = errors.New("alert not found")

// ErrNoData is returned by CurrentValuer backends that have no value for
// the asset.
var ErrNoData = errors.New("no market data")

// CapabilityError reports that a backend lacks the operation the caller
// needs.
type CapabilityError struct {
	Op string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("storage backend does not support %s", e.Op)
}

// Backend is the minimal surface the alert repository requires from a
// store. Adapters implement it directly; optional capabilities are probed
// via interface assertion at repository construction.
type Backend interface {
	CreateAlert(ctx context.Context, alert models.Alert) (models.Alert, error)
	GetAlerts(ctx context.Context) ([]models.Alert, error)
	UpdateAlertFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// CurrentValuer is an optional backend capability: a current market value
// lookup keyed by asset, used to inject starting values at create time.
type CurrentValuer interface {
	CurrentValue(ctx context.Context, asset string) (float64, error)
}

// Deleter is an optional backend capability for removing alerts. The
// pipeline never deletes; only the external API surface uses this.
type Deleter interface {
	DeleteAlert(ctx context.Context, id string) error
}
