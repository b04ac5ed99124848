package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"alert-service/internal/models"
)

// Memory keeps alerts in a plain slice mutated in place. It backs local
// deployments and tests, and doubles as the CurrentValuer capability when
// seeded with market values.
type Memory struct {
	mu     sync.Mutex
	alerts []models.Alert
	values map[string]float64
}

// NewMemory constructs an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]float64)}
}

// SetCurrentValue seeds the current market value for an asset.
func (m *Memory) SetCurrentValue(asset string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[asset] = value
}

// CurrentValue returns the seeded value for an asset, or ErrNoData.
func (m *Memory) CurrentValue(_ context.Context, asset string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[asset]
	if !ok {
		return 0, fmt.Errorf("asset %s: %w", asset, ErrNoData)
	}
	return v, nil
}

func (m *Memory) CreateAlert(_ context.Context, alert models.Alert) (models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.alerts {
		if existing.ID == alert.ID {
			return models.Alert{}, fmt.Errorf("alert %s already exists", alert.ID)
		}
	}
	now := time.Now()
	alert.CreatedAt = now
	alert.UpdatedAt = now
	m.alerts = append(m.alerts, alert)
	return alert, nil
}

func (m *Memory) GetAlerts(_ context.Context) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out, nil
}

func (m *Memory) UpdateAlertFields(_ context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID != id {
			continue
		}
		if err := applyFields(&m.alerts[i], fields); err != nil {
			return err
		}
		m.alerts[i].UpdatedAt = time.Now()
		return nil
	}
	return fmt.Errorf("update alert %s: %w", id, ErrNotFound)
}

func (m *Memory) DeleteAlert(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.alerts {
		if m.alerts[i].ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete alert %s: %w", id, ErrNotFound)
}

func applyFields(a *models.Alert, fields map[string]interface{}) error {
	for key, raw := range fields {
		switch key {
		case "level":
			lvl, err := models.ParseLevel(fmt.Sprintf("%v", raw))
			if err != nil {
				return err
			}
			a.Level = lvl
		case "evaluated_value":
			v, ok := raw.(float64)
			if !ok {
				return fmt.Errorf("evaluated_value must be numeric, got %T", raw)
			}
			a.EvaluatedValue = &v
		case "trigger_value":
			v, ok := raw.(float64)
			if !ok {
				return fmt.Errorf("trigger_value must be numeric, got %T", raw)
			}
			a.TriggerValue = v
		case "enabled":
			v, ok := raw.(bool)
			if !ok {
				return fmt.Errorf("enabled must be boolean, got %T", raw)
			}
			a.Enabled = v
		case "notes":
			a.Notes = fmt.Sprintf("%v", raw)
		case "description":
			a.Description = fmt.Sprintf("%v", raw)
		default:
			return fmt.Errorf("field %q is not updatable", key)
		}
	}
	return nil
}
