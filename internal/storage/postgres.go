package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"alert-service/internal/models"
)

// Postgres is the pgx-backed storage adapter.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects a pool against the given DSN.
func NewPostgres(dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Close() {
	p.Pool.Close()
}

// CreateAlert inserts a new alert row and returns the stored record.
func (p *Postgres) CreateAlert(ctx context.Context, alert models.Alert) (models.Alert, error) {
	now := time.Now()
	alert.CreatedAt = now
	alert.UpdatedAt = now

	query := `
    INSERT INTO alerts (
        id, alert_type, asset, condition, trigger_value, starting_value,
        evaluated_value, level, enabled, description, notes, position_ref,
        created_at, updated_at
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
    )`

	_, err := p.Pool.Exec(ctx, query,
		alert.ID,
		alert.AlertType,
		alert.Asset,
		string(alert.Condition),
		alert.TriggerValue,
		alert.StartingValue,
		alert.EvaluatedValue,
		string(alert.Level),
		alert.Enabled,
		alert.Description,
		alert.Notes,
		alert.PositionRef,
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		return models.Alert{}, fmt.Errorf("failed to insert alert: %w", err)
	}
	return alert, nil
}

// GetAlerts returns every alert row in creation order.
func (p *Postgres) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	query := `
    SELECT id, alert_type, asset, condition, trigger_value, starting_value,
           evaluated_value, level, enabled, description, notes, position_ref,
           created_at, updated_at
    FROM alerts
    ORDER BY created_at`

	rows, err := p.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	defer rows.Close()

	var list []models.Alert
	for rows.Next() {
		var a models.Alert
		var condition, level string
		err := rows.Scan(
			&a.ID,
			&a.AlertType,
			&a.Asset,
			&condition,
			&a.TriggerValue,
			&a.StartingValue,
			&a.EvaluatedValue,
			&level,
			&a.Enabled,
			&a.Description,
			&a.Notes,
			&a.PositionRef,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Condition = models.Condition(condition)
		a.Level = models.Level(level)
		list = append(list, a)
	}
	return list, rows.Err()
}

// updatableColumns whitelists the fields UpdateAlertFields will write.
var updatableColumns = map[string]string{
	"level":           "level",
	"evaluated_value": "evaluated_value",
	"enabled":         "enabled",
	"trigger_value":   "trigger_value",
	"notes":           "notes",
	"description":     "description",
}

// UpdateAlertFields writes the given fields on the alert row with that id.
func (p *Postgres) UpdateAlertFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	i := 1
	for key, val := range fields {
		col, ok := updatableColumns[key]
		if !ok {
			return fmt.Errorf("field %q is not updatable", key)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", i))
	args = append(args, time.Now())
	i++
	args = append(args, id)

	query := fmt.Sprintf("UPDATE alerts SET %s WHERE id = $%d", strings.Join(sets, ", "), i)
	result, err := p.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("update alert %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAlert removes the alert row with the given id.
func (p *Postgres) DeleteAlert(ctx context.Context, id string) error {
	result, err := p.Pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete alert %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete alert %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetAlert fetches a single alert row by id.
func (p *Postgres) GetAlert(ctx context.Context, id string) (models.Alert, error) {
	query := `
    SELECT id, alert_type, asset, condition, trigger_value, starting_value,
           evaluated_value, level, enabled, description, notes, position_ref,
           created_at, updated_at
    FROM alerts
    WHERE id = $1`

	var a models.Alert
	var condition, level string
	err := p.Pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.AlertType,
		&a.Asset,
		&condition,
		&a.TriggerValue,
		&a.StartingValue,
		&a.EvaluatedValue,
		&level,
		&a.Enabled,
		&a.Description,
		&a.Notes,
		&a.PositionRef,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return models.Alert{}, fmt.Errorf("get alert %s: %w", id, ErrNotFound)
		}
		return models.Alert{}, fmt.Errorf("failed to get alert %s: %w", id, err)
	}
	a.Condition = models.Condition(condition)
	a.Level = models.Level(level)
	return a, nil
}
