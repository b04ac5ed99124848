package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Condition is the directional predicate an alert is evaluated against.
type Condition string

const (
	ConditionAbove Condition = "ABOVE"
	ConditionBelow Condition = "BELOW"
)

// ParseCondition normalises a raw condition string.
func ParseCondition(s string) (Condition, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ABOVE":
		return ConditionAbove, nil
	case "BELOW":
		return ConditionBelow, nil
	default:
		return "", fmt.Errorf("invalid condition %q", s)
	}
}

// Level is the alert severity. NORMAL and LOW are informational, MEDIUM is
// warning, HIGH is critical.
type Level string

const (
	LevelNormal Level = "NORMAL"
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

var levelRank = map[Level]int{
	LevelNormal: 0,
	LevelLow:    1,
	LevelMedium: 2,
	LevelHigh:   3,
}

// Rank returns the numeric severity order of a level; unknown levels rank
// below NORMAL.
func (l Level) Rank() int {
	if r, ok := levelRank[l]; ok {
		return r
	}
	return -1
}

// ParseLevel normalises a raw level string; empty input maps to NORMAL.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NORMAL":
		return LevelNormal, nil
	case "LOW":
		return LevelLow, nil
	case "MEDIUM":
		return LevelMedium, nil
	case "HIGH":
		return LevelHigh, nil
	default:
		return "", fmt.Errorf("invalid level %q", s)
	}
}

// Alert is a persistent watch over an asset's numeric value.
type Alert struct {
	ID             string    `json:"id"`
	AlertType      string    `json:"alert_type,omitempty"`
	Asset          string    `json:"asset"`
	Condition      Condition `json:"condition"`
	TriggerValue   float64   `json:"trigger_value"`
	StartingValue  *float64  `json:"starting_value,omitempty"`
	EvaluatedValue *float64  `json:"evaluated_value,omitempty"`
	Level          Level     `json:"level,omitempty"`
	Enabled        bool      `json:"enabled"`
	Description    string    `json:"description,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	PositionRef    string    `json:"position_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// Bands holds the remaining-ratio cutoffs that classify an unsatisfied
// alert's severity, plus optional per-asset overrides.
type Bands struct {
	NormalCutoff  float64  `json:"normal"`
	LowCutoff     float64  `json:"low"`
	MediumCutoff  float64  `json:"medium"`
	EscalateFinal bool     `json:"escalate_final,omitempty"`
	TriggerValue  *float64 `json:"trigger_value,omitempty"`
}

// DefaultBands returns the stock 66/33/10 cutoffs.
func DefaultBands() Bands {
	return Bands{NormalCutoff: 0.66, LowCutoff: 0.33, MediumCutoff: 0.10}
}

// Record is an untyped alert as some storage backends hand it back.
type Record map[string]interface{}

// FromRecord coerces an untyped key/value record into an Alert. Numeric
// fields accept float64, int, and numeric strings; unknown keys are ignored.
func FromRecord(rec Record) (Alert, error) {
	a := Alert{Enabled: true, Level: LevelNormal}

	id, _ := rec["id"].(string)
	if id == "" {
		return Alert{}, fmt.Errorf("record missing id")
	}
	a.ID = id

	if v, ok := rec["alert_type"].(string); ok {
		a.AlertType = v
	}
	asset, _ := rec["asset"].(string)
	if asset == "" {
		return Alert{}, fmt.Errorf("record %s missing asset", id)
	}
	a.Asset = asset

	if raw, ok := rec["condition"]; ok {
		cond, err := ParseCondition(fmt.Sprintf("%v", raw))
		if err != nil {
			return Alert{}, fmt.Errorf("record %s: %w", id, err)
		}
		a.Condition = cond
	} else {
		a.Condition = ConditionAbove
	}

	trigger, ok := toFloat(rec["trigger_value"])
	if !ok {
		return Alert{}, fmt.Errorf("record %s missing trigger_value", id)
	}
	a.TriggerValue = trigger

	if v, ok := toFloat(rec["starting_value"]); ok {
		a.StartingValue = &v
	}
	if v, ok := toFloat(rec["evaluated_value"]); ok {
		a.EvaluatedValue = &v
	}
	if raw, ok := rec["level"]; ok {
		lvl, err := ParseLevel(fmt.Sprintf("%v", raw))
		if err != nil {
			return Alert{}, fmt.Errorf("record %s: %w", id, err)
		}
		a.Level = lvl
	}
	if v, ok := rec["enabled"].(bool); ok {
		a.Enabled = v
	} else if raw, ok := rec["status"].(string); ok {
		a.Enabled = !strings.EqualFold(raw, "disabled")
	}
	if v, ok := rec["description"].(string); ok {
		a.Description = v
	}
	if v, ok := rec["notes"].(string); ok {
		a.Notes = v
	}
	if v, ok := rec["position_ref"].(string); ok {
		a.PositionRef = v
	}

	return a, nil
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
