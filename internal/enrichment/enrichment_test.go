package enrichment_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alert-service/internal/enrichment"
	"alert-service/internal/logging"
	"alert-service/internal/market"
	"alert-service/internal/models"
)

func alertAbove(start, trigger float64) models.Alert {
	return models.Alert{
		ID:            "a1",
		Asset:         "BTC",
		Condition:     models.ConditionAbove,
		TriggerValue:  trigger,
		StartingValue: &start,
		Level:         models.LevelNormal,
		Enabled:       true,
	}
}

func TestClassifyBandsAbove(t *testing.T) {
	bands := models.DefaultBands()
	a := alertAbove(30000, 50000) // span 20000

	cases := []struct {
		name  string
		value float64
		want  models.Level
	}{
		{"at start", 30000, models.LevelNormal},
		{"moved away", 25000, models.LevelNormal},
		{"exactly 66% remaining", 36800, models.LevelNormal},
		{"half way", 40000, models.LevelLow},
		{"exactly 33% remaining", 43400, models.LevelLow},
		{"10-33% band", 45000, models.LevelMedium},
		{"exactly 10% remaining", 48000, models.LevelMedium},
		{"under 10% not triggered", 49500, models.LevelMedium},
		{"at trigger", 50000, models.LevelHigh},
		{"past trigger", 60000, models.LevelHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, enrichment.Classify(a, tc.value, bands))
		})
	}
}

func TestClassifyBandsBelow(t *testing.T) {
	bands := models.DefaultBands()
	start := 2000.0
	a := models.Alert{
		ID:            "b1",
		Asset:         "ETH",
		Condition:     models.ConditionBelow,
		TriggerValue:  1000,
		StartingValue: &start,
		Level:         models.LevelNormal,
	}

	assert.Equal(t, models.LevelNormal, enrichment.Classify(a, 2000, bands))
	assert.Equal(t, models.LevelLow, enrichment.Classify(a, 1500, bands))
	assert.Equal(t, models.LevelMedium, enrichment.Classify(a, 1200, bands))
	assert.Equal(t, models.LevelMedium, enrichment.Classify(a, 1050, bands))
	assert.Equal(t, models.LevelHigh, enrichment.Classify(a, 1000, bands))
	assert.Equal(t, models.LevelHigh, enrichment.Classify(a, 900, bands))
}

func TestClassifyEscalateFinal(t *testing.T) {
	bands := models.DefaultBands()
	bands.EscalateFinal = true
	a := alertAbove(30000, 50000)

	assert.Equal(t, models.LevelHigh, enrichment.Classify(a, 49500, bands))
	// The 10% boundary itself still classifies MEDIUM.
	assert.Equal(t, models.LevelMedium, enrichment.Classify(a, 48000, bands))
}

func TestClassifyWithoutStartingValueKeepsLevel(t *testing.T) {
	bands := models.DefaultBands()
	a := models.Alert{
		ID:           "c1",
		Asset:        "BTC",
		Condition:    models.ConditionAbove,
		TriggerValue: 50000,
		Level:        models.LevelLow,
	}
	assert.Equal(t, models.LevelLow, enrichment.Classify(a, 40000, bands))
	assert.Equal(t, models.LevelHigh, enrichment.Classify(a, 50000, bands))

	a.Level = ""
	assert.Equal(t, models.LevelNormal, enrichment.Classify(a, 40000, bands))
}

// Moving strictly closer to the trigger must never lower the severity.
func TestClassifyMonotone(t *testing.T) {
	bands := models.DefaultBands()
	a := alertAbove(30000, 50000)

	prev := -1
	for v := 30000.0; v <= 50000; v += 250 {
		lvl := enrichment.Classify(a, v, bands)
		require.GreaterOrEqual(t, lvl.Rank(), prev, "value %f lowered severity", v)
		prev = lvl.Rank()
	}
}

func TestEnrichUpdatesValueAndLevel(t *testing.T) {
	src := market.SourceFunc(func(context.Context, string) (float64, error) {
		return 60000, nil
	})
	svc := enrichment.New(src, logging.NewNop())

	out, err := svc.Enrich(context.Background(), alertAbove(45000, 50000), models.DefaultBands())
	require.NoError(t, err)
	require.NotNil(t, out.EvaluatedValue)
	assert.Equal(t, 60000.0, *out.EvaluatedValue)
	assert.Equal(t, models.LevelHigh, out.Level)
}

func TestEnrichTriggerOverride(t *testing.T) {
	src := market.SourceFunc(func(context.Context, string) (float64, error) {
		return 55000, nil
	})
	svc := enrichment.New(src, logging.NewNop())

	bands := models.DefaultBands()
	override := 70000.0
	bands.TriggerValue = &override

	out, err := svc.Enrich(context.Background(), alertAbove(45000, 50000), bands)
	require.NoError(t, err)
	assert.Equal(t, 70000.0, out.TriggerValue)
	assert.NotEqual(t, models.LevelHigh, out.Level)
}

func TestEnrichNoDataPreservesAlert(t *testing.T) {
	src := market.SourceFunc(func(_ context.Context, asset string) (float64, error) {
		return 0, fmt.Errorf("asset %s: %w", asset, market.ErrNoData)
	})
	svc := enrichment.New(src, logging.NewNop())

	in := alertAbove(45000, 50000)
	in.Level = models.LevelMedium
	out, err := svc.Enrich(context.Background(), in, models.DefaultBands())
	require.ErrorIs(t, err, market.ErrNoData)
	assert.Equal(t, models.LevelMedium, out.Level)
	assert.Nil(t, out.EvaluatedValue)
}

func TestEnrichNaNTreatedAsNoData(t *testing.T) {
	src := market.SourceFunc(func(context.Context, string) (float64, error) {
		return math.NaN(), nil
	})
	svc := enrichment.New(src, logging.NewNop())

	_, err := svc.Enrich(context.Background(), alertAbove(45000, 50000), models.DefaultBands())
	require.ErrorIs(t, err, market.ErrNoData)
}
