package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alert-service/internal/logging"
	"alert-service/internal/models"
	"alert-service/internal/repository"
	"alert-service/internal/storage"
)

func newRepo(t *testing.T, backend storage.Backend) *repository.Repository {
	t.Helper()
	repo, err := repository.New(backend, logging.NewNop())
	require.NoError(t, err)
	return repo
}

// plainBackend hides the Memory backend's optional capabilities so the
// repository sees only the core surface.
type plainBackend struct {
	inner *storage.Memory
}

func (b plainBackend) CreateAlert(ctx context.Context, a models.Alert) (models.Alert, error) {
	return b.inner.CreateAlert(ctx, a)
}

func (b plainBackend) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	return b.inner.GetAlerts(ctx)
}

func (b plainBackend) UpdateAlertFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return b.inner.UpdateAlertFields(ctx, id, fields)
}

func TestCreateAlertInjectsStartingValue(t *testing.T) {
	backend := storage.NewMemory()
	backend.SetCurrentValue("BTC", 30250.12)
	repo := newRepo(t, backend)

	stored, err := repo.CreateAlert(context.Background(), models.Alert{
		ID:           "a1",
		Asset:        "BTC",
		Condition:    models.ConditionAbove,
		TriggerValue: 31000,
		Enabled:      true,
	})
	require.NoError(t, err)
	require.NotNil(t, stored.StartingValue)
	assert.Equal(t, 30250.12, *stored.StartingValue)
}

func TestCreateAlertRespectsExplicitStartingValue(t *testing.T) {
	backend := storage.NewMemory()
	backend.SetCurrentValue("ETH", 1895.42)
	repo := newRepo(t, backend)

	explicit := 1880.0
	stored, err := repo.CreateAlert(context.Background(), models.Alert{
		ID:            "a2",
		Asset:         "ETH",
		Condition:     models.ConditionAbove,
		TriggerValue:  2000,
		StartingValue: &explicit,
		Enabled:       true,
	})
	require.NoError(t, err)
	require.NotNil(t, stored.StartingValue)
	assert.Equal(t, 1880.0, *stored.StartingValue)
}

func TestCreateAlertWithoutValuerCapability(t *testing.T) {
	repo := newRepo(t, plainBackend{inner: storage.NewMemory()})

	stored, err := repo.CreateAlert(context.Background(), models.Alert{
		ID:           "a3",
		Asset:        "BTC",
		Condition:    models.ConditionAbove,
		TriggerValue: 31000,
		Enabled:      true,
	})
	require.NoError(t, err)
	assert.Nil(t, stored.StartingValue)
}

func TestCreateAlertNoDataSkipsInjection(t *testing.T) {
	repo := newRepo(t, storage.NewMemory()) // no seeded values

	stored, err := repo.CreateAlert(context.Background(), models.Alert{
		ID:           "a4",
		Asset:        "SOL",
		Condition:    models.ConditionBelow,
		TriggerValue: 10,
		Enabled:      true,
	})
	require.NoError(t, err)
	assert.Nil(t, stored.StartingValue)
}

func TestCreateAlertValidation(t *testing.T) {
	repo := newRepo(t, storage.NewMemory())
	ctx := context.Background()

	_, err := repo.CreateAlert(ctx, models.Alert{Asset: "BTC", Condition: models.ConditionAbove})
	assert.Error(t, err)

	_, err = repo.CreateAlert(ctx, models.Alert{ID: "x", Condition: models.ConditionAbove})
	assert.Error(t, err)

	_, err = repo.CreateAlert(ctx, models.Alert{ID: "x", Asset: "BTC", Condition: "SIDEWAYS"})
	assert.Error(t, err)
}

func TestGetActiveAlertsFiltersDisabled(t *testing.T) {
	backend := storage.NewMemory()
	repo := newRepo(t, backend)
	ctx := context.Background()

	for _, a := range []models.Alert{
		{ID: "on-1", Asset: "BTC", Condition: models.ConditionAbove, TriggerValue: 1, Enabled: true},
		{ID: "off", Asset: "BTC", Condition: models.ConditionAbove, TriggerValue: 1, Enabled: false},
		{ID: "on-2", Asset: "ETH", Condition: models.ConditionBelow, TriggerValue: 1, Enabled: true},
	} {
		_, err := repo.CreateAlert(ctx, a)
		require.NoError(t, err)
	}

	active, err := repo.GetActiveAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "on-1", active[0].ID)
	assert.Equal(t, "on-2", active[1].ID)
}

func TestUpdateFieldWrites(t *testing.T) {
	backend := storage.NewMemory()
	repo := newRepo(t, backend)
	ctx := context.Background()

	_, err := repo.CreateAlert(ctx, models.Alert{
		ID: "a1", Asset: "BTC", Condition: models.ConditionAbove, TriggerValue: 100, Enabled: true,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateAlertEvaluatedValue(ctx, "a1", 95.5))
	require.NoError(t, repo.UpdateAlertLevel(ctx, "a1", models.LevelMedium))

	got, err := repo.GetAlert(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got.EvaluatedValue)
	assert.Equal(t, 95.5, *got.EvaluatedValue)
	assert.Equal(t, models.LevelMedium, got.Level)

	err = repo.UpdateAlertLevel(ctx, "missing", models.LevelLow)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteCapability(t *testing.T) {
	plain := newRepo(t, plainBackend{inner: storage.NewMemory()})
	err := plain.DeleteAlert(context.Background(), "a1")
	var capErr *storage.CapabilityError
	require.ErrorAs(t, err, &capErr)

	backend := storage.NewMemory()
	repo := newRepo(t, backend)
	ctx := context.Background()
	_, err = repo.CreateAlert(ctx, models.Alert{
		ID: "a1", Asset: "BTC", Condition: models.ConditionAbove, TriggerValue: 1, Enabled: true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteAlert(ctx, "a1"))

	_, err = repo.GetAlert(ctx, "a1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
