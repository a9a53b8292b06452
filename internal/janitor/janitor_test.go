package janitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gameconsole-backend/config"
	"gameconsole-backend/internal/db"
	"gameconsole-backend/internal/model"
	"gameconsole-backend/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Janitor.Enabled = true

	appStore := store.NewGormStore(gormDB)
	require.NoError(t, appStore.Seed(context.Background(), &cfg.Seed))

	return NewService(cfg, appStore), appStore
}

func TestRunOnce_SweepsAndDispatches(t *testing.T) {
	svc, appStore := newTestService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, appStore.Update(ctx, func(state *model.State) error {
		state.Reservations = append(state.Reservations, model.Reservation{
			ID:        "stale",
			ConsoleID: "1",
			UserName:  "8012908",
			StartDate: now.Add(-10 * time.Minute).Format(time.RFC3339),
			EndDate:   now.Add(20 * time.Minute).Format(time.RFC3339),
		})
		c := state.ConsoleByID("1")
		c.IsAvailable = false
		c.CurrentReservation = &state.Reservations[len(state.Reservations)-1]
		return nil
	}))

	svc.RunOnce(ctx)

	state, err := appStore.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.ReservationByID("stale"))
	c := state.ConsoleByID("1")
	require.NotNil(t, c)
	assert.True(t, c.IsAvailable)
	assert.Nil(t, c.CurrentReservation)

	// The freed console was handed to the notification pool.
	select {
	case consoleID := <-svc.WorkerPool().Jobs():
		assert.Equal(t, "1", consoleID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for the freed console to be dispatched")
	}
}

func TestRunOnce_QuiescentStoreDispatchesNothing(t *testing.T) {
	svc, appStore := newTestService(t)
	ctx := context.Background()

	svc.RunOnce(ctx)

	state, err := appStore.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Operations)

	select {
	case consoleID := <-svc.WorkerPool().Jobs():
		t.Fatalf("unexpected dispatch for console %s", consoleID)
	default:
	}
}
