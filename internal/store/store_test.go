package store

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
	"gameconsole-backend/internal/engine"
	"gameconsole-backend/internal/model"
)

// newTestStore opens a per-test in-memory sqlite database with migrations run.
func newTestStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return NewGormStore(gormDB)
}

func seedConfig() *config.SeedConfig {
	return &config.SeedConfig{
		Consoles: []config.SeedConsole{
			{ID: "1", Name: "Manette Switch 1", Type: "Manette Switch", AllowedDurations: []int{10, 30, 60}},
			{ID: "2", Name: "Casque VR", Type: "Casque VR", AllowedDurations: []int{10, 30}},
		},
		AllowedScanNumbers: []string{"8012908", "8012909"},
	}
}

func TestSeedAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, seedConfig()))
	// Seeding again must not duplicate anything.
	require.NoError(t, s.Seed(ctx, seedConfig()))

	state, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, state.Consoles, 2)
	assert.Equal(t, "Manette Switch 1", state.Consoles[0].Name)
	assert.True(t, state.Consoles[0].IsAvailable)
	assert.Equal(t, []int{10, 30, 60}, state.Consoles[0].AllowedDurations)
	assert.Equal(t, []string{"8012908", "8012909"}, state.AllowedScanNumbers)
	assert.Empty(t, state.Reservations)
	assert.Empty(t, state.Operations)
}

func TestUpdateRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, seedConfig()))

	now := time.Now().UTC()
	err := s.Update(ctx, func(state *model.State) error {
		state.Reservations = append(state.Reservations, model.Reservation{
			ID:        "r1",
			ConsoleID: "1",
			UserName:  "8012908",
			StartDate: now.Format(time.RFC3339),
			EndDate:   now.Add(30 * time.Minute).Format(time.RFC3339),
		})
		c := state.ConsoleByID("1")
		c.IsAvailable = false
		c.CurrentReservation = &state.Reservations[0]
		engine.LogOperation(state, model.OpReservationCreated, map[string]any{
			"reservationId": "r1",
		})
		return nil
	})
	require.NoError(t, err)

	state, err := s.Load(ctx)
	require.NoError(t, err)

	require.Len(t, state.Reservations, 1)
	assert.Equal(t, "r1", state.Reservations[0].ID)
	assert.False(t, state.Reservations[0].IsValidated)

	c := state.ConsoleByID("1")
	require.NotNil(t, c)
	assert.False(t, c.IsAvailable)
	require.NotNil(t, c.CurrentReservation, "cached reservation survives the round-trip")
	assert.Equal(t, "r1", c.CurrentReservation.ID)

	require.Len(t, state.Operations, 1)
	assert.Equal(t, model.OpReservationCreated, state.Operations[0].Type)
	assert.Equal(t, "r1", state.Operations[0].Details["reservationId"])
	assert.NotZero(t, state.Operations[0].Seq)
}

func TestSaveDeletesVanishedReservations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, seedConfig()))

	now := time.Now().UTC()
	require.NoError(t, s.Update(ctx, func(state *model.State) error {
		state.Reservations = []model.Reservation{
			{ID: "r1", ConsoleID: "1", StartDate: now.Format(time.RFC3339), EndDate: now.Add(10 * time.Minute).Format(time.RFC3339)},
			{ID: "r2", ConsoleID: "2", StartDate: now.Format(time.RFC3339), EndDate: now.Add(10 * time.Minute).Format(time.RFC3339)},
		}
		return nil
	}))

	require.NoError(t, s.Update(ctx, func(state *model.State) error {
		state.Reservations = state.Reservations[:1]
		return nil
	}))

	state, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Reservations, 1)
	assert.Equal(t, "r1", state.Reservations[0].ID)

	require.NoError(t, s.Update(ctx, func(state *model.State) error {
		state.Reservations = nil
		return nil
	}))

	state, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Reservations)
}

func TestOperationLogTrimmedInDatabase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.Update(ctx, func(state *model.State) error {
		for i := 0; i < engine.MaxOperations+5; i++ {
			engine.LogOperationAt(state, model.OpReservationCreated, map[string]any{
				"n": fmt.Sprintf("%d", i),
			}, now.Add(time.Duration(i)*time.Millisecond))
		}
		return nil
	}))

	state, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, state.Operations, engine.MaxOperations)
	assert.Equal(t, "5", state.Operations[0].Details["n"], "oldest entries evicted")
	assert.Equal(t, fmt.Sprintf("%d", engine.MaxOperations+4), state.Operations[len(state.Operations)-1].Details["n"])
}

func TestScanNumberWhitelistReplaced(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, seedConfig()))

	require.NoError(t, s.Update(ctx, func(state *model.State) error {
		state.AllowedScanNumbers = []string{"8012909", "9000001"}
		return nil
	}))

	state, err := s.Load(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"8012909", "9000001"}, state.AllowedScanNumbers)
}
