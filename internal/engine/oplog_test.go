package engine

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameconsole-backend/internal/model"
)

func TestLogOperation_AppendsAndReturnsEntry(t *testing.T) {
	state := &model.State{} // Operations starts nil, lazily grown.

	entry := LogOperation(state, model.OpReservationCreated, map[string]any{
		"reservationId": "r1",
	})

	require.Len(t, state.Operations, 1)
	assert.Equal(t, entry, state.Operations[0])
	assert.Equal(t, model.OpReservationCreated, entry.Type)
	assert.Equal(t, "r1", entry.Details["reservationId"])

	_, err := time.Parse(time.RFC3339, entry.Timestamp)
	assert.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^op_\d+_[a-z0-9]{9}$`), entry.ID)
}

func TestLogOperation_BoundedToMaxEntries(t *testing.T) {
	state := &model.State{}
	now := time.Date(2026, 2, 14, 15, 0, 0, 0, time.UTC)

	for i := 0; i < MaxOperations+1; i++ {
		LogOperationAt(state, model.OpReservationCreated, map[string]any{
			"n": i,
		}, now.Add(time.Duration(i)*time.Second))
	}

	require.Len(t, state.Operations, MaxOperations)
	assert.Equal(t, 1, state.Operations[0].Details["n"], "oldest entry evicted")
	assert.Equal(t, MaxOperations, state.Operations[len(state.Operations)-1].Details["n"])
}

func TestNewOperationID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := newOperationID(now)
		if seen[id] {
			t.Fatalf("duplicate operation id %s", id)
		}
		seen[id] = true
	}
}
