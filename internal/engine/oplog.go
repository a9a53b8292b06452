package engine

import (
	"fmt"
	"math/rand"
	"time"

	"gameconsole-backend/internal/model"
)

// MaxOperations bounds the audit log; the oldest entries are evicted once
// the bound is exceeded.
const MaxOperations = 1000

const opIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// LogOperation appends a timestamped audit entry to the state's operation log
// and returns it. The log is trimmed from the front past MaxOperations.
func LogOperation(state *model.State, opType model.OperationType, details map[string]any) model.Operation {
	return LogOperationAt(state, opType, details, time.Now().UTC())
}

// LogOperationAt is LogOperation with an injected clock.
func LogOperationAt(state *model.State, opType model.OperationType, details map[string]any, now time.Time) model.Operation {
	entry := model.Operation{
		ID:        newOperationID(now),
		Type:      opType,
		Timestamp: now.UTC().Format(time.RFC3339),
		Details:   details,
	}

	state.Operations = append(state.Operations, entry)
	if excess := len(state.Operations) - MaxOperations; excess > 0 {
		state.Operations = state.Operations[excess:]
	}
	return entry
}

func newOperationID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = opIDAlphabet[rand.Intn(len(opIDAlphabet))]
	}
	return fmt.Sprintf("op_%d_%s", now.UnixMilli(), suffix)
}
