package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gameconsole-backend/internal/model"
)

// GetOperations handles GET /api/operations: the audit log, newest first.
// An optional ?limit=N caps the page size.
func (h *Handler) GetOperations(c *gin.Context) {
	state, err := h.store.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	limit := len(state.Operations)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	// Stored oldest-first; serve newest-first.
	entries := make([]model.Operation, 0, limit)
	for i := len(state.Operations) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, state.Operations[i])
	}
	c.JSON(http.StatusOK, entries)
}
