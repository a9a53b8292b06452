package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gameconsole-backend/internal/engine"
	"gameconsole-backend/internal/model"
)

// GetConsoles handles GET /api/consoles: a reconcile-then-serve pass over the
// whole store, so the response always reflects expired reservations.
func (h *Handler) GetConsoles(c *gin.Context) {
	state, err := h.updateReconciled(c.Request.Context(), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state.Consoles)
}

// GetReservations handles GET /api/reservations.
func (h *Handler) GetReservations(c *gin.Context) {
	state, err := h.updateReconciled(c.Request.Context(), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	if state.Reservations == nil {
		state.Reservations = []model.Reservation{}
	}
	c.JSON(http.StatusOK, state.Reservations)
}

// SetConsoleDisabled handles POST /api/consoles/:id/disable and /enable.
// A manual disable survives reconciliation until explicitly cleared here.
func (h *Handler) SetConsoleDisabled(disabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		state, err := h.updateReconciled(c.Request.Context(), func(state *model.State) error {
			console := state.ConsoleByID(id)
			if console == nil {
				return errStatus(http.StatusNotFound, "console not found")
			}
			if console.ManuallyDisabled == disabled {
				return nil // already in the requested state, no log entry
			}
			console.ManuallyDisabled = disabled

			opType := model.OpConsoleEnabled
			if disabled {
				opType = model.OpConsoleDisabled
			}
			engine.LogOperation(state, opType, map[string]any{
				"consoleId":   console.ID,
				"consoleName": console.Name,
			})
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, state.ConsoleByID(id))
	}
}
