package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gameconsole-backend/internal/engine"
	"gameconsole-backend/internal/model"
)

type createReservationRequest struct {
	ConsoleID       string `json:"consoleId" binding:"required"`
	UserName        string `json:"userName" binding:"required"`
	DurationMinutes int    `json:"durationMinutes" binding:"required"`
}

// CreateReservation handles POST /api/reservations. The collision check
// lives here, not in the engine: at most one active reservation per console
// is enforced at creation time.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var created model.Reservation
	_, err := h.updateReconciled(c.Request.Context(), func(state *model.State) error {
		if !state.IsScanNumberAllowed(req.UserName) {
			return errStatus(http.StatusForbidden, "scan number is not on the whitelist")
		}

		console := state.ConsoleByID(req.ConsoleID)
		if console == nil {
			return errStatus(http.StatusNotFound, "console not found")
		}
		if !slices.Contains(console.AllowedDurations, req.DurationMinutes) {
			return errStatus(http.StatusBadRequest, "duration is not allowed for this console")
		}
		if !console.IsAvailable {
			return errStatus(http.StatusConflict, "console is not available")
		}

		now := time.Now().UTC()
		created = model.Reservation{
			ID:        uuid.NewString(),
			ConsoleID: console.ID,
			UserName:  req.UserName,
			StartDate: now.Format(time.RFC3339),
			EndDate:   now.Add(time.Duration(req.DurationMinutes) * time.Minute).Format(time.RFC3339),
		}
		state.Reservations = append(state.Reservations, created)

		engine.LogOperation(state, model.OpReservationCreated, map[string]any{
			"reservationId":   created.ID,
			"consoleId":       console.ID,
			"consoleName":     console.Name,
			"userName":        created.UserName,
			"durationMinutes": req.DurationMinutes,
		})
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ValidateReservation handles POST /api/reservations/:id/validate. A
// reservation already swept by the grace-period pass is simply gone, so
// validating too late yields a 404.
func (h *Handler) ValidateReservation(c *gin.Context) {
	id := c.Param("id")

	var validated model.Reservation
	_, err := h.updateReconciled(c.Request.Context(), func(state *model.State) error {
		r := state.ReservationByID(id)
		if r == nil {
			return errStatus(http.StatusNotFound, "reservation not found")
		}
		if !r.IsValidated {
			r.IsValidated = true
			engine.LogOperation(state, model.OpReservationValidated, map[string]any{
				"reservationId": r.ID,
				"consoleId":     r.ConsoleID,
				"userName":      r.UserName,
			})
		}
		validated = *r
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, validated)
}

// CancelReservation handles DELETE /api/reservations/:id.
func (h *Handler) CancelReservation(c *gin.Context) {
	id := c.Param("id")

	_, err := h.updateReconciled(c.Request.Context(), func(state *model.State) error {
		idx := -1
		for i := range state.Reservations {
			if state.Reservations[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errStatus(http.StatusNotFound, "reservation not found")
		}

		r := state.Reservations[idx]
		state.Reservations = append(state.Reservations[:idx], state.Reservations[idx+1:]...)

		engine.LogOperation(state, model.OpReservationCancelled, map[string]any{
			"reservationId": r.ID,
			"consoleId":     r.ConsoleID,
			"userName":      r.UserName,
		})
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
