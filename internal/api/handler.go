package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"gameconsole-backend/config"
	"gameconsole-backend/internal/engine"
	"gameconsole-backend/internal/model"
	"gameconsole-backend/internal/notification"
	"gameconsole-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	cfg     *config.Config
	webpush *webpush.Options
	pool    *notification.WorkerPool
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cfg *config.Config, webpushOptions *webpush.Options, pool *notification.WorkerPool) *Handler {
	return &Handler{
		store:   s,
		cfg:     cfg,
		webpush: webpushOptions,
		pool:    pool,
	}
}

// apiError carries an HTTP status through a store.Update closure.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func errStatus(status int, msg string) error {
	return &apiError{status: status, msg: msg}
}

// respondError maps an error from an Update closure onto an HTTP response.
func respondError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		c.AbortWithStatusJSON(ae.status, gin.H{"error": ae.msg})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// updateReconciled runs mutate inside a single locked load-reconcile-save
// cycle. Reconciliation runs before mutate (so handlers act on a clean store)
// and again after (so console flags reflect the mutation). Consoles freed by
// either pass are dispatched to the notification pool.
func (h *Handler) updateReconciled(ctx context.Context, mutate func(state *model.State) error) (*model.State, error) {
	var snapshot *model.State
	err := h.store.Update(ctx, func(state *model.State) error {
		now := time.Now().UTC()
		freed := engine.Reconcile(state, state.ManualDisables(), now, nil)
		if mutate != nil {
			if err := mutate(state); err != nil {
				return err
			}
			freed = append(freed, engine.Reconcile(state, state.ManualDisables(), now, nil)...)
		}
		h.dispatchFreed(freed)
		snapshot = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (h *Handler) dispatchFreed(consoleIDs []string) {
	if h.pool == nil {
		return
	}
	for _, id := range consoleIDs {
		h.pool.Dispatch(id)
	}
}
