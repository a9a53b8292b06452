package janitor

import (
	"context"
	"log"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"gameconsole-backend/config"
	"gameconsole-backend/internal/engine"
	"gameconsole-backend/internal/model"
	"gameconsole-backend/internal/notification"
	"gameconsole-backend/internal/store"
)

// Service runs the background reconcile loop: between HTTP requests it keeps
// expiring stale reservations and freeing consoles, so kiosk displays and
// push subscribers do not wait for the next API call.
type Service struct {
	cfg        *config.Config
	store      store.Store
	workerPool *notification.WorkerPool
}

// NewService creates and initializes a new janitor service.
func NewService(cfg *config.Config, s store.Store) *Service {
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	return &Service{
		cfg:        cfg,
		store:      s,
		workerPool: notification.NewWorkerPool(cfg.WorkerPool.Size, s.DB(), &webpushOptions),
	}
}

// WorkerPool exposes the notification pool so the API layer can dispatch the
// consoles its own reconcile passes free up.
func (s *Service) WorkerPool() *notification.WorkerPool {
	return s.workerPool
}

// Run starts the reconcile loop.
func (s *Service) Run(ctx context.Context) {
	// The pool serves API-triggered notifications even when the loop is off.
	s.workerPool.Start(ctx)

	if !s.cfg.Janitor.Enabled {
		log.Println("Janitor is disabled. Not starting the reconcile loop.")
		return
	}
	log.Println("Starting janitor service...")

	s.RunOnce(ctx)

	timer := time.NewTimer(s.cfg.Janitor.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Janitor service shutting down.")
			return
		case <-timer.C:
			s.RunOnce(ctx)
			timer.Reset(s.cfg.Janitor.Interval)
		}
	}
}

// RunOnce performs a single locked reconcile pass and dispatches
// notifications for every console that became available.
func (s *Service) RunOnce(ctx context.Context) {
	var freed []string
	err := s.store.Update(ctx, func(state *model.State) error {
		freed = engine.Reconcile(state, state.ManualDisables(), time.Now().UTC(), nil)
		return nil
	})
	if err != nil {
		log.Printf("Janitor reconcile pass failed: %v", err)
		return
	}

	for _, consoleID := range freed {
		s.workerPool.Dispatch(consoleID)
	}
}
