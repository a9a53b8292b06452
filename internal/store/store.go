package store

import (
	"context"
	"fmt"
	"log"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gameconsole-backend/config"
	"gameconsole-backend/internal/engine"
	"gameconsole-backend/internal/model"
)

// Store defines the persistence operations over the reservation store.
//
// Update is the only safe way to run a read-modify-write cycle: it holds the
// store's writer lock for the whole load-mutate-save pass, so two overlapping
// reconcile cycles can never overwrite each other's changes.
type Store interface {
	DB() *gorm.DB
	Load(ctx context.Context) (*model.State, error)
	Save(ctx context.Context, state *model.State) error
	Update(ctx context.Context, fn func(state *model.State) error) error
	Seed(ctx context.Context, seed *config.SeedConfig) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for collaborators that query outside
// the snapshot model (subscriptions, notification pool).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Load assembles the full in-memory state from the database. Reservations
// come back in creation order so "first active reservation wins" keeps the
// same meaning across restarts; operations come back in append order.
func (s *gormStore) Load(ctx context.Context) (*model.State, error) {
	state := &model.State{}

	if err := s.db.WithContext(ctx).Order("id").Find(&state.Consoles).Error; err != nil {
		return nil, fmt.Errorf("failed to load consoles: %w", err)
	}
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&state.Reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	if err := s.db.WithContext(ctx).Order("seq").Find(&state.Operations).Error; err != nil {
		return nil, fmt.Errorf("failed to load operations: %w", err)
	}

	var numbers []model.AllowedScanNumber
	if err := s.db.WithContext(ctx).Order("created_at, value").Find(&numbers).Error; err != nil {
		return nil, fmt.Errorf("failed to load allowed scan numbers: %w", err)
	}
	for _, n := range numbers {
		state.AllowedScanNumbers = append(state.AllowedScanNumbers, n.Value)
	}

	return state, nil
}

// Save writes the whole snapshot back transactionally: consoles upserted,
// vanished reservations deleted, new operations appended and the audit log
// trimmed past its cap, the whitelist replaced only when it changed.
func (s *gormStore) Save(ctx context.Context, state *model.State) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveConsoles(tx, state.Consoles); err != nil {
			return err
		}
		if err := saveReservations(tx, state.Reservations); err != nil {
			return err
		}
		if err := saveOperations(tx, state.Operations); err != nil {
			return err
		}
		return saveScanNumbers(tx, state.AllowedScanNumbers)
	})
}

// Update runs fn over a freshly loaded state and persists the result, holding
// the writer lock for the whole cycle.
func (s *gormStore) Update(ctx context.Context, fn func(state *model.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return s.Save(ctx, state)
}

// Seed installs the fixed console list and the scan-number whitelist when the
// corresponding tables are empty. Existing rows are left untouched.
func (s *gormStore) Seed(ctx context.Context, seed *config.SeedConfig) error {
	var consoleCount int64
	if err := s.db.WithContext(ctx).Model(&model.Console{}).Count(&consoleCount).Error; err != nil {
		return fmt.Errorf("failed to count consoles: %w", err)
	}
	if consoleCount == 0 {
		consoles := make([]model.Console, 0, len(seed.Consoles))
		for _, c := range seed.Consoles {
			consoles = append(consoles, model.Console{
				ID:               c.ID,
				Name:             c.Name,
				Type:             c.Type,
				IsAvailable:      true,
				AllowedDurations: c.AllowedDurations,
			})
		}
		log.Printf("Seeding %d consoles...", len(consoles))
		if err := s.db.WithContext(ctx).Create(&consoles).Error; err != nil {
			return fmt.Errorf("failed to seed consoles: %w", err)
		}
	}

	var numberCount int64
	if err := s.db.WithContext(ctx).Model(&model.AllowedScanNumber{}).Count(&numberCount).Error; err != nil {
		return fmt.Errorf("failed to count allowed scan numbers: %w", err)
	}
	if numberCount == 0 {
		numbers := make([]model.AllowedScanNumber, 0, len(seed.AllowedScanNumbers))
		for _, v := range seed.AllowedScanNumbers {
			numbers = append(numbers, model.AllowedScanNumber{Value: v})
		}
		log.Printf("Seeding %d allowed scan numbers...", len(numbers))
		if err := s.db.WithContext(ctx).Create(&numbers).Error; err != nil {
			return fmt.Errorf("failed to seed allowed scan numbers: %w", err)
		}
	}

	return nil
}

func saveConsoles(tx *gorm.DB, consoles []model.Console) error {
	if len(consoles) == 0 {
		return nil
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "type", "is_available", "manually_disabled",
			"current_reservation", "allowed_durations", "updated_at",
		}),
	}).Create(&consoles).Error; err != nil {
		return fmt.Errorf("failed to upsert consoles: %w", err)
	}
	return nil
}

func saveReservations(tx *gorm.DB, reservations []model.Reservation) error {
	if len(reservations) == 0 {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&model.Reservation{}).Error; err != nil {
			return fmt.Errorf("failed to clear reservations: %w", err)
		}
		return nil
	}

	ids := make([]string, len(reservations))
	for i, r := range reservations {
		ids[i] = r.ID
	}
	if err := tx.Where("id NOT IN ?", ids).Delete(&model.Reservation{}).Error; err != nil {
		return fmt.Errorf("failed to delete vanished reservations: %w", err)
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"console_id", "user_name", "start_date", "end_date", "is_validated", "updated_at",
		}),
	}).Create(&reservations).Error; err != nil {
		return fmt.Errorf("failed to upsert reservations: %w", err)
	}
	return nil
}

func saveOperations(tx *gorm.DB, operations []model.Operation) error {
	// Entries loaded from the database already carry a Seq; only fresh
	// appends (Seq == 0) are inserted.
	var fresh []model.Operation
	for _, op := range operations {
		if op.Seq == 0 {
			fresh = append(fresh, op)
		}
	}
	if len(fresh) > 0 {
		if err := tx.Create(&fresh).Error; err != nil {
			return fmt.Errorf("failed to append operations: %w", err)
		}
	}

	var count int64
	if err := tx.Model(&model.Operation{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count operations: %w", err)
	}
	if count > engine.MaxOperations {
		var cutoff model.Operation
		if err := tx.Model(&model.Operation{}).
			Order("seq DESC").
			Offset(engine.MaxOperations - 1).
			First(&cutoff).Error; err != nil {
			return fmt.Errorf("failed to find operation log cutoff: %w", err)
		}
		if err := tx.Where("seq < ?", cutoff.Seq).Delete(&model.Operation{}).Error; err != nil {
			return fmt.Errorf("failed to trim operation log: %w", err)
		}
	}
	return nil
}

func saveScanNumbers(tx *gorm.DB, values []string) error {
	if len(values) == 0 {
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&model.AllowedScanNumber{}).Error
	}

	if err := tx.Where("value NOT IN ?", values).Delete(&model.AllowedScanNumber{}).Error; err != nil {
		return fmt.Errorf("failed to delete removed scan numbers: %w", err)
	}

	numbers := make([]model.AllowedScanNumber, 0, len(values))
	for _, v := range values {
		numbers = append(numbers, model.AllowedScanNumber{Value: v})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&numbers).Error; err != nil {
		return fmt.Errorf("failed to upsert scan numbers: %w", err)
	}
	return nil
}
