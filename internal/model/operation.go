package model

// OperationType identifies a kind of state transition in the audit log.
type OperationType string

const (
	OpReservationCreated       OperationType = "reservation_created"
	OpReservationCancelled     OperationType = "reservation_cancelled"
	OpReservationValidated     OperationType = "reservation_validated"
	OpReservationAutoCancelled OperationType = "reservation_auto_cancelled"
	OpConsoleDisabled          OperationType = "console_disabled"
	OpConsoleEnabled           OperationType = "console_enabled"
)

// Operation is a single append-only audit log entry. Seq records insertion
// order so the bounded log survives a database round-trip intact.
type Operation struct {
	Seq       int64          `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string         `gorm:"uniqueIndex;size:64;not null" json:"id"`
	Type      OperationType  `gorm:"size:64;not null" json:"type"`
	Timestamp string         `gorm:"size:64;not null" json:"timestamp"`
	Details   map[string]any `gorm:"serializer:json" json:"details"`
}
