package model

import "time"

// Reservation represents a booking of a console for a time window.
// StartDate and EndDate are kept as ISO-8601 strings, the format the kiosk
// clients exchange; the engine parses them defensively.
type Reservation struct {
	ID          string `gorm:"primaryKey;size:64" json:"id"`
	ConsoleID   string `gorm:"column:console_id;index;size:64;not null" json:"consoleId"`
	UserName    string `gorm:"size:128;not null" json:"userName"`
	StartDate   string `gorm:"size:64;not null" json:"startDate"`
	EndDate     string `gorm:"size:64;not null" json:"endDate"`
	IsValidated bool   `gorm:"not null" json:"isValidated"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
