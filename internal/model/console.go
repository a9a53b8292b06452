package model

import "time"

// Console represents a bookable game console or accessory.
type Console struct {
	ID               string `gorm:"primaryKey;size:64" json:"id"`
	Name             string `gorm:"size:128;not null" json:"name"`
	Type             string `gorm:"size:64" json:"type"`
	IsAvailable      bool   `gorm:"not null" json:"isAvailable"`
	ManuallyDisabled bool   `gorm:"not null" json:"manuallyDisabled"`

	// CurrentReservation is a cached projection of the reservation currently
	// occupying this console. The reservations list is the source of truth;
	// this field is recomputed wholesale on every reconcile pass.
	CurrentReservation *Reservation `gorm:"serializer:json" json:"currentReservation"`

	// AllowedDurations lists the permitted booking lengths in minutes.
	AllowedDurations []int `gorm:"serializer:json" json:"allowedDurations"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
