package model

import "time"

// AllowedScanNumber is one entry of the scanned-identifier whitelist checked
// before a reservation may be created.
type AllowedScanNumber struct {
	Value     string    `gorm:"primaryKey;size:64" json:"value"`
	CreatedAt time.Time `json:"-"`
}
