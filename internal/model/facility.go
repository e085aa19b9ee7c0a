package model

import "time"

// Facility statuses.
const (
	FacilityOpen        = "open"
	FacilityClosed      = "closed"
	FacilityMaintenance = "maintenance"
)

// Facility is a time-ranged resource booked in windows on a given date.
type Facility struct {
	ID        string `gorm:"primaryKey;size:64"` // Upstream ID
	SiteID    string `gorm:"index;size:64;not null"`
	Name      string `gorm:"size:128;not null"`
	Capacity  int    `gorm:"not null;default:1"`
	OpensAt   string `gorm:"size:5"` // HH:MM
	ClosesAt  string `gorm:"size:5"`
	Status    string `gorm:"size:16;not null;default:open"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
