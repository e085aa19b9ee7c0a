package model

import "time"

// Building groups the parking spots of one residential block.
type Building struct {
	ID        string    `gorm:"primaryKey;size:64"` // Upstream ID
	SiteID    string    `gorm:"index;size:64;not null"`
	Name      string    `gorm:"size:128;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Spots []ParkingSpot `gorm:"foreignKey:BuildingID;constraint:OnDelete:CASCADE"`
}

// ParkingSpot is a discrete resource: either free or held by exactly one record.
type ParkingSpot struct {
	ID         string  `gorm:"primaryKey;size:64"` // Upstream ID
	BuildingID string  `gorm:"uniqueIndex:idx_spot_location;size:64;not null"`
	Floor      int     `gorm:"uniqueIndex:idx_spot_location;not null"`
	Code       string  `gorm:"uniqueIndex:idx_spot_location;size:32;not null"`
	Label      string  `gorm:"size:64"`
	Seq        int
	Occupied   bool    `gorm:"not null;default:false"`
	OccupantID *string `gorm:"size:36"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
