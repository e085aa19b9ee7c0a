package model

import (
	"time"
)

// OccupancyRecord is the persisted form of a visit, booking, cargo or courier record.
type OccupancyRecord struct {
	ID              string     `gorm:"primaryKey;size:36"`
	Family          string     `gorm:"size:16;not null;index:idx_record_family_state,priority:1"`
	State           string     `gorm:"size:16;not null;index:idx_record_family_state,priority:2"`
	ResourceKind    string     `gorm:"size:16"`
	ResourceID      string     `gorm:"size:64;index"`
	SubjectRef      string     `gorm:"size:64"`
	SubjectName     string     `gorm:"size:256;not null"`
	Unit            string     `gorm:"size:32"`
	WindowDate      string     `gorm:"size:10;index"`
	WindowStart     *int
	WindowEnd       *int
	EntryTime       *time.Time
	ExitTime        *time.Time `gorm:"index"`
	Note            string     `gorm:"size:1024"`
	RejectionReason string     `gorm:"size:512"`
	Method          string     `gorm:"size:16"`
	LastActor       string     `gorm:"size:128"`
	CreatedAt       time.Time  `gorm:"not null;index"`
	StateChangedAt  time.Time  `gorm:"not null"`
}

// OccupancyTransition is the append-only trail of applied state changes.
type OccupancyTransition struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	RecordID  string    `gorm:"size:36;not null;index"`
	FromState string    `gorm:"size:16;not null"`
	ToState   string    `gorm:"size:16;not null"`
	Actor     string    `gorm:"size:128"`
	At        time.Time `gorm:"not null;index"`
}
