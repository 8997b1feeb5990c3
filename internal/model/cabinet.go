package model

import "time"

// Cabinet represents a physical locker holding notebooks inside a room.
type Cabinet struct {
	ID        int64  `gorm:"primaryKey"`
	RoomID    int64  `gorm:"index;not null"`
	Label     string `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Notebooks []Notebook `gorm:"foreignKey:CabinetID"`
}
