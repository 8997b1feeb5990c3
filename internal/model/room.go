package model

import "time"

// Room represents a classroom that hosts scheduled classes and cabinets.
type Room struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Schedules []Schedule `gorm:"foreignKey:RoomID"`
	Cabinets  []Cabinet  `gorm:"foreignKey:RoomID"`
}
