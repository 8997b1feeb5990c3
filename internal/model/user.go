package model

import "time"

// User is a manager account allowed to read the dashboard.
type User struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null"`
	Email     string `gorm:"uniqueIndex;size:128;not null"`
	Password  string `gorm:"size:128;not null" json:"-"` // bcrypt hash
	CreatedAt time.Time
	UpdatedAt time.Time
}
