package model

import "time"

// PushSubscription holds a browser push subscription of a manager who wants
// to be alerted about notebooks kept out past the overdue threshold.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
