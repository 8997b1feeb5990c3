package model

import "time"

// Notebook represents a trackable notebook device identified by an NFC tag.
// CabinetID is nil while the device is not allocated to any locker.
type Notebook struct {
	ID         int64  `gorm:"primaryKey"`
	NfcTag     string `gorm:"uniqueIndex;size:64;not null"`
	DeviceName string `gorm:"uniqueIndex;size:128;not null"`
	CabinetID  *int64 `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
