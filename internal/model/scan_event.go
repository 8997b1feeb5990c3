package model

import "time"

// ScanEvent is the immutable audit record of a single physical tag read.
// One row is written per scan, before resolution runs, and it is kept even
// when the scan cannot be resolved into a movement.
type ScanEvent struct {
	ID         string    `gorm:"primaryKey;size:36"`
	NfcTag     string    `gorm:"index;size:64;not null"`
	CapturedAt time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
}
