package model

import "time"

// Movement represents one checkout/return cycle of a notebook against the
// schedule that was active when it was scanned. ReturnAt is nil while the
// loan is outstanding; at most one open movement may exist per
// (notebook, schedule, room) triple at any time.
type Movement struct {
	ID         int64      `gorm:"primaryKey"`
	NotebookID int64      `gorm:"index;not null"`
	ScheduleID int64      `gorm:"index;not null"`
	RoomID     int64      `gorm:"index;not null"`
	CheckoutAt time.Time  `gorm:"index;not null"`
	ReturnAt   *time.Time `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UsageMinutes returns the wall-clock loan duration in fractional minutes,
// or 0 while the movement is still open.
func (m Movement) UsageMinutes() float64 {
	if m.ReturnAt == nil {
		return 0
	}
	return m.ReturnAt.Sub(m.CheckoutAt).Minutes()
}
