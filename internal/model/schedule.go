package model

import "time"

// WeekdayLabels are the day-of-week values stored on schedules, indexed by
// time.Weekday (Sunday first). The labels are fixed; they must match the
// seeded schedule rows byte for byte.
var WeekdayLabels = [7]string{
	"Domingo",
	"Segunda",
	"Terça",
	"Quarta",
	"Quinta",
	"Sexta",
	"Sábado",
}

// WeekdayLabel returns the stored label for a time.Weekday.
func WeekdayLabel(d time.Weekday) string {
	return WeekdayLabels[int(d)]
}

// Schedule represents a recurring weekly class window bound to a room.
// StartTime and EndTime are clock times in "HH:MM:SS" form; the window match
// compares them lexicographically, which is equivalent to a time compare for
// zero-padded clock strings.
type Schedule struct {
	ID         int64  `gorm:"primaryKey"`
	RoomID     int64  `gorm:"index;not null"`
	CourseID   *int64 `gorm:"index"`
	Discipline string `gorm:"size:128;not null"`
	DayOfWeek  string `gorm:"size:16;not null"`
	StartTime  string `gorm:"size:8;not null"`
	EndTime    string `gorm:"size:8;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Associations
	Course *Course `gorm:"foreignKey:CourseID"`
}

// Course represents a course a schedule may belong to, e.g. "ADS" in the
// "Noturno" period.
type Course struct {
	ID        int64  `gorm:"primaryKey"`
	ShortName string `gorm:"uniqueIndex;size:64;not null"`
	Period    string `gorm:"size:32;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
