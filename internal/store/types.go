package store

import "time"

// MovementOutcome says what a resolved scan did to the movement history.
type MovementOutcome string

const (
	OutcomeCheckout MovementOutcome = "checkout"
	OutcomeReturn   MovementOutcome = "return"
)

// MovementRecord is one movement row joined with its notebook, schedule and
// (optional) course reference data. The analytics facets operate on slices
// of these, fetched once per report.
type MovementRecord struct {
	MovementID   int64      `json:"movement_id"`
	NotebookID   int64      `json:"notebook_id"`
	DeviceName   string     `json:"device_name"`
	ScheduleID   int64      `json:"schedule_id"`
	Discipline   string     `json:"discipline"`
	DayOfWeek    string     `json:"day_of_week"`
	RoomID       int64      `json:"room_id"`
	CourseID     *int64     `json:"course_id"`
	CourseName   string     `json:"course_name"`
	CoursePeriod string     `json:"course_period"`
	CheckoutAt   time.Time  `json:"checkout_at"`
	ReturnAt     *time.Time `json:"return_at"`
}

// Returned reports whether the cycle is closed.
func (r MovementRecord) Returned() bool {
	return r.ReturnAt != nil
}

// UsageMinutes returns the loan duration in fractional minutes, or 0 while
// the movement is still open.
func (r MovementRecord) UsageMinutes() float64 {
	if r.ReturnAt == nil {
		return 0
	}
	return r.ReturnAt.Sub(r.CheckoutAt).Minutes()
}

// OverdueLoan is an open movement that crossed the overdue threshold,
// joined with the fields the notification message needs.
type OverdueLoan struct {
	MovementID int64
	DeviceName string
	Discipline string
	CheckoutAt time.Time
}
