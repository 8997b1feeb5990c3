package resolution

import (
	"context"
	"time"

	"github.com/guuisouza/smartlocker-backend-api/internal/model"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

// Result describes what a resolved scan did.
type Result struct {
	Outcome  store.MovementOutcome
	Movement *model.Movement
	Schedule *model.Schedule
	Notebook *model.Notebook
}

// Engine turns a raw tag scan into a checkout or a return against the
// schedule active in the notebook's room at the scan time. Each call touches
// exactly one movement row; every failure is terminal and surfaced to the
// caller so an operator can reconcile the physical device.
type Engine struct {
	store store.Store
}

// NewEngine creates a resolution engine on top of a store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Resolve walks tag -> notebook -> cabinet -> room, matches the schedule
// window containing ts, and then closes the open movement for the
// (notebook, schedule, room) triple or opens a new one.
func (e *Engine) Resolve(ctx context.Context, tag string, ts time.Time) (*Result, error) {
	notebook, err := e.store.NotebookByTag(ctx, tag)
	if err != nil {
		return nil, err
	}

	if notebook.CabinetID == nil {
		return nil, store.ErrCabinetNotFound
	}
	cabinet, err := e.store.CabinetByID(ctx, *notebook.CabinetID)
	if err != nil {
		return nil, err
	}

	day := model.WeekdayLabel(ts.Weekday())
	clock := ts.Format("15:04:05")

	schedule, err := e.store.ActiveSchedule(ctx, cabinet.RoomID, day, clock)
	if err != nil {
		return nil, err
	}

	outcome, movement, err := e.store.CloseOrOpenMovement(ctx, notebook.ID, schedule.ID, cabinet.RoomID, ts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Outcome:  outcome,
		Movement: movement,
		Schedule: schedule,
		Notebook: notebook,
	}, nil
}
