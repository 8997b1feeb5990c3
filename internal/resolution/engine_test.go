package resolution

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guuisouza/smartlocker-backend-api/internal/db"
	"github.com/guuisouza/smartlocker-backend-api/internal/model"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return store.NewGormStore(gormDB)
}

// seedClassroom sets up one room with a cabinet, a course and a Monday
// 08:00-10:00 schedule, plus a notebook assigned to the cabinet.
func seedClassroom(t *testing.T, s store.Store) (room model.Room, schedule model.Schedule, notebook model.Notebook) {
	t.Helper()
	gdb := s.DB()

	room = model.Room{Name: "Sala 101"}
	require.NoError(t, gdb.Create(&room).Error)

	cabinet := model.Cabinet{RoomID: room.ID, Label: "Armário A"}
	require.NoError(t, gdb.Create(&cabinet).Error)

	course := model.Course{ShortName: "ADS", Period: "Noturno"}
	require.NoError(t, gdb.Create(&course).Error)

	schedule = model.Schedule{
		RoomID:     room.ID,
		CourseID:   &course.ID,
		Discipline: "Banco de Dados",
		DayOfWeek:  "Segunda",
		StartTime:  "08:00:00",
		EndTime:    "10:00:00",
	}
	require.NoError(t, gdb.Create(&schedule).Error)

	notebook = model.Notebook{NfcTag: "T1", DeviceName: "NB-A1", CabinetID: &cabinet.ID}
	require.NoError(t, gdb.Create(&notebook).Error)
	return room, schedule, notebook
}

func TestResolveCheckoutThenReturn(t *testing.T) {
	s := newTestStore(t)
	_, schedule, notebook := seedClassroom(t, s)
	engine := NewEngine(s)
	ctx := context.Background()

	// 2025-06-02 is a Monday inside the 08:00-10:00 window.
	first, err := engine.Resolve(ctx, "T1", time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, store.OutcomeCheckout, first.Outcome)
	assert.Equal(t, notebook.ID, first.Movement.NotebookID)
	assert.Equal(t, schedule.ID, first.Movement.ScheduleID)
	assert.Nil(t, first.Movement.ReturnAt)

	second, err := engine.Resolve(ctx, "T1", time.Date(2025, 6, 2, 9, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, store.OutcomeReturn, second.Outcome)
	assert.Equal(t, first.Movement.ID, second.Movement.ID)
	require.NotNil(t, second.Movement.ReturnAt)
	assert.InDelta(t, 75, second.Movement.UsageMinutes(), 1e-9)

	// A third scan in the same session opens a fresh cycle.
	third, err := engine.Resolve(ctx, "T1", time.Date(2025, 6, 2, 9, 50, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, store.OutcomeCheckout, third.Outcome)
	assert.NotEqual(t, first.Movement.ID, third.Movement.ID)
}

func TestResolveNeverLeavesTwoOpenMovements(t *testing.T) {
	s := newTestStore(t)
	seedClassroom(t, s)
	engine := NewEngine(s)
	ctx := context.Background()

	ts := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		_, err := engine.Resolve(ctx, "T1", ts.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)

		var open int64
		require.NoError(t, s.DB().Model(&model.Movement{}).Where("return_at IS NULL").Count(&open).Error)
		assert.LessOrEqual(t, open, int64(1))
	}
}

func TestResolveConcurrentScansKeepOneOpenMovement(t *testing.T) {
	s := newTestStore(t)
	seedClassroom(t, s)

	// One connection serializes the writers the way postgres row locks and
	// the open-movement unique index do; the invariant must hold for every
	// arrival order.
	sqlDB, err := s.DB().DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	engine := NewEngine(s)
	ts := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)

	const scans = 8
	var wg sync.WaitGroup
	errs := make(chan error, scans)
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Resolve(context.Background(), "T1", ts)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// A racer losing the insert reports the conflict; any other error is a
	// real failure.
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, store.ErrMovementConflict)
		}
	}

	var open int64
	require.NoError(t, s.DB().Model(&model.Movement{}).Where("return_at IS NULL").Count(&open).Error)
	assert.LessOrEqual(t, open, int64(1))

	// Every movement row is a consistent cycle: closed, or the single open one.
	var total, closed int64
	require.NoError(t, s.DB().Model(&model.Movement{}).Count(&total).Error)
	require.NoError(t, s.DB().Model(&model.Movement{}).Where("return_at IS NOT NULL").Count(&closed).Error)
	assert.Equal(t, total, closed+open)
}

func TestResolveUnknownTag(t *testing.T) {
	s := newTestStore(t)
	seedClassroom(t, s)
	engine := NewEngine(s)

	_, err := engine.Resolve(context.Background(), "missing", time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC))
	assert.ErrorIs(t, err, store.ErrNotebookNotFound)
}

func TestResolveUnassignedNotebook(t *testing.T) {
	s := newTestStore(t)
	seedClassroom(t, s)
	require.NoError(t, s.DB().Create(&model.Notebook{NfcTag: "T2", DeviceName: "NB-A2"}).Error)
	engine := NewEngine(s)

	_, err := engine.Resolve(context.Background(), "T2", time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC))
	assert.ErrorIs(t, err, store.ErrCabinetNotFound)
}

func TestResolveNoActiveSchedule(t *testing.T) {
	s := newTestStore(t)
	seedClassroom(t, s)
	engine := NewEngine(s)
	ctx := context.Background()

	// Right weekday, outside the window.
	_, err := engine.Resolve(ctx, "T1", time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, store.ErrScheduleNotFound)

	// Right clock time, wrong weekday (Tuesday).
	_, err = engine.Resolve(ctx, "T1", time.Date(2025, 6, 3, 8, 30, 0, 0, time.UTC))
	assert.ErrorIs(t, err, store.ErrScheduleNotFound)
}

func TestResolveWindowBoundariesInclusive(t *testing.T) {
	s := newTestStore(t)
	seedClassroom(t, s)
	engine := NewEngine(s)
	ctx := context.Background()

	start, err := engine.Resolve(ctx, "T1", time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, store.OutcomeCheckout, start.Outcome)

	end, err := engine.Resolve(ctx, "T1", time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, store.OutcomeReturn, end.Outcome)
}

func TestResolveOverlappingSchedules(t *testing.T) {
	s := newTestStore(t)
	room, _, _ := seedClassroom(t, s)

	// A second window covering the same Monday morning is a data defect.
	require.NoError(t, s.DB().Create(&model.Schedule{
		RoomID:     room.ID,
		Discipline: "Redes",
		DayOfWeek:  "Segunda",
		StartTime:  "09:00:00",
		EndTime:    "11:00:00",
	}).Error)
	engine := NewEngine(s)

	_, err := engine.Resolve(context.Background(), "T1", time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC))
	assert.ErrorIs(t, err, store.ErrScheduleOverlap)

	// Outside the overlapping stretch the single match still resolves.
	res, err := engine.Resolve(context.Background(), "T1", time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, store.OutcomeCheckout, res.Outcome)
}
