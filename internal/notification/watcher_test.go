package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guuisouza/smartlocker-backend-api/config"
	"github.com/guuisouza/smartlocker-backend-api/internal/db"
	"github.com/guuisouza/smartlocker-backend-api/internal/model"
	"github.com/guuisouza/smartlocker-backend-api/internal/store"
)

func newWatcherFixture(t *testing.T) (*Watcher, store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB)
	cfg := &config.Config{}
	cfg.Watcher.Enabled = true
	cfg.Watcher.Overdue = 60 * time.Minute
	cfg.WorkerPool.Size = 4
	cfg.Analytics.Location = time.UTC

	return NewWatcher(cfg, s), s
}

// seedMovement inserts a minimal open movement with the reference rows the
// overdue query joins against.
func seedMovement(t *testing.T, s store.Store, tag string, checkoutAt time.Time) model.Movement {
	t.Helper()
	gdb := s.DB()

	room := model.Room{Name: "Sala " + tag}
	require.NoError(t, gdb.Create(&room).Error)
	cabinet := model.Cabinet{RoomID: room.ID}
	require.NoError(t, gdb.Create(&cabinet).Error)
	notebook := model.Notebook{NfcTag: tag, DeviceName: "NB-" + tag, CabinetID: &cabinet.ID}
	require.NoError(t, gdb.Create(&notebook).Error)
	schedule := model.Schedule{
		RoomID: room.ID, Discipline: "Redes", DayOfWeek: "Segunda",
		StartTime: "08:00:00", EndTime: "10:00:00",
	}
	require.NoError(t, gdb.Create(&schedule).Error)

	movement := model.Movement{
		NotebookID: notebook.ID,
		ScheduleID: schedule.ID,
		RoomID:     room.ID,
		CheckoutAt: checkoutAt,
	}
	require.NoError(t, gdb.Create(&movement).Error)
	return movement
}

func TestWatcherSweepDispatchesOverdueOnce(t *testing.T) {
	w, s := newWatcherFixture(t)
	ctx := context.Background()

	overdue := seedMovement(t, s, "T1", time.Now().Add(-2*time.Hour))
	// Fresh checkout, not yet past the threshold.
	seedMovement(t, s, "T2", time.Now().Add(-5*time.Minute))

	w.SweepOnce(ctx)

	select {
	case loan := <-w.pool.Jobs():
		assert.Equal(t, overdue.ID, loan.MovementID)
		assert.Equal(t, "NB-T1", loan.DeviceName)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for overdue dispatch")
	}

	// The same movement must not be dispatched again on the next sweep.
	w.SweepOnce(ctx)
	select {
	case loan := <-w.pool.Jobs():
		t.Fatalf("unexpected duplicate dispatch for movement %d", loan.MovementID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherForgetsReturnedMovements(t *testing.T) {
	w, s := newWatcherFixture(t)
	ctx := context.Background()

	movement := seedMovement(t, s, "T1", time.Now().Add(-2*time.Hour))

	w.SweepOnce(ctx)
	<-w.pool.Jobs()

	// Return the notebook; the tracking entry goes away on the next sweep.
	now := time.Now()
	require.NoError(t, s.DB().Model(&model.Movement{}).
		Where("id = ?", movement.ID).Update("return_at", now).Error)
	w.SweepOnce(ctx)
	assert.Empty(t, w.notified)
}
