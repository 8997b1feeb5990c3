package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/guuisouza/smartlocker-backend-api/internal/model"
)

// Sentinel errors for the resolution chain. Each missing link gets its own
// error so callers can tell the operator exactly which lookup failed.
var (
	ErrNotebookNotFound = errors.New("notebook not found for tag")
	ErrCabinetNotFound  = errors.New("notebook is not allocated to a cabinet")
	ErrScheduleNotFound = errors.New("no schedule active for the room at this time")
	ErrScheduleOverlap  = errors.New("overlapping schedules for the room at this time")
	ErrMovementConflict = errors.New("open movement changed concurrently")
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	RecordScan(ctx context.Context, event *model.ScanEvent) error
	NotebookByTag(ctx context.Context, tag string) (*model.Notebook, error)
	CabinetByID(ctx context.Context, id int64) (*model.Cabinet, error)
	ActiveSchedule(ctx context.Context, roomID int64, dayOfWeek, clock string) (*model.Schedule, error)
	CloseOrOpenMovement(ctx context.Context, notebookID, scheduleID, roomID int64, ts time.Time) (MovementOutcome, *model.Movement, error)

	MovementRecords(ctx context.Context) ([]MovementRecord, error)
	OverdueMovements(ctx context.Context, cutoff time.Time) ([]OverdueLoan, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for the notification worker and tests.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// RecordScan appends one immutable scan audit row.
func (s *gormStore) RecordScan(ctx context.Context, event *model.ScanEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record scan event: %w", err)
	}
	return nil
}

// NotebookByTag resolves an NFC tag to the notebook carrying it.
func (s *gormStore) NotebookByTag(ctx context.Context, tag string) (*model.Notebook, error) {
	var notebook model.Notebook
	err := s.db.WithContext(ctx).Where("nfc_tag = ?", tag).First(&notebook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotebookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up notebook by tag: %w", err)
	}
	return &notebook, nil
}

// CabinetByID reads a cabinet row.
func (s *gormStore) CabinetByID(ctx context.Context, id int64) (*model.Cabinet, error) {
	var cabinet model.Cabinet
	err := s.db.WithContext(ctx).First(&cabinet, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCabinetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up cabinet %d: %w", id, err)
	}
	return &cabinet, nil
}

// ActiveSchedule finds the schedule covering the given weekday and clock time
// in a room. Clock values are "HH:MM:SS" strings; the stored windows use the
// same form, so the range check is a plain string compare. More than one
// match means the seed data violates the non-overlap requirement, which is
// reported instead of silently picking a row.
func (s *gormStore) ActiveSchedule(ctx context.Context, roomID int64, dayOfWeek, clock string) (*model.Schedule, error) {
	var schedules []model.Schedule
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND day_of_week = ? AND start_time <= ? AND end_time >= ?",
			roomID, dayOfWeek, clock, clock).
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query active schedule: %w", err)
	}
	switch len(schedules) {
	case 0:
		return nil, ErrScheduleNotFound
	case 1:
		return &schedules[0], nil
	default:
		return nil, fmt.Errorf("%w: room %d, %s %s", ErrScheduleOverlap, roomID, dayOfWeek, clock)
	}
}

// CloseOrOpenMovement is the single authority deciding checkout vs return.
// Inside one transaction it locks the open movement for the
// (notebook, schedule, room) triple, closes it if present, and opens a new
// one otherwise. Both writes are conditional: the close is a guarded update
// on the row found, and the open is an insert-if-absent against the partial
// unique index on open movements, so the at-most-one-open invariant holds
// even when two first scans race past the empty lookup (where FOR UPDATE
// has no row to lock).
func (s *gormStore) CloseOrOpenMovement(ctx context.Context, notebookID, scheduleID, roomID int64, ts time.Time) (MovementOutcome, *model.Movement, error) {
	var (
		outcome  MovementOutcome
		movement model.Movement
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where(
			"notebook_id = ? AND schedule_id = ? AND room_id = ? AND return_at IS NULL",
			notebookID, scheduleID, roomID,
		)
		// SQLite has no row locks; its single-writer model already
		// serializes the transaction.
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		err := q.First(&movement).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			movement = model.Movement{
				NotebookID: notebookID,
				ScheduleID: scheduleID,
				RoomID:     roomID,
				CheckoutAt: ts,
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:     []clause.Column{{Name: "notebook_id"}, {Name: "schedule_id"}, {Name: "room_id"}},
				TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("return_at IS NULL")}},
				DoNothing:   true,
			}).Create(&movement)
			if res.Error != nil {
				return fmt.Errorf("failed to open movement: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// A concurrent checkout won the insert.
				return ErrMovementConflict
			}
			outcome = OutcomeCheckout
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query open movement: %w", err)
		}

		res := tx.Model(&model.Movement{}).
			Where("id = ? AND return_at IS NULL", movement.ID).
			Update("return_at", ts)
		if res.Error != nil {
			return fmt.Errorf("failed to close movement %d: %w", movement.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrMovementConflict
		}
		movement.ReturnAt = &ts
		outcome = OutcomeReturn
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return outcome, &movement, nil
}

// MovementRecords fetches the full movement history joined with notebook,
// schedule and course reference data, oldest checkout first.
func (s *gormStore) MovementRecords(ctx context.Context) ([]MovementRecord, error) {
	var records []MovementRecord
	err := s.db.WithContext(ctx).
		Model(&model.Movement{}).
		Select("movements.id AS movement_id, movements.notebook_id, notebooks.device_name, " +
			"movements.schedule_id, schedules.discipline, schedules.day_of_week, movements.room_id, " +
			"schedules.course_id, COALESCE(courses.short_name, '') AS course_name, " +
			"COALESCE(courses.period, '') AS course_period, movements.checkout_at, movements.return_at").
		Joins("JOIN notebooks ON notebooks.id = movements.notebook_id").
		Joins("JOIN schedules ON schedules.id = movements.schedule_id").
		Joins("LEFT JOIN courses ON courses.id = schedules.course_id").
		Order("movements.checkout_at ASC, movements.id ASC").
		Scan(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movement records: %w", err)
	}
	return records, nil
}

// OverdueMovements lists open movements whose checkout is at or before the
// cutoff, joined with the fields the overdue notification needs.
func (s *gormStore) OverdueMovements(ctx context.Context, cutoff time.Time) ([]OverdueLoan, error) {
	var loans []OverdueLoan
	err := s.db.WithContext(ctx).
		Model(&model.Movement{}).
		Select("movements.id AS movement_id, notebooks.device_name, schedules.discipline, movements.checkout_at").
		Joins("JOIN notebooks ON notebooks.id = movements.notebook_id").
		Joins("JOIN schedules ON schedules.id = movements.schedule_id").
		Where("movements.return_at IS NULL AND movements.checkout_at <= ?", cutoff).
		Order("movements.checkout_at ASC").
		Scan(&loans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overdue movements: %w", err)
	}
	return loans, nil
}
