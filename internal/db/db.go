package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guuisouza/smartlocker-backend-api/config"
	"github.com/guuisouza/smartlocker-backend-api/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return gormDB, nil
}

// Migrate runs the schema migrations for every persisted entity. It is split
// out from Init so tests can run it against an in-memory database.
func Migrate(gormDB *gorm.DB) error {
	err := gormDB.AutoMigrate(
		&model.Room{},
		&model.Course{},
		&model.Cabinet{},
		&model.Schedule{},
		&model.Notebook{},
		&model.Movement{},
		&model.ScanEvent{},
		&model.User{},
		&model.PushSubscription{},
	)
	if err != nil {
		return err
	}

	// At most one open movement per (notebook, schedule, room): the scan
	// resolution relies on this index for its insert-if-absent checkout.
	return gormDB.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_movements_open_cycle " +
			"ON movements (notebook_id, schedule_id, room_id) WHERE return_at IS NULL",
	).Error
}
