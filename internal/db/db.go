package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"residence-occupancy-backend/config"
	"residence-occupancy-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig, log *logrus.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "", "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Info("Running database migrations...")
	if err := db.AutoMigrate(
		&model.Building{},
		&model.ParkingSpot{},
		&model.Facility{},
		&model.OccupancyRecord{},
		&model.OccupancyTransition{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if cfg.EnforceSpotConstraint && db.Dialector.Name() == "postgres" {
		log.Info("Applying Postgres occupancy constraints...")
		if err := applyPostgresDDL(db); err != nil {
			log.WithError(err).Warn("Failed to apply some occupancy constraints. Continuing without them.")
		}
	}

	log.Info("Database initialization complete.")
	return db, nil
}

// applyPostgresDDL backs the one-holder-per-spot rule with partial unique
// indexes that AutoMigrate cannot express.
func applyPostgresDDL(db *gorm.DB) error {
	ddls := []string{
		// 1) a spot has at most one claiming visit or courier record
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_record_one_claim_per_spot ON occupancy_records (resource_id) " +
			"WHERE resource_kind = 'spot' AND (" +
			"(family = 'visit' AND state IN ('pending', 'active')) OR " +
			"(family = 'courier' AND state IN ('pending', 'inside')) OR " +
			"(family = 'cargo' AND state = 'received'));",

		// 2) an occupied spot names its occupant, a free one does not
		"ALTER TABLE parking_spots DROP CONSTRAINT IF EXISTS parking_spots_occupant_consistent;",
		"ALTER TABLE parking_spots ADD CONSTRAINT parking_spots_occupant_consistent " +
			"CHECK ((occupied AND occupant_id IS NOT NULL) OR (NOT occupied AND occupant_id IS NULL));",

		// 3) booking windows are non-empty and within one day
		"ALTER TABLE occupancy_records DROP CONSTRAINT IF EXISTS occupancy_records_window_valid;",
		"ALTER TABLE occupancy_records ADD CONSTRAINT occupancy_records_window_valid " +
			"CHECK (window_start IS NULL OR (window_start >= 0 AND window_end <= 1440 AND window_start < window_end));",

		// 4) lookup index for conflict checks
		"CREATE INDEX IF NOT EXISTS idx_record_booking_slot ON occupancy_records (resource_id, window_date, state) " +
			"WHERE family = 'booking';",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
