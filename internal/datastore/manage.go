package datastore

import (
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/herdwatch/herdwatch-go/internal/errors"
	"github.com/herdwatch/herdwatch-go/internal/logging"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow. Migration batch queries can take close to a second.
const DefaultSlowQueryThreshold = 1 * time.Second

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             DefaultSlowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// dbLogger returns a service logger for database operations.
func dbLogger(dbType string) *slog.Logger {
	logger := logging.ForService("datastore")
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("db", dbType)
}

// performAutoMigration runs GORM auto-migration for all persisted models.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&TestSample{}, &MonitoringRun{}, &IndicatorRecord{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Build()
	}

	if debug {
		dbLogger(dbType).Debug("auto-migration completed", "connection", connectionInfo)
	}
	return nil
}
