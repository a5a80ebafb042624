package datastore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/herdwatch/herdwatch-go/internal/conf"
	"github.com/herdwatch/herdwatch-go/internal/errors"
)

// Interface abstracts the persistence layer so the CLI can run against
// SQLite or MySQL.
type Interface interface {
	Open() error
	Close() error
	SaveSamples(samples []TestSample) error
	SaveRun(run *MonitoringRun) error
	GetRuns(limit int) ([]MonitoringRun, error)
	GetRunIndicators(runID uint) ([]IndicatorRecord, error)
	GetMonthlySampleCounts() ([]MonthlySampleCount, error)
}

// DataStore implements the parts of Interface shared by both databases.
type DataStore struct {
	DB *gorm.DB
}

// New creates the store matching the enabled output in settings, nil when no
// output is enabled.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// SaveSamples inserts deduplicated test samples in one transaction.
func (ds *DataStore) SaveSamples(samples []TestSample) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	if len(samples) == 0 {
		return nil
	}
	if err := ds.DB.Create(&samples).Error; err != nil {
		return errors.New(fmt.Errorf("failed to save samples: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("count", len(samples)).
			Build()
	}
	return nil
}

// SaveRun inserts a monitoring run together with its indicator records.
func (ds *DataStore) SaveRun(run *MonitoringRun) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	if err := ds.DB.Create(run).Error; err != nil {
		return errors.New(fmt.Errorf("failed to save monitoring run: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}

// GetRuns returns the most recent monitoring runs, newest first.
func (ds *DataStore) GetRuns(limit int) ([]MonitoringRun, error) {
	var runs []MonitoringRun
	if err := ds.DB.Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, errors.New(fmt.Errorf("failed to get runs: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return runs, nil
}

// GetRunIndicators returns all indicator records of one run.
func (ds *DataStore) GetRunIndicators(runID uint) ([]IndicatorRecord, error) {
	var records []IndicatorRecord
	if err := ds.DB.Where("run_id = ?", runID).Order("month, name").Find(&records).Error; err != nil {
		return nil, errors.New(fmt.Errorf("failed to get indicators for run %d: %w", runID, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return records, nil
}

// GetMonthlySampleCounts aggregates persisted samples per month.
func (ds *DataStore) GetMonthlySampleCounts() ([]MonthlySampleCount, error) {
	var counts []MonthlySampleCount
	err := ds.DB.Model(&TestSample{}).
		Select("month, COUNT(DISTINCT animal_id) as count").
		Group("month").
		Order("month").
		Scan(&counts).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to get monthly sample counts: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return counts, nil
}
