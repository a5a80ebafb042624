// model.go this code defines the persistence model for samples and monitoring runs
package datastore

import "time"

// TestSample is one deduplicated herd-test record as persisted after
// ingestion. One row per animal per month.
type TestSample struct {
	ID            uint   `gorm:"primaryKey"`
	AnimalID      string `gorm:"index:idx_samples_animal;index:idx_samples_month_animal"`
	RawID         string
	Month         string `gorm:"index:idx_samples_month;index:idx_samples_month_animal"`
	SampleDate    time.Time
	LactationDays int
	Parity        int
	SCC           *float64
}

// MonitoringRun is one full indicator computation pass.
type MonitoringRun struct {
	ID            uint      `gorm:"primaryKey"`
	CreatedAt     time.Time `gorm:"index"`
	Threshold     float64
	SystemType    string
	Months        string // comma-joined ordered month labels
	IsContinuous  bool
	MissingMonths string            // comma-joined missing month labels
	Indicators    []IndicatorRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// IndicatorRecord is one indicator result within a run.
// GORM will automatically create table name as 'indicator_records'
type IndicatorRecord struct {
	ID           uint   `gorm:"primaryKey"`
	RunID        uint   `gorm:"index;not null"`
	Month        string `gorm:"index"`
	Name         string `gorm:"index"`
	Value        *float64
	Numerator    int
	Denominator  int
	OverlapCount int
	Diagnosis    string `gorm:"type:varchar(40)"`
	Warning      string
	Formula      string `gorm:"type:text"`
}

// MonthlySampleCount is the per-month animal count aggregate.
type MonthlySampleCount struct {
	Month string
	Count int
}
