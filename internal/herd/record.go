// Package herd defines the data model for herd-test and herd-master records.
package herd

import (
	"strings"
	"time"
)

// TestRow is one animal's measurement row as delivered by the upstream
// file-to-table adapter. The sample date is still a raw string at this point,
// the engine parses and validates it during ingestion.
type TestRow struct {
	ID            string   // management id as reported by the source system
	SampleDate    string   // parseable date, see ParseSampleDate
	LactationDays int      // days in milk, >= 0
	Parity        int      // number of calvings, >= 1
	SCC           *float64 // somatic cell count, nil when not measured
}

// TestRecord is one animal's measurement on one sample date, immutable once
// ingested. ID holds the normalized identifier, RawID the value as reported.
type TestRecord struct {
	ID            string
	RawID         string
	SampleDate    time.Time
	LactationDays int
	Parity        int
	SCC           *float64
}

// MasterRow is one live animal's roster row. Column names vary by source
// system, so everything besides the ear tag is kept as raw fields and
// resolved later.
type MasterRow struct {
	EarTag string            // ear tag as reported
	Fields map[string]string // remaining columns, raw names preserved
}

// MasterRecord is a resolved roster snapshot for one live animal.
// GestationDays is nil when the source system's field could not be resolved
// or the value was not parseable.
type MasterRecord struct {
	EarTag         string // normalized ear tag
	GestationDays  *int
	Parity         *int
	LactationDays  *int
	BreedingStatus string
}

// sampleDateLayouts lists the date formats accepted for test rows, most
// common first.
var sampleDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006/1/2",
	"01/02/2006",
	"20060102",
}

// ParseSampleDate parses a raw sample date string using the accepted layouts.
func ParseSampleDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range sampleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthLabel formats a date as the YYYY-MM cohort key.
func MonthLabel(t time.Time) string {
	return t.Format("2006-01")
}
