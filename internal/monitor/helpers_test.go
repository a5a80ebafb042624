package monitor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/herdwatch/herdwatch-go/internal/conf"
	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// testSettings returns settings with the documented engine defaults.
func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.Monitor = conf.MonitorSettings{
		SCCThreshold:        20,
		SystemType:          string(herd.SystemOther),
		MinOverlap:          20,
		DryOffGestationDays: 180,
		FirstTest:           conf.FirstTestWindow{MinDIM: 5, MaxDIM: 35},
	}
	return settings
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	session, err := NewSession(testSettings())
	require.NoError(t, err)
	return session
}

func testCalculator() *calculator {
	settings := testSettings()
	return &calculator{
		threshold:  settings.Monitor.SCCThreshold,
		minOverlap: settings.Monitor.MinOverlap,
		dryOffDays: settings.Monitor.DryOffGestationDays,
		firstTest:  settings.Monitor.FirstTest,
		system:     herd.SystemOther,
	}
}

func scc(v float64) *float64 {
	return &v
}

// rec builds a test record with the sample date parsed from its string form.
func rec(id, date string, dim, parity int, count *float64) herd.TestRecord {
	sampleDate, ok := herd.ParseSampleDate(date)
	if !ok {
		panic(fmt.Sprintf("bad test date %q", date))
	}
	return herd.TestRecord{
		ID:            herd.NormalizeID(id),
		RawID:         id,
		SampleDate:    sampleDate,
		LactationDays: dim,
		Parity:        parity,
		SCC:           count,
	}
}

// cohortOf builds a cohort directly from records, last record per id wins by
// sample date like the builder does.
func cohortOf(month string, records ...herd.TestRecord) *Cohort {
	c := &Cohort{Month: month, Records: make(map[string]herd.TestRecord)}
	for _, r := range records {
		c.add(r)
	}
	return c
}

// row builds an ingestion row.
func row(id, date string, dim, parity int, count *float64) herd.TestRow {
	return herd.TestRow{
		ID:            id,
		SampleDate:    date,
		LactationDays: dim,
		Parity:        parity,
		SCC:           count,
	}
}
