package datastore

import (
	"strings"
	"time"

	"github.com/herdwatch/herdwatch-go/internal/herd"
	"github.com/herdwatch/herdwatch-go/internal/monitor"
)

// SampleFromRecord converts one deduplicated test record into its persisted
// form.
func SampleFromRecord(rec herd.TestRecord) TestSample {
	return TestSample{
		AnimalID:      rec.ID,
		RawID:         rec.RawID,
		Month:         herd.MonthLabel(rec.SampleDate),
		SampleDate:    rec.SampleDate,
		LactationDays: rec.LactationDays,
		Parity:        rec.Parity,
		SCC:           rec.SCC,
	}
}

// RunFromResult flattens a computation result into a persistable run.
func RunFromResult(result *monitor.Result, systemType string) *MonitoringRun {
	run := &MonitoringRun{
		CreatedAt:     time.Now(),
		Threshold:     result.Threshold,
		SystemType:    systemType,
		Months:        strings.Join(result.Months, ","),
		IsContinuous:  result.Continuity.IsContinuous,
		MissingMonths: strings.Join(result.Continuity.Missing, ","),
	}

	for _, month := range result.Months {
		for name, r := range result.Indicators[month] {
			run.Indicators = append(run.Indicators, IndicatorRecord{
				Month:        month,
				Name:         string(name),
				Value:        r.Value,
				Numerator:    r.Numerator,
				Denominator:  r.Denominator,
				OverlapCount: r.OverlapCount,
				Diagnosis:    string(r.Diagnosis),
				Warning:      r.Warning,
				Formula:      r.Formula,
			})
		}
	}
	return run
}
