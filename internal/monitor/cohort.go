package monitor

import (
	"sort"

	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// Cohort is the deduplicated set of test records for one calendar month,
// keyed by normalized animal id. Each id maps to the chronologically last
// record submitted for that id in that month.
type Cohort struct {
	Month   string // YYYY-MM label
	Records map[string]herd.TestRecord
}

// Size returns the number of distinct animals in the cohort.
func (c *Cohort) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// IDs returns the sorted normalized ids of the cohort.
func (c *Cohort) IDs() []string {
	ids := make([]string, 0, len(c.Records))
	for id := range c.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// add merges a record into the cohort, keeping the record with the later
// sample date. On an equal date the incumbent wins, which keeps repeated
// ingestion of the same file idempotent.
func (c *Cohort) add(rec herd.TestRecord) {
	existing, ok := c.Records[rec.ID]
	if !ok || rec.SampleDate.After(existing.SampleDate) {
		c.Records[rec.ID] = rec
	}
}

// buildCohorts reduces the append-only log of ingested batches into month
// cohorts. Rerunning the reduction over the same batches always yields the
// same cohorts, so ingestion is idempotent by construction.
func buildCohorts(batches [][]herd.TestRecord) map[string]*Cohort {
	cohorts := make(map[string]*Cohort)
	for _, batch := range batches {
		for _, rec := range batch {
			month := herd.MonthLabel(rec.SampleDate)
			cohort, ok := cohorts[month]
			if !ok {
				cohort = &Cohort{Month: month, Records: make(map[string]herd.TestRecord)}
				cohorts[month] = cohort
			}
			cohort.add(rec)
		}
	}
	return cohorts
}

// sortedMonths returns the cohort month labels in ascending order.
func sortedMonths(cohorts map[string]*Cohort) []string {
	months := make([]string, 0, len(cohorts))
	for month := range cohorts {
		months = append(months, month)
	}
	sort.Strings(months)
	return months
}

// IngestSummary reports what one ingestion call did.
type IngestSummary struct {
	RowsAdded   int      // rows accepted into the batch log
	RowsSkipped int      // rows dropped for unparseable sample dates
	Months      []string // sorted month labels touched by this batch
}
