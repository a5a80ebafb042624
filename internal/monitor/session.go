package monitor

import (
	"log/slog"
	"sort"
	"time"

	"github.com/herdwatch/herdwatch-go/internal/conf"
	"github.com/herdwatch/herdwatch-go/internal/errors"
	"github.com/herdwatch/herdwatch-go/internal/herd"
	"github.com/herdwatch/herdwatch-go/internal/logging"
	"github.com/herdwatch/herdwatch-go/internal/observability/metrics"
)

// Session owns the inputs of one analysis: the append-only batch log, the
// cohorts derived from it and the optional herd-master roster. A session is
// not safe for concurrent mutation; callers embedding it in a concurrent
// host must serialize access, typically one session per analysis request.
type Session struct {
	threshold  float64
	system     herd.SystemType
	minOverlap int
	dryOffDays int
	firstTest  conf.FirstTestWindow

	batches     [][]herd.TestRecord
	cohorts     map[string]*Cohort
	roster      *HerdMaster
	skippedRows int

	log     *slog.Logger
	metrics *metrics.HerdMetrics
}

// NewSession creates a session from validated settings. Malformed
// configuration is a hard error, never silently absorbed.
func NewSession(settings *conf.Settings) (*Session, error) {
	if settings.Monitor.SCCThreshold <= 0 {
		return nil, errors.Newf("SCC threshold must be positive, got %v", settings.Monitor.SCCThreshold).
			Component("monitor").
			Category(errors.CategoryConfiguration).
			Build()
	}

	system, err := herd.ParseSystemType(settings.Monitor.SystemType)
	if err != nil {
		return nil, errors.New(err).
			Component("monitor").
			Category(errors.CategoryConfiguration).
			Build()
	}

	log := logging.ForService("monitor")
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		threshold:  settings.Monitor.SCCThreshold,
		system:     system,
		minOverlap: settings.Monitor.MinOverlap,
		dryOffDays: settings.Monitor.DryOffGestationDays,
		firstTest:  settings.Monitor.FirstTest,
		cohorts:    make(map[string]*Cohort),
		log:        log,
	}, nil
}

// SetMetrics attaches Prometheus metrics to the session. Optional.
func (s *Session) SetMetrics(m *metrics.HerdMetrics) {
	s.metrics = m
}

// SetThreshold changes the SCC threshold for every subsequent computation.
// May be called at any time between ingestion and ComputeAll.
func (s *Session) SetThreshold(threshold float64) error {
	if threshold <= 0 {
		return errors.Newf("SCC threshold must be positive, got %v", threshold).
			Component("monitor").
			Category(errors.CategoryConfiguration).
			Build()
	}
	s.threshold = threshold
	return nil
}

// Threshold returns the currently configured SCC threshold.
func (s *Session) Threshold() float64 {
	return s.threshold
}

// IngestTestRows validates a batch of test rows, appends it to the batch log
// and rebuilds the monthly cohorts from the full log. Rows with unparseable
// sample dates are dropped and counted; structural violations in
// caller-supplied rows fail the whole batch.
func (s *Session) IngestTestRows(rows []herd.TestRow) (IngestSummary, error) {
	batch := make([]herd.TestRecord, 0, len(rows))
	skipped := 0

	for i, row := range rows {
		if row.Parity < 1 {
			return IngestSummary{}, errors.Newf("row %d: parity must be >= 1, got %d", i, row.Parity).
				Component("monitor").
				Category(errors.CategoryValidation).
				Context("animal_id", row.ID).
				Build()
		}
		if row.LactationDays < 0 {
			return IngestSummary{}, errors.Newf("row %d: lactation days must not be negative, got %d", i, row.LactationDays).
				Component("monitor").
				Category(errors.CategoryValidation).
				Context("animal_id", row.ID).
				Build()
		}

		sampleDate, ok := herd.ParseSampleDate(row.SampleDate)
		if !ok {
			skipped++
			continue
		}

		batch = append(batch, herd.TestRecord{
			ID:            herd.NormalizeID(row.ID),
			RawID:         row.ID,
			SampleDate:    sampleDate,
			LactationDays: row.LactationDays,
			Parity:        row.Parity,
			SCC:           row.SCC,
		})
	}

	s.batches = append(s.batches, batch)
	s.cohorts = buildCohorts(s.batches)
	s.skippedRows += skipped

	touched := make(map[string]bool)
	for _, rec := range batch {
		touched[herd.MonthLabel(rec.SampleDate)] = true
	}
	summary := IngestSummary{
		RowsAdded:   len(batch),
		RowsSkipped: skipped,
	}
	for month := range touched {
		summary.Months = append(summary.Months, month)
	}
	sort.Strings(summary.Months)

	if s.metrics != nil {
		s.metrics.BatchesTotal.Inc()
		s.metrics.RowsIngested.Add(float64(len(batch)))
		s.metrics.RowsSkipped.Add(float64(skipped))
		for month, cohort := range s.cohorts {
			s.metrics.CohortSize.WithLabelValues(month).Set(float64(cohort.Size()))
		}
	}

	s.log.Info("ingested test rows",
		"rows", len(rows),
		"added", summary.RowsAdded,
		"skipped", summary.RowsSkipped,
		"months", summary.Months)

	return summary, nil
}

// LoadHerdMaster replaces the roster snapshot. The roster is not versioned
// by month; it is treated as contemporaneous with the latest test month.
func (s *Session) LoadHerdMaster(rows []herd.MasterRow) (int, error) {
	for i, row := range rows {
		if herd.NormalizeID(row.EarTag) == "" && row.EarTag == "" {
			return 0, errors.Newf("roster row %d has an empty ear tag", i).
				Component("monitor").
				Category(errors.CategoryHerdMaster).
				Build()
		}
	}

	s.roster = NewHerdMaster(rows)

	if s.metrics != nil {
		s.metrics.RosterSize.Set(float64(s.roster.Size()))
	}

	s.log.Info("loaded herd-master roster",
		"animals", s.roster.Size(),
		"columns", len(s.roster.FieldNames()))

	return s.roster.Size(), nil
}

// ComputeAll runs the continuity check and every applicable indicator for
// every loaded month. It is a pure function of the current session state;
// nothing is cached between calls.
func (s *Session) ComputeAll() (*Result, error) {
	started := time.Now()

	months := sortedMonths(s.cohorts)
	if len(months) == 0 {
		return nil, errors.Newf("no monthly cohorts loaded").
			Component("monitor").
			Category(errors.CategoryIndicator).
			Build()
	}

	calc := &calculator{
		threshold:  s.threshold,
		minOverlap: s.minOverlap,
		dryOffDays: s.dryOffDays,
		firstTest:  s.firstTest,
		system:     s.system,
	}

	result := &Result{
		Months:     months,
		Continuity: CheckContinuity(months),
		Threshold:  s.threshold,
		Indicators: make(map[string]MonthIndicators, len(months)),
	}

	latest := months[len(months)-1]
	for i, month := range months {
		cohort := s.cohorts[month]
		indicators := MonthIndicators{
			IndicatorCurrentPrevalence:    calc.currentPrevalence(cohort),
			IndicatorFirstTestPrimiparous: calc.firstTestPrevalence(cohort, true),
			IndicatorFirstTestMultiparous: calc.firstTestPrevalence(cohort, false),
		}

		// Month-over-month indicators need the immediately preceding month
		// with data, which may not be calendar-adjacent; they are absent for
		// the first month.
		if i > 0 {
			prev := s.cohorts[months[i-1]]
			indicators[IndicatorNewInfectionRate] = calc.newInfectionRate(prev, cohort)
			indicators[IndicatorChronicInfectionRate] = calc.chronicInfectionRate(prev, cohort)
			indicators[IndicatorChronicProportion] = calc.chronicProportion(prev, cohort)
		}

		if month == latest {
			indicators[IndicatorDryOffPrevalence] = calc.dryOffPrevalence(cohort, s.roster)
		}

		result.Indicators[month] = indicators
	}

	if s.metrics != nil {
		s.metrics.ComputeRuns.Inc()
		s.metrics.ComputeSeconds.Observe(time.Since(started).Seconds())
		for _, indicators := range result.Indicators {
			for _, r := range indicators {
				if !r.Available() {
					s.metrics.Unavailable.WithLabelValues(string(r.Diagnosis)).Inc()
				}
			}
		}
	}

	s.log.Info("computed indicators",
		"months", len(months),
		"continuous", result.Continuity.IsContinuous,
		"threshold", s.threshold,
		"duration", time.Since(started))

	return result, nil
}

// Summarize describes the loaded inputs without computing indicators.
func (s *Session) Summarize() Summary {
	months := sortedMonths(s.cohorts)
	counts := make(map[string]int, len(months))
	for _, month := range months {
		counts[month] = s.cohorts[month].Size()
	}
	return Summary{
		Months:       months,
		AnimalCounts: counts,
		RosterSize:   s.roster.Size(),
		SkippedRows:  s.skippedRows,
		Threshold:    s.threshold,
		SystemType:   s.system,
	}
}

// Cohort returns the cohort for a month label, nil when the month has no data.
func (s *Session) Cohort(month string) *Cohort {
	return s.cohorts[month]
}
