package monitor

import (
	"fmt"

	"github.com/herdwatch/herdwatch-go/internal/conf"
	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// calculator computes the six udder health indicators for one pass. All
// fields are fixed for the lifetime of one ComputeAll call so results within
// a pass are mutually consistent.
type calculator struct {
	threshold  float64
	minOverlap int
	dryOffDays int
	firstTest  conf.FirstTestWindow
	system     herd.SystemType
}

// aboveThreshold reports whether a somatic cell count is present and above
// the configured threshold.
func (c *calculator) aboveThreshold(scc *float64) bool {
	return scc != nil && *scc > c.threshold
}

// atOrBelowThreshold reports whether a somatic cell count is present and at
// or below the configured threshold.
func (c *calculator) atOrBelowThreshold(scc *float64) bool {
	return scc != nil && *scc <= c.threshold
}

// flagThinOverlap attaches the low-confidence warning when the matched
// cohort backing the result is below the representativeness floor.
func (c *calculator) flagThinOverlap(result IndicatorResult, overlapCount int) IndicatorResult {
	result.OverlapCount = overlapCount
	if result.Available() && overlapCount < c.minOverlap {
		result.Warning = fmt.Sprintf("matched cohort has only %d animals, below the representativeness floor of %d",
			overlapCount, c.minOverlap)
	}
	return result
}

// currentPrevalence computes the share of tested animals above the SCC
// threshold in one month's cohort.
func (c *calculator) currentPrevalence(cohort *Cohort) IndicatorResult {
	tested := 0
	high := 0
	for _, rec := range cohort.Records {
		if rec.SCC == nil {
			continue
		}
		tested++
		if c.aboveThreshold(rec.SCC) {
			high++
		}
	}

	if tested == 0 {
		return unavailable(DiagnosisEmptyDenominator, fmt.Sprintf(
			"no animals with a somatic cell count in %s (cohort size %d)",
			cohort.Month, cohort.Size()))
	}

	return available(high, tested, fmt.Sprintf(
		"%d of %d tested animals in %s above threshold %.1f: %s",
		high, tested, cohort.Month, c.threshold, formatValue(high, tested)))
}

// newInfectionRate computes, among animals tested in both months that were
// at or below the threshold in the previous month, the share that rose above
// it in the current month.
func (c *calculator) newInfectionRate(prev, curr *Cohort) IndicatorResult {
	pairs := Overlap(prev, curr)
	if len(pairs) == 0 {
		return c.flagThinOverlap(unavailable(DiagnosisNoIdentityMatch, fmt.Sprintf(
			"no animals matched between %s and %s (cohort sizes %d and %d)",
			prev.Month, curr.Month, prev.Size(), curr.Size())), 0)
	}

	base := 0
	newlyHigh := 0
	for _, pair := range pairs {
		if !c.atOrBelowThreshold(pair.Prev.SCC) || pair.Curr.SCC == nil {
			continue
		}
		base++
		if c.aboveThreshold(pair.Curr.SCC) {
			newlyHigh++
		}
	}

	if base == 0 {
		return c.flagThinOverlap(unavailable(DiagnosisEmptyDenominator, fmt.Sprintf(
			"none of the %d matched animals between %s and %s had SCC <= %.1f in %s",
			len(pairs), prev.Month, curr.Month, c.threshold, prev.Month)), len(pairs))
	}

	return c.flagThinOverlap(available(newlyHigh, base, fmt.Sprintf(
		"%d of %d matched animals with SCC <= %.1f in %s rose above it in %s: %s",
		newlyHigh, base, c.threshold, prev.Month, curr.Month, formatValue(newlyHigh, base))), len(pairs))
}

// chronicInfectionRate mirrors newInfectionRate for animals that were above
// the threshold in the previous month and stayed above it.
func (c *calculator) chronicInfectionRate(prev, curr *Cohort) IndicatorResult {
	pairs := Overlap(prev, curr)
	if len(pairs) == 0 {
		return c.flagThinOverlap(unavailable(DiagnosisNoIdentityMatch, fmt.Sprintf(
			"no animals matched between %s and %s (cohort sizes %d and %d)",
			prev.Month, curr.Month, prev.Size(), curr.Size())), 0)
	}

	base := 0
	stillHigh := 0
	for _, pair := range pairs {
		if !c.aboveThreshold(pair.Prev.SCC) || pair.Curr.SCC == nil {
			continue
		}
		base++
		if c.aboveThreshold(pair.Curr.SCC) {
			stillHigh++
		}
	}

	if base == 0 {
		return c.flagThinOverlap(unavailable(DiagnosisEmptyDenominator, fmt.Sprintf(
			"none of the %d matched animals between %s and %s had SCC > %.1f in %s",
			len(pairs), prev.Month, curr.Month, c.threshold, prev.Month)), len(pairs))
	}

	return c.flagThinOverlap(available(stillHigh, base, fmt.Sprintf(
		"%d of %d matched animals with SCC > %.1f in %s stayed above it in %s: %s",
		stillHigh, base, c.threshold, prev.Month, curr.Month, formatValue(stillHigh, base))), len(pairs))
}

// chronicProportion computes the share of the full matched cohort that was
// above the threshold in both months. The denominator is the matched cohort
// size, not the full current-month cohort.
func (c *calculator) chronicProportion(prev, curr *Cohort) IndicatorResult {
	pairs := Overlap(prev, curr)
	if len(pairs) == 0 {
		return c.flagThinOverlap(unavailable(DiagnosisNoIdentityMatch, fmt.Sprintf(
			"no animals matched between %s and %s (cohort sizes %d and %d)",
			prev.Month, curr.Month, prev.Size(), curr.Size())), 0)
	}

	chronic := 0
	for _, pair := range pairs {
		if c.aboveThreshold(pair.Prev.SCC) && c.aboveThreshold(pair.Curr.SCC) {
			chronic++
		}
	}

	return c.flagThinOverlap(available(chronic, len(pairs), fmt.Sprintf(
		"%d of %d matched animals above threshold %.1f in both %s and %s: %s",
		chronic, len(pairs), c.threshold, prev.Month, curr.Month, formatValue(chronic, len(pairs)))), len(pairs))
}

// firstTestPrevalence computes the current-prevalence ratio restricted to
// animals on their first test after calving (DIM window from configuration),
// separately for primiparous (parity 1) and multiparous (parity > 1) cows.
func (c *calculator) firstTestPrevalence(cohort *Cohort, primiparous bool) IndicatorResult {
	group := "multiparous (parity > 1)"
	if primiparous {
		group = "primiparous (parity = 1)"
	}

	inWindow := 0
	tested := 0
	high := 0
	for _, rec := range cohort.Records {
		if rec.LactationDays < c.firstTest.MinDIM || rec.LactationDays > c.firstTest.MaxDIM {
			continue
		}
		if primiparous != (rec.Parity == 1) {
			continue
		}
		inWindow++
		if rec.SCC == nil {
			continue
		}
		tested++
		if c.aboveThreshold(rec.SCC) {
			high++
		}
	}

	if tested == 0 {
		return unavailable(DiagnosisEmptyDenominator, fmt.Sprintf(
			"no tested %s animals with DIM %d-%d in %s (%d in window, cohort size %d)",
			group, c.firstTest.MinDIM, c.firstTest.MaxDIM, cohort.Month, inWindow, cohort.Size()))
	}

	return available(high, tested, fmt.Sprintf(
		"%d of %d tested %s animals with DIM %d-%d in %s above threshold %.1f: %s",
		high, tested, group, c.firstTest.MinDIM, c.firstTest.MaxDIM, cohort.Month,
		c.threshold, formatValue(high, tested)))
}

// dryOffPrevalence computes the current-prevalence ratio over cohort animals
// that are far enough into gestation to approach dry-off. This indicator has
// the longest failure chain: it needs a loaded roster, a resolvable
// gestation column, a non-empty identity join, gestation data within the
// join and a non-empty qualifying subset, checked in that order.
func (c *calculator) dryOffPrevalence(cohort *Cohort, hm *HerdMaster) IndicatorResult {
	if hm == nil {
		return unavailable(DiagnosisMissingHerdMaster, fmt.Sprintf(
			"pre-dry-off prevalence for %s needs a herd-master roster, none loaded (cohort size %d)",
			cohort.Month, cohort.Size()))
	}

	gestationField, ok := ResolveGestationField(c.system, hm.FieldNames())
	if !ok {
		return unavailable(DiagnosisUnresolvedGestationField, fmt.Sprintf(
			"no days-pregnant column recognized for system %q among %d roster columns",
			c.system, len(hm.FieldNames())))
	}

	matches := hm.matchRoster(cohort, gestationField)
	if len(matches) == 0 {
		return unavailable(DiagnosisNoIdentityMatch, fmt.Sprintf(
			"no identity overlap between %s cohort (%d animals) and roster (%d animals)",
			cohort.Month, cohort.Size(), hm.Size()))
	}

	withGestation := 0
	qualified := 0
	tested := 0
	high := 0
	for _, match := range matches {
		if match.GestationDays == nil {
			continue
		}
		withGestation++
		if *match.GestationDays <= c.dryOffDays {
			continue
		}
		qualified++
		if match.Test.SCC == nil {
			continue
		}
		tested++
		if c.aboveThreshold(match.Test.SCC) {
			high++
		}
	}

	switch {
	case withGestation == 0:
		return unavailable(DiagnosisNoGestationData, fmt.Sprintf(
			"all %d matched animals have an empty %q value", len(matches), gestationField))
	case qualified == 0:
		return unavailable(DiagnosisNoQualifyingAnimals, fmt.Sprintf(
			"none of %d matched animals with gestation data exceed %d gestation days",
			withGestation, c.dryOffDays))
	case tested == 0:
		return unavailable(DiagnosisEmptyDenominator, fmt.Sprintf(
			"none of %d pre-dry-off animals (gestation > %d days) have a somatic cell count",
			qualified, c.dryOffDays))
	}

	result := available(high, tested, fmt.Sprintf(
		"%d of %d tested pre-dry-off animals (gestation > %d days) in %s above threshold %.1f: %s",
		high, tested, c.dryOffDays, cohort.Month, c.threshold, formatValue(high, tested)))
	return c.flagThinOverlap(result, len(matches))
}
