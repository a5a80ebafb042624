// Package monitor implements the udder health indicator engine: monthly
// cohort building, cohort matching, field resolution and the six
// standardized indicators.
package monitor

import (
	"fmt"
	"math"

	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// Indicator names the computed udder health indicators. First-test
// prevalence is split by parity and contributes two entries.
type Indicator string

const (
	IndicatorCurrentPrevalence    Indicator = "current_prevalence"
	IndicatorNewInfectionRate     Indicator = "new_infection_rate"
	IndicatorChronicInfectionRate Indicator = "chronic_infection_rate"
	IndicatorChronicProportion    Indicator = "chronic_proportion"
	IndicatorFirstTestPrimiparous Indicator = "first_test_prevalence_primiparous"
	IndicatorFirstTestMultiparous Indicator = "first_test_prevalence_multiparous"
	IndicatorDryOffPrevalence     Indicator = "pre_dry_off_prevalence"
)

// Diagnosis is a machine-readable reason code for an unavailable indicator
// value. Data-quality gaps are expected and produce a diagnosis instead of
// an error.
type Diagnosis string

const (
	DiagnosisMissingHerdMaster        Diagnosis = "missing-herd-master"
	DiagnosisUnresolvedGestationField Diagnosis = "unresolved-gestation-field"
	DiagnosisNoIdentityMatch          Diagnosis = "no-identity-match"
	DiagnosisNoGestationData          Diagnosis = "no-gestation-data-in-matches"
	DiagnosisNoQualifyingAnimals      Diagnosis = "no-qualifying-animals"
	DiagnosisEmptyDenominator         Diagnosis = "empty-denominator"
)

// IndicatorResult carries one indicator's value or, when the value could not
// be computed, the diagnosis explaining why. Formula always embeds the
// literal counts used, also for unavailable results.
type IndicatorResult struct {
	Value        *float64  // percentage, nil when unavailable
	Formula      string    // human-readable derivation or failure explanation
	Numerator    int       // literal numerator used
	Denominator  int       // literal denominator used
	OverlapCount int       // matched cohort size for pairwise indicators, 0 otherwise
	Diagnosis    Diagnosis // set only when Value is nil
	Warning      string    // set on thin but computable support
}

// Available reports whether the indicator carries a computed value.
func (r IndicatorResult) Available() bool {
	return r.Value != nil
}

// available builds a computed result as numerator/denominator*100, rounded
// to two decimals.
func available(numerator, denominator int, formula string) IndicatorResult {
	v := math.Round(float64(numerator)/float64(denominator)*100*100) / 100
	return IndicatorResult{
		Value:       &v,
		Formula:     formula,
		Numerator:   numerator,
		Denominator: denominator,
	}
}

// unavailable builds a diagnosed result without a value.
func unavailable(d Diagnosis, formula string) IndicatorResult {
	return IndicatorResult{
		Diagnosis: d,
		Formula:   formula,
	}
}

// MonthIndicators maps indicator name to result for one month.
type MonthIndicators map[Indicator]IndicatorResult

// Result is the aggregate output of one full computation pass.
type Result struct {
	Months     []string                   // ordered month labels with data
	Continuity ContinuityReport           // gaps in the monthly sequence
	Threshold  float64                    // SCC threshold the pass was computed with
	Indicators map[string]MonthIndicators // month label -> indicator results
}

// Summary describes the current session inputs without computing indicators.
type Summary struct {
	Months       []string        // ordered month labels with data
	AnimalCounts map[string]int  // month label -> deduplicated cohort size
	RosterSize   int             // animals in the herd-master roster, 0 if none loaded
	SkippedRows  int             // test rows dropped for unparseable sample dates
	Threshold    float64         // configured SCC threshold
	SystemType   herd.SystemType // configured herd-master source system
}

// formatValue renders a percentage the way formulas embed it.
func formatValue(numerator, denominator int) string {
	v := float64(numerator) / float64(denominator) * 100
	return fmt.Sprintf("%d/%d*100 = %.2f%%", numerator, denominator, v)
}
