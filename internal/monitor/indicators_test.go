package monitor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdwatch/herdwatch-go/internal/herd"
)

func TestCurrentPrevalenceLargeCohort(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// 1000 tested animals, 200 above the threshold of 20.
	records := make([]herd.TestRecord, 0, 1000)
	for i := 0; i < 1000; i++ {
		count := 10.0
		if i < 200 {
			count = 35.0
		}
		records = append(records, rec(fmt.Sprintf("%d", i+1), "2024-05-10", 100, 2, scc(count)))
	}

	result := calc.currentPrevalence(cohortOf("2024-05", records...))
	require.True(t, result.Available())
	assert.InDelta(t, 20.0, *result.Value, 0.001)
	assert.Equal(t, 200, result.Numerator)
	assert.Equal(t, 1000, result.Denominator)
	assert.Empty(t, result.Warning)
	assert.Empty(t, result.Diagnosis)
}

func TestCurrentPrevalenceSkipsUntestedAnimals(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	cohort := cohortOf("2024-05",
		rec("1", "2024-05-10", 100, 2, scc(50)),
		rec("2", "2024-05-10", 100, 2, scc(10)),
		rec("3", "2024-05-10", 100, 2, nil),
	)

	result := calc.currentPrevalence(cohort)
	require.True(t, result.Available())
	assert.InDelta(t, 50.0, *result.Value, 0.001)
	assert.Equal(t, 2, result.Denominator)
}

func TestCurrentPrevalenceThresholdIsStrict(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// A count exactly at the threshold is not above it.
	cohort := cohortOf("2024-05",
		rec("1", "2024-05-10", 100, 2, scc(20)),
		rec("2", "2024-05-10", 100, 2, scc(20.01)),
	)

	result := calc.currentPrevalence(cohort)
	require.True(t, result.Available())
	assert.Equal(t, 1, result.Numerator)
	assert.Equal(t, 2, result.Denominator)
}

func TestCurrentPrevalenceNoTestedAnimals(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	cohort := cohortOf("2024-05", rec("1", "2024-05-10", 100, 2, nil))

	result := calc.currentPrevalence(cohort)
	assert.False(t, result.Available())
	assert.Equal(t, DiagnosisEmptyDenominator, result.Diagnosis)
	assert.NotEmpty(t, result.Formula)
}

// buildPairCohorts builds two adjacent monthly cohorts with a configurable
// matched population: counts[i] = {prev SCC, curr SCC} for animal i.
func buildPairCohorts(counts [][2]*float64) (*Cohort, *Cohort) {
	prev := &Cohort{Month: "2024-05", Records: make(map[string]herd.TestRecord)}
	curr := &Cohort{Month: "2024-06", Records: make(map[string]herd.TestRecord)}
	for i, c := range counts {
		id := fmt.Sprintf("%d", i+1)
		prev.add(rec(id, "2024-05-10", 100, 2, c[0]))
		curr.add(rec(id, "2024-06-10", 131, 2, c[1]))
	}
	return prev, curr
}

func TestNewInfectionRateFiftyAnimalOverlap(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// 50 matched animals. 30 were at or below the threshold in May; 5 of
	// those rose above it in June. The other 20 were already high in May
	// and must not enter the denominator.
	counts := make([][2]*float64, 0, 50)
	for i := 0; i < 5; i++ {
		counts = append(counts, [2]*float64{scc(10), scc(40)})
	}
	for i := 0; i < 25; i++ {
		counts = append(counts, [2]*float64{scc(10), scc(12)})
	}
	for i := 0; i < 20; i++ {
		counts = append(counts, [2]*float64{scc(60), scc(60)})
	}
	prev, curr := buildPairCohorts(counts)

	result := calc.newInfectionRate(prev, curr)
	require.True(t, result.Available())
	assert.InDelta(t, 16.67, *result.Value, 0.001)
	assert.Equal(t, 5, result.Numerator)
	assert.Equal(t, 30, result.Denominator)
	assert.Equal(t, 50, result.OverlapCount)
	assert.Empty(t, result.Warning)
}

func TestPairwiseIndicatorsWarnOnThinOverlap(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// 10 matched animals, below the floor of 20. Values are still
	// computed but carry a warning.
	counts := make([][2]*float64, 0, 10)
	for i := 0; i < 5; i++ {
		counts = append(counts, [2]*float64{scc(10), scc(40)})
	}
	for i := 0; i < 5; i++ {
		counts = append(counts, [2]*float64{scc(60), scc(60)})
	}
	prev, curr := buildPairCohorts(counts)

	for name, result := range map[Indicator]IndicatorResult{
		IndicatorNewInfectionRate:     calc.newInfectionRate(prev, curr),
		IndicatorChronicInfectionRate: calc.chronicInfectionRate(prev, curr),
		IndicatorChronicProportion:    calc.chronicProportion(prev, curr),
	} {
		require.True(t, result.Available(), "%s should still carry a value", name)
		assert.NotEmpty(t, result.Warning, "%s should warn on thin overlap", name)
		assert.Equal(t, 10, result.OverlapCount, "%s overlap count", name)
	}
}

func TestNewInfectionRateExcludesMissingCurrentCounts(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	prev, curr := buildPairCohorts([][2]*float64{
		{scc(10), scc(40)},
		{scc(10), nil}, // no June count, drops out of the base
		{scc(10), scc(12)},
	})

	result := calc.newInfectionRate(prev, curr)
	require.True(t, result.Available())
	assert.Equal(t, 1, result.Numerator)
	assert.Equal(t, 2, result.Denominator)
	assert.Equal(t, 3, result.OverlapCount)
}

func TestNewInfectionRateEmptyOverlap(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	prev := cohortOf("2024-05", rec("1", "2024-05-10", 100, 2, scc(10)))
	curr := cohortOf("2024-06", rec("2", "2024-06-10", 100, 2, scc(10)))

	result := calc.newInfectionRate(prev, curr)
	assert.False(t, result.Available())
	assert.Equal(t, DiagnosisNoIdentityMatch, result.Diagnosis)
}

func TestNewInfectionRateEmptyBase(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// Matched animals exist but all were above the threshold previously.
	prev, curr := buildPairCohorts([][2]*float64{
		{scc(60), scc(60)},
		{scc(45), scc(12)},
	})

	result := calc.newInfectionRate(prev, curr)
	assert.False(t, result.Available())
	assert.Equal(t, DiagnosisEmptyDenominator, result.Diagnosis)
	assert.Equal(t, 2, result.OverlapCount)
}

func TestChronicInfectionRate(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// 4 animals high in May, 3 still high in June. Low animals ignored.
	prev, curr := buildPairCohorts([][2]*float64{
		{scc(60), scc(60)},
		{scc(60), scc(60)},
		{scc(60), scc(60)},
		{scc(60), scc(5)},
		{scc(10), scc(10)},
	})

	result := calc.chronicInfectionRate(prev, curr)
	require.True(t, result.Available())
	assert.InDelta(t, 75.0, *result.Value, 0.001)
	assert.Equal(t, 3, result.Numerator)
	assert.Equal(t, 4, result.Denominator)
}

func TestChronicProportionUsesFullMatchedCohort(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// 2 of 5 matched animals high in both months. The denominator is the
	// matched cohort, including animals never above the threshold.
	prev, curr := buildPairCohorts([][2]*float64{
		{scc(60), scc(60)},
		{scc(60), scc(60)},
		{scc(60), scc(5)},
		{scc(10), scc(10)},
		{scc(10), scc(10)},
	})

	result := calc.chronicProportion(prev, curr)
	require.True(t, result.Available())
	assert.InDelta(t, 40.0, *result.Value, 0.001)
	assert.Equal(t, 2, result.Numerator)
	assert.Equal(t, 5, result.Denominator)
}

func TestFirstTestPrevalenceSplitsByParity(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	cohort := cohortOf("2024-05",
		// primiparous in window: 1 of 2 high
		rec("1", "2024-05-10", 10, 1, scc(50)),
		rec("2", "2024-05-10", 30, 1, scc(10)),
		// multiparous in window: 0 of 1 high
		rec("3", "2024-05-10", 20, 3, scc(15)),
		// out of the DIM window, both parities
		rec("4", "2024-05-10", 4, 1, scc(99)),
		rec("5", "2024-05-10", 36, 2, scc(99)),
		// in window but untested
		rec("6", "2024-05-10", 15, 1, nil),
	)

	primi := calc.firstTestPrevalence(cohort, true)
	require.True(t, primi.Available())
	assert.InDelta(t, 50.0, *primi.Value, 0.001)
	assert.Equal(t, 2, primi.Denominator)

	multi := calc.firstTestPrevalence(cohort, false)
	require.True(t, multi.Available())
	assert.InDelta(t, 0.0, *multi.Value, 0.001)
	assert.Equal(t, 1, multi.Denominator)
}

func TestFirstTestPrevalenceWindowBoundsInclusive(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	cohort := cohortOf("2024-05",
		rec("1", "2024-05-10", 5, 1, scc(50)),
		rec("2", "2024-05-10", 35, 1, scc(10)),
	)

	result := calc.firstTestPrevalence(cohort, true)
	require.True(t, result.Available())
	assert.Equal(t, 2, result.Denominator)
}

func TestFirstTestPrevalenceEmptySubgroup(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// Only multiparous cows in the window: the primiparous indicator is
	// unavailable, the multiparous one is not.
	cohort := cohortOf("2024-05", rec("1", "2024-05-10", 20, 4, scc(15)))

	primi := calc.firstTestPrevalence(cohort, true)
	assert.False(t, primi.Available())
	assert.Equal(t, DiagnosisEmptyDenominator, primi.Diagnosis)

	multi := calc.firstTestPrevalence(cohort, false)
	assert.True(t, multi.Available())
}

func TestDryOffPrevalence(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	cohort := cohortOf("2024-06",
		rec("1", "2024-06-10", 250, 3, scc(50)),
		rec("2", "2024-06-10", 240, 2, scc(10)),
		rec("3", "2024-06-10", 100, 2, scc(99)), // gestation too short
		rec("4", "2024-06-10", 260, 4, nil),     // qualifies but untested
	)
	hm := NewHerdMaster([]herd.MasterRow{
		{EarTag: "1", Fields: map[string]string{"怀孕天数": "200"}},
		{EarTag: "2", Fields: map[string]string{"怀孕天数": "190"}},
		{EarTag: "3", Fields: map[string]string{"怀孕天数": "90"}},
		{EarTag: "4", Fields: map[string]string{"怀孕天数": "210"}},
	})

	result := calc.dryOffPrevalence(cohort, hm)
	require.True(t, result.Available())
	assert.InDelta(t, 50.0, *result.Value, 0.001)
	assert.Equal(t, 1, result.Numerator)
	assert.Equal(t, 2, result.Denominator)
}

func TestDryOffPrevalenceGestationBoundaryExcluded(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	// Exactly 180 gestation days does not qualify; 181 does.
	cohort := cohortOf("2024-06",
		rec("1", "2024-06-10", 250, 3, scc(50)),
		rec("2", "2024-06-10", 250, 3, scc(50)),
	)
	hm := NewHerdMaster([]herd.MasterRow{
		{EarTag: "1", Fields: map[string]string{"怀孕天数": "180"}},
		{EarTag: "2", Fields: map[string]string{"怀孕天数": "181"}},
	})

	result := calc.dryOffPrevalence(cohort, hm)
	require.True(t, result.Available())
	assert.Equal(t, 1, result.Denominator)
}

func TestDryOffPrevalenceDiagnosisChain(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	cohort := cohortOf("2024-06", rec("1", "2024-06-10", 250, 3, scc(50)))

	tests := []struct {
		name string
		hm   *HerdMaster
		want Diagnosis
	}{
		{
			name: "no roster loaded",
			hm:   nil,
			want: DiagnosisMissingHerdMaster,
		},
		{
			name: "no recognizable gestation column",
			hm: NewHerdMaster([]herd.MasterRow{
				{EarTag: "1", Fields: map[string]string{"胎次": "3"}},
			}),
			want: DiagnosisUnresolvedGestationField,
		},
		{
			name: "no identity overlap with roster",
			hm: NewHerdMaster([]herd.MasterRow{
				{EarTag: "999", Fields: map[string]string{"怀孕天数": "200"}},
			}),
			want: DiagnosisNoIdentityMatch,
		},
		{
			name: "matched animals carry no gestation values",
			hm: NewHerdMaster([]herd.MasterRow{
				{EarTag: "1", Fields: map[string]string{"怀孕天数": ""}},
			}),
			want: DiagnosisNoGestationData,
		},
		{
			name: "no animal past the dry-off gestation cutoff",
			hm: NewHerdMaster([]herd.MasterRow{
				{EarTag: "1", Fields: map[string]string{"怀孕天数": "120"}},
			}),
			want: DiagnosisNoQualifyingAnimals,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := calc.dryOffPrevalence(cohort, tt.hm)
			assert.False(t, result.Available())
			assert.Equal(t, tt.want, result.Diagnosis)
			assert.NotEmpty(t, result.Formula)
		})
	}
}

func TestDryOffPrevalenceUntestedQualifiers(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	cohort := cohortOf("2024-06", rec("1", "2024-06-10", 250, 3, nil))
	hm := NewHerdMaster([]herd.MasterRow{
		{EarTag: "1", Fields: map[string]string{"怀孕天数": "200"}},
	})

	result := calc.dryOffPrevalence(cohort, hm)
	assert.False(t, result.Available())
	assert.Equal(t, DiagnosisEmptyDenominator, result.Diagnosis)
}

func TestIndicatorValuesStayInRange(t *testing.T) {
	t.Parallel()
	calc := testCalculator()

	prev, curr := buildPairCohorts([][2]*float64{
		{scc(60), scc(60)},
		{scc(10), scc(60)},
		{scc(10), scc(10)},
		{scc(60), scc(10)},
	})

	for name, result := range map[Indicator]IndicatorResult{
		IndicatorCurrentPrevalence:    calc.currentPrevalence(curr),
		IndicatorNewInfectionRate:     calc.newInfectionRate(prev, curr),
		IndicatorChronicInfectionRate: calc.chronicInfectionRate(prev, curr),
		IndicatorChronicProportion:    calc.chronicProportion(prev, curr),
	} {
		require.True(t, result.Available(), "%s", name)
		assert.GreaterOrEqual(t, *result.Value, 0.0, "%s lower bound", name)
		assert.LessOrEqual(t, *result.Value, 100.0, "%s upper bound", name)
	}
}
