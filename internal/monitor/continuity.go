package monitor

import "time"

const monthLayout = "2006-01"

// ContinuityReport describes gaps in the monthly data sequence.
type ContinuityReport struct {
	IsContinuous bool
	Missing      []string // month labels absent between the first and last month
}

// CheckContinuity walks the sorted month labels and enumerates every month
// missing between consecutive entries. Zero or one month is trivially
// continuous. Labels must be in YYYY-MM form, labels that fail to parse are
// ignored.
func CheckContinuity(months []string) ContinuityReport {
	report := ContinuityReport{
		IsContinuous: true,
		Missing:      []string{},
	}

	var parsed []time.Time
	for _, label := range months {
		t, err := time.Parse(monthLayout, label)
		if err != nil {
			continue
		}
		parsed = append(parsed, t)
	}

	for i := 1; i < len(parsed); i++ {
		for m := parsed[i-1].AddDate(0, 1, 0); m.Before(parsed[i]); m = m.AddDate(0, 1, 0) {
			report.Missing = append(report.Missing, m.Format(monthLayout))
			report.IsContinuous = false
		}
	}

	return report
}
