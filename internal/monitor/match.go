package monitor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// MatchedPair joins one animal's records from two consecutive monthly
// cohorts by normalized id. Produced on demand, never persisted.
type MatchedPair struct {
	ID   string
	Prev herd.TestRecord
	Curr herd.TestRecord
}

// Overlap computes the intersection of two cohorts by normalized id and
// returns the joined pairs sorted by id. The identity set is symmetric in
// the argument order; only the prev/curr labeling follows it. An empty
// overlap is a valid result, not an error.
func Overlap(prev, curr *Cohort) []MatchedPair {
	if prev == nil || curr == nil {
		return nil
	}

	pairs := make([]MatchedPair, 0)
	for id, prevRec := range prev.Records {
		currRec, ok := curr.Records[id]
		if !ok {
			continue
		}
		pairs = append(pairs, MatchedPair{ID: id, Prev: prevRec, Curr: currRec})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })
	return pairs
}

// HerdMaster holds one roster snapshot. The engine keeps at most one at a
// time; loading a new roster replaces the previous one. The snapshot is
// treated as contemporaneous with the latest test month.
type HerdMaster struct {
	rows       []herd.MasterRow
	fieldNames []string                  // union of column names across rows, sorted
	byTag      map[string]herd.MasterRow // normalized ear tag -> row, last wins
}

// NewHerdMaster indexes roster rows by normalized ear tag.
func NewHerdMaster(rows []herd.MasterRow) *HerdMaster {
	hm := &HerdMaster{
		rows:  rows,
		byTag: make(map[string]herd.MasterRow, len(rows)),
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		hm.byTag[herd.NormalizeID(row.EarTag)] = row
		for name := range row.Fields {
			if !seen[name] {
				seen[name] = true
				hm.fieldNames = append(hm.fieldNames, name)
			}
		}
	}
	sort.Strings(hm.fieldNames)
	return hm
}

// Size returns the number of distinct animals in the roster.
func (hm *HerdMaster) Size() int {
	if hm == nil {
		return 0
	}
	return len(hm.byTag)
}

// FieldNames returns the union of column names seen across roster rows.
func (hm *HerdMaster) FieldNames() []string {
	return hm.fieldNames
}

// RosterMatch joins one cohort animal to its roster row, with the gestation
// value already resolved. GestationDays is nil when the resolved column was
// empty or unparseable for this animal.
type RosterMatch struct {
	ID            string
	Test          herd.TestRecord
	Master        herd.MasterRecord
	GestationDays *int
}

// matchRoster joins a cohort to the roster by normalized id and resolves the
// given gestation column (plus advisory columns) per matched animal. Results
// are sorted by id.
func (hm *HerdMaster) matchRoster(cohort *Cohort, gestationField string) []RosterMatch {
	parityField, _ := resolveAdvisoryField(hm.fieldNames, parityFieldCandidates)
	lactationField, _ := resolveAdvisoryField(hm.fieldNames, lactationFieldCandidates)
	statusField, _ := resolveAdvisoryField(hm.fieldNames, statusFieldCandidates)

	matches := make([]RosterMatch, 0)
	for id, rec := range cohort.Records {
		row, ok := hm.byTag[id]
		if !ok {
			continue
		}

		master := herd.MasterRecord{
			EarTag:        id,
			GestationDays: parseIntField(row.Fields, gestationField),
			Parity:        parseIntField(row.Fields, parityField),
			LactationDays: parseIntField(row.Fields, lactationField),
		}
		if statusField != "" {
			master.BreedingStatus = strings.TrimSpace(row.Fields[statusField])
		}

		matches = append(matches, RosterMatch{
			ID:            id,
			Test:          rec,
			Master:        master,
			GestationDays: master.GestationDays,
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches
}

// parseIntField parses an integer column value, nil when the column is
// unresolved, empty or not a number.
func parseIntField(fields map[string]string, name string) *int {
	if name == "" {
		return nil
	}
	raw := strings.TrimSpace(fields[name])
	if raw == "" {
		return nil
	}
	// Some exports format integer columns as decimals.
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		v := int(f)
		return &v
	}
	return nil
}
