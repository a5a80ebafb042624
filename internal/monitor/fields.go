package monitor

import (
	"strings"

	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// gestationFieldCandidates maps each source system to the exact column names
// it is known to use for days-pregnant, tried in order before falling back
// to fuzzy matching.
var gestationFieldCandidates = map[herd.SystemType][]string{
	herd.SystemAfimilk: {"怀孕天数", "孕期", "Days Pregnant", "DaysPregnant"},
	herd.SystemYimuyun: {"妊娠天数", "怀孕天数", "在孕天数"},
	herd.SystemDHI:     {"孕检天数", "妊娠天数", "怀孕天数"},
	herd.SystemOther:   {"gestation_days", "days_pregnant", "pregnancy_days"},
}

// Fuzzy fallback tokens: a column counts as days-pregnant when it contains
// both a days token and a gestation token, case-insensitively.
var (
	daysTokens      = []string{"天数", "天", "days", "day"}
	gestationTokens = []string{"怀孕", "妊娠", "孕", "gestation", "pregnan", "preg"}
)

// Advisory herd-master columns. Resolution failures here are harmless, the
// fields only enrich the matched roster view.
var (
	parityFieldCandidates    = []string{"胎次", "parity", "lactation_no", "calvings"}
	lactationFieldCandidates = []string{"泌乳天数", "产奶天数", "dim", "days_in_milk", "lactation_days"}
	statusFieldCandidates    = []string{"繁殖状态", "breeding_status", "repro_status", "status"}
)

// ResolveGestationField locates the days-pregnant column for the given
// source system among the available herd-master columns. Exact candidates
// for the system are tried first, then the shared fuzzy fallback. Returns
// ("", false) when nothing matches; callers treat that as pre-dry-off
// prevalence being unavailable, not as an error.
func ResolveGestationField(system herd.SystemType, available []string) (string, bool) {
	candidates, ok := gestationFieldCandidates[system]
	if !ok {
		candidates = gestationFieldCandidates[herd.SystemOther]
	}

	for _, candidate := range candidates {
		for _, field := range available {
			if strings.EqualFold(strings.TrimSpace(field), candidate) {
				return field, true
			}
		}
	}

	for _, field := range available {
		lower := strings.ToLower(strings.TrimSpace(field))
		if containsAny(lower, daysTokens) && containsAny(lower, gestationTokens) {
			return field, true
		}
	}

	return "", false
}

// resolveAdvisoryField finds the first available column matching one of the
// candidates, case-insensitively.
func resolveAdvisoryField(available, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		for _, field := range available {
			if strings.EqualFold(strings.TrimSpace(field), candidate) {
				return field, true
			}
		}
	}
	return "", false
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
