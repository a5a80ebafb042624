package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/herdwatch/herdwatch-go/internal/herd"
)

func TestResolveGestationFieldExactMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		system    herd.SystemType
		available []string
		want      string
	}{
		{
			name:      "afimilk primary name",
			system:    herd.SystemAfimilk,
			available: []string{"胎次", "怀孕天数", "泌乳天数"},
			want:      "怀孕天数",
		},
		{
			name:      "yimuyun primary name",
			system:    herd.SystemYimuyun,
			available: []string{"妊娠天数", "胎次"},
			want:      "妊娠天数",
		},
		{
			name:      "dhi primary name",
			system:    herd.SystemDHI,
			available: []string{"孕检天数"},
			want:      "孕检天数",
		},
		{
			name:      "other english name case-insensitive",
			system:    herd.SystemOther,
			available: []string{"Gestation_Days", "parity"},
			want:      "Gestation_Days",
		},
		{
			name:      "candidate order respected",
			system:    herd.SystemYimuyun,
			available: []string{"怀孕天数", "妊娠天数"},
			want:      "妊娠天数",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveGestationField(tt.system, tt.available)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveGestationFieldFuzzyFallback(t *testing.T) {
	t.Parallel()

	// "怀孕天数" is not in the exact candidate list for system "other" but
	// contains both a gestation token and a days token.
	got, ok := ResolveGestationField(herd.SystemOther, []string{"怀孕天数"})
	assert.True(t, ok)
	assert.Equal(t, "怀孕天数", got)

	got, ok = ResolveGestationField(herd.SystemOther, []string{"Pregnancy Days Remaining"})
	assert.True(t, ok)
	assert.Equal(t, "Pregnancy Days Remaining", got)
}

func TestResolveGestationFieldNoMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		available []string
	}{
		{"no fields at all", nil},
		{"unrelated fields", []string{"胎次", "泌乳天数", "milk_yield"}},
		{"days token without gestation token", []string{"产奶天数"}},
		{"gestation token without days token", []string{"pregnancy_check"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveGestationField(herd.SystemOther, tt.available)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestResolveAdvisoryField(t *testing.T) {
	t.Parallel()

	got, ok := resolveAdvisoryField([]string{"怀孕天数", "胎次"}, parityFieldCandidates)
	assert.True(t, ok)
	assert.Equal(t, "胎次", got)

	_, ok = resolveAdvisoryField([]string{"怀孕天数"}, statusFieldCandidates)
	assert.False(t, ok)
}
