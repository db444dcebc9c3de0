package cvtrack

import (
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestAvailable(t *testing.T) {

	tests := []struct {
		variant Variant
		version Version
		want    bool
	}{
		{CSRT, V(3, 4, 0), false},
		{CSRT, V(3, 4, 1), true},
		{KCF, V(3, 0, 9), false},
		{KCF, V(3, 1, 0), true},
		{MOSSE, V(3, 3, 9), false},
		{MOSSE, V(3, 4, 0), true},
		{Boosting, V(2, 4, 0), true},
		{MIL, V(0, 0, 0), true},
		{MedianFlow, V(3, 0, 0), true},
		{TLD, V(3, 1, 0), true},
		{CSRT, V(4, 0, 0), true},
		{Variant(42), V(4, 0, 0), false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Available(tc.variant, tc.version),
			"%s on %s", tc.variant, tc.version)
	}
}

func TestSupportedExclusions(t *testing.T) {

	// TLD update is excluded on exact point releases only
	assert.False(t, Supported(TLD, OpUpdate, V(3, 1, 0)))
	assert.False(t, Supported(TLD, OpUpdate, V(3, 2, 0)))
	assert.True(t, Supported(TLD, OpUpdate, V(3, 3, 0)))
	assert.True(t, Supported(TLD, OpUpdate, V(3, 1, 1)))
	assert.True(t, Supported(TLD, OpInit, V(3, 1, 0)))
	assert.True(t, Supported(TLD, OpConstruct, V(3, 2, 0)))

	// below the floor nothing is supported
	assert.False(t, Supported(KCF, OpInit, V(3, 0, 0)))

	assert.Equal(t, "update does not complete", exclusionReason(TLD, OpUpdate, V(3, 2, 0)))
	assert.Equal(t, "requires version 3.4.1 or later", exclusionReason(CSRT, OpConstruct, V(3, 4, 0)))
	assert.Equal(t, "", exclusionReason(CSRT, OpUpdate, V(4, 0, 0)))
}

func TestAvailableVariants(t *testing.T) {

	tests := []struct {
		version Version
		want    []Variant
	}{
		{V(3, 0, 0), []Variant{Boosting, MIL, MedianFlow, TLD}},
		{V(3, 1, 0), []Variant{Boosting, MIL, KCF, MedianFlow, TLD}},
		{V(3, 4, 0), []Variant{Boosting, MIL, KCF, MedianFlow, TLD, MOSSE}},
		{V(4, 9, 0), Variants},
	}

	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, AvailableVariants(tc.version)); diff != "" {
			t.Errorf("%s variants mismatch (-want +got):\n%s", tc.version, diff)
		}
	}
}

func TestMultiTrackerAvailable(t *testing.T) {
	assert.False(t, MultiTrackerAvailable(V(3, 0, 9)))
	assert.True(t, MultiTrackerAvailable(V(3, 1, 0)))
	assert.True(t, MultiTrackerAvailable(V(4, 0, 0)))
}

func TestRulesCopy(t *testing.T) {

	rules := Rules()
	require.Len(t, rules, len(Variants))

	for i := range rules {
		rules[i].MinVersion = V(99, 0, 0)
		rules[i].Exclusions = append(rules[i].Exclusions, Exclusion{Op: OpConstruct})
	}

	// the static table is unaffected
	assert.True(t, Available(KCF, V(3, 1, 0)))
	assert.True(t, Available(Boosting, V(0, 0, 0)))
}

func TestParseVariant(t *testing.T) {

	tests := []struct {
		in   string
		want Variant
	}{
		{"KCF", KCF},
		{"kcf", KCF},
		{"TrackerCSRT", CSRT},
		{" medianflow ", MedianFlow},
		{"Boosting", Boosting},
		{"trackerTLD", TLD},
	}

	for _, tc := range tests {
		v, err := ParseVariant(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, v)
	}

	_, err := ParseVariant("GOTURN")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestVariantString(t *testing.T) {

	names := []string{"BOOSTING", "MIL", "KCF", "MEDIANFLOW", "TLD", "MOSSE", "CSRT"}

	for i, v := range Variants {
		assert.Equal(t, names[i], v.String())
	}

	assert.Equal(t, "Variant(0)", Variant(0).String())
	assert.Equal(t, "update", OpUpdate.String())
}
