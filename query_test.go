package cvtrack

import (
	"bytes"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestQueryCapabilities(t *testing.T) {

	b := newFakeBackend()
	b.version = V(3, 2, 0)

	var buf bytes.Buffer
	require.NoError(t, QueryCapabilities(&buf, b))

	out := buf.String()

	assert.Contains(t, out, "Backend: fake, Library Version: 3.2.0")
	assert.Contains(t, out, "MultiTracker: available")
	assert.Contains(t, out, fmt.Sprintf("  %-10s available", "KCF"))
	assert.Contains(t, out, fmt.Sprintf("  %-10s unavailable: requires version 3.4.1 or later", "CSRT"))
	assert.Contains(t, out, fmt.Sprintf("    %-8s unavailable: update does not complete", "update"))

	assert.ErrorIs(t, QueryCapabilities(&buf, nil), ErrInvalidArgument)
}

func TestQueryCapabilitiesBoundVariants(t *testing.T) {

	b := &bindingBackend{fakeBackend: newFakeBackend(), bound: []Variant{MIL, KCF, CSRT}}

	var buf bytes.Buffer
	require.NoError(t, QueryCapabilities(&buf, b))

	out := buf.String()

	assert.Contains(t, out, fmt.Sprintf("  %-10s available", "KCF"))
	assert.Contains(t, out, fmt.Sprintf("  %-10s unavailable: not provided by the fake backend", "BOOSTING"))
	assert.Contains(t, out, fmt.Sprintf("  %-10s unavailable: not provided by the fake backend", "MOSSE"))
	assert.NotContains(t, out, fmt.Sprintf("  %-10s available", "TLD"))

	assert.Equal(t, []Variant{MIL, KCF, CSRT}, BackendVariants(b))

	// construction follows the report
	_, err := New(b, Boosting, nil)
	assert.ErrorIs(t, err, ErrUnavailable)

	tr, err := New(b, KCF, nil)
	require.NoError(t, err)
	require.NoError(t, tr.Close())

	// backends without the optional interface provide every available variant
	assert.Equal(t, AvailableVariants(V(4, 9, 0)), BackendVariants(newFakeBackend()))
}
