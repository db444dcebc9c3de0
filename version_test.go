package cvtrack

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseVersion(t *testing.T) {

	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"4.9.0", V(4, 9, 0), false},
		{"3.4", V(3, 4, 0), false},
		{"v3.4.1", V(3, 4, 1), false},
		{"4.10.0-dev", V(4, 10, 0), false},
		{" 4.5.5+build ", V(4, 5, 5), false},
		{"4", Version{}, true},
		{"4.x.0", Version{}, true},
		{"1.2.3.4", Version{}, true},
		{"4.-1.0", Version{}, true},
		{"", Version{}, true},
	}

	for _, tc := range tests {
		got, err := ParseVersion(tc.in)

		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidArgument, tc.in)
			continue
		}

		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	assert.Panics(t, func() { MustParseVersion("bad") })
	assert.Equal(t, V(3, 1, 0), MustParseVersion("3.1.0"))
}

func TestVersionCompare(t *testing.T) {

	tests := []struct {
		a, b Version
		want int
	}{
		{V(3, 4, 1), V(3, 4, 1), 0},
		{V(3, 4, 0), V(3, 4, 1), -1},
		{V(3, 5, 0), V(3, 4, 9), 1},
		{V(4, 0, 0), V(3, 9, 9), 1},
		{V(2, 9, 9), V(3, 0, 0), -1},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.a.Compare(tc.b), "%s vs %s", tc.a, tc.b)
		assert.Equal(t, -tc.want, tc.b.Compare(tc.a), "%s vs %s", tc.b, tc.a)
	}
}

func TestVersionPredicates(t *testing.T) {

	v := V(3, 4, 1)

	assert.True(t, v.GreaterEqual(3, 4, 1))
	assert.True(t, v.GreaterEqual(3, 4, 0))
	assert.False(t, v.GreaterEqual(3, 4, 2))
	assert.True(t, v.Equal(3, 4, 1))
	assert.False(t, v.Equal(3, 4, 0))
	assert.True(t, Version{}.IsZero())
	assert.False(t, v.IsZero())
	assert.Equal(t, "3.4.1", v.String())
}
