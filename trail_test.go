package cvtrack

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestTrail(t *testing.T) {

	tr := NewTrail(3)

	for i := 0; i < 5; i++ {
		r := R(float64(i*10), 0, 10, 10)
		tr.AddAll([]*Region{&r, nil})
	}

	// only the most recent points are kept
	assert.Equal(t, []Point{{25, 5}, {35, 5}, {45, 5}}, tr.GetPoints(0))

	// lost targets leave no points
	assert.Nil(t, tr.GetPoints(1))

	// returned points are a copy
	pts := tr.GetPoints(0)
	pts[0].X = -1
	assert.Equal(t, 25, tr.GetPoints(0)[0].X)

	tr.Reset()
	assert.Nil(t, tr.GetPoints(0))
}

func TestTrailNonPositiveSize(t *testing.T) {

	for _, size := range []int{0, -3} {
		tr := NewTrail(size)

		for i := 0; i < 3; i++ {
			r := R(float64(i*10), 0, 10, 10)
			tr.Add(0, &r)
		}

		assert.Equal(t, []Point{{25, 5}}, tr.GetPoints(0))
	}
}
