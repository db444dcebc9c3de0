package cvtrack

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMultiTrackerGate(t *testing.T) {

	b := newFakeBackend()
	b.version = V(3, 0, 0)

	_, err := NewMultiTracker(b)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewMultiTracker(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	b.version = V(3, 1, 0)
	_, err = NewMultiTracker(b)
	assert.NoError(t, err)
}

// addAll adds every variant available on the backend's version in the
// declaration order, returning the variants added
func addAll(t *testing.T, mt *MultiTracker, b *fakeBackend) []Variant {

	adders := map[Variant]func(*Frame, Region) (bool, error){
		Boosting:   mt.AddBoosting,
		MIL:        mt.AddMIL,
		KCF:        mt.AddKCF,
		MedianFlow: mt.AddMedianFlow,
		TLD:        mt.AddTLD,
		MOSSE:      mt.AddMOSSE,
		CSRT:       mt.AddCSRT,
	}

	var added []Variant

	for i, v := range AvailableVariants(b.Version()) {
		ok, err := adders[v](testFrame(), R(float64(i), 0, 10, 10))
		require.NoError(t, err)
		require.True(t, ok)
		added = append(added, v)
	}

	return added
}

func TestMultiTrackerUpdateOrder(t *testing.T) {

	for _, ver := range []Version{V(3, 1, 0), V(3, 2, 0), V(3, 4, 0), V(4, 9, 0)} {
		t.Run(ver.String(), func(t *testing.T) {

			b := newFakeBackend()
			b.version = ver

			mt, err := NewMultiTracker(b)
			require.NoError(t, err)
			defer mt.Close()

			added := addAll(t, mt, b)

			assert.Equal(t, len(added), mt.Len())
			assert.Equal(t, added, mt.Variants())

			res, err := mt.Update(testFrame())
			require.NoError(t, err)
			require.Len(t, res, len(added))

			// each tracker moved its own seed one pixel right, trackers
			// whose update is excluded report no region
			for i, r := range res {
				if !Supported(added[i], OpUpdate, ver) {
					assert.Nil(t, r, added[i].String())
					continue
				}

				require.NotNil(t, r)
				assert.Equal(t, R(float64(i)+1, 0, 10, 10), *r)
			}
		})
	}
}

func TestMultiTrackerAddRejected(t *testing.T) {

	b := newFakeBackend()
	mt, err := NewMultiTracker(b)
	require.NoError(t, err)

	ok, err := mt.AddMIL(testFrame(), R(0, 0, 10, 10))
	require.NoError(t, err)
	require.True(t, ok)

	// rejected seeds are not appended
	b.initOK = false
	ok, err = mt.AddKCF(testFrame(), R(0, 0, 10, 10))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, b.engines[1].closed)

	// invalid arguments are errors
	_, err = mt.AddBoosting(nil, R(0, 0, 10, 10))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = mt.AddBoosting(testFrame(), Region{})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// unavailable variants are errors
	b.version = V(3, 3, 0)
	_, err = mt.AddMOSSE(testFrame(), R(0, 0, 10, 10))
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.Equal(t, 1, mt.Len())

	_, err = mt.Update(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMultiTrackerLostKeepsSlot(t *testing.T) {

	b := newFakeBackend()
	mt, err := NewMultiTracker(b)
	require.NoError(t, err)

	ok, err := mt.AddMIL(testFrame(), R(0, 0, 10, 10))
	require.NoError(t, err)
	require.True(t, ok)

	b.lostAfter = 1
	ok, err = mt.AddMedianFlow(testFrame(), R(20, 0, 10, 10))
	require.NoError(t, err)
	require.True(t, ok)

	b.lostAfter = 0
	ok, err = mt.AddTLD(testFrame(), R(40, 0, 10, 10))
	require.NoError(t, err)
	require.True(t, ok)

	for i := 0; i < 2; i++ {
		res, err := mt.Update(testFrame())
		require.NoError(t, err)
		require.Len(t, res, 3)

		assert.NotNil(t, res[0])
		assert.Nil(t, res[1])
		assert.NotNil(t, res[2])
	}

	models := mt.Models()
	require.Len(t, models, 3)
	assert.Equal(t, 2, models[1].Lost)
}

func TestMultiTrackerParallel(t *testing.T) {

	b := newFakeBackend()
	obs := &recordingObserver{}

	mt, err := NewMultiTracker(b, WithWorkers(4), WithObserver(obs))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		ok, err := mt.Add(Variants[i%len(Variants)], testFrame(), R(float64(i), 0, 10, 10))
		require.NoError(t, err)
		require.True(t, ok)
	}

	for step := 1; step <= 3; step++ {
		res, err := mt.Update(testFrame())
		require.NoError(t, err)
		require.Len(t, res, 20)

		for i, r := range res {
			require.NotNil(t, r)
			assert.Equal(t, float64(i+step), r.X)
		}
	}

	assert.Equal(t, 20, obs.inits)
	assert.Equal(t, 60, obs.updates)
}

func TestMultiTrackerParallelError(t *testing.T) {

	b := newFakeBackend()
	mt, err := NewMultiTracker(b, WithWorkers(2))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		b.failUpdate = i == 1
		ok, err := mt.AddMIL(testFrame(), R(0, 0, 10, 10))
		require.NoError(t, err)
		require.True(t, ok)
	}

	_, err = mt.Update(testFrame())
	assert.ErrorIs(t, err, errFakeUpdate)
}

func TestMultiTrackerExcludedUpdate(t *testing.T) {

	for _, workers := range []int{1, 3} {
		b := newFakeBackend()
		b.version = V(3, 2, 0)

		mt, err := NewMultiTracker(b, WithWorkers(workers))
		require.NoError(t, err)

		_, err = mt.AddMIL(testFrame(), R(0, 0, 10, 10))
		require.NoError(t, err)
		_, err = mt.AddTLD(testFrame(), R(5, 0, 10, 10))
		require.NoError(t, err)
		_, err = mt.AddKCF(testFrame(), R(9, 0, 10, 10))
		require.NoError(t, err)

		for step := 1; step <= 2; step++ {
			res, err := mt.Update(testFrame())
			require.NoError(t, err)
			require.Len(t, res, 3)

			require.NotNil(t, res[0])
			require.NotNil(t, res[2])
			assert.Equal(t, R(float64(step), 0, 10, 10), *res[0])
			assert.Nil(t, res[1])
			assert.Equal(t, R(float64(9+step), 0, 10, 10), *res[2])
		}

		// the excluded tracker stays seeded
		assert.Equal(t, Tracking, mt.Models()[1].State)
		require.NoError(t, mt.Close())
	}
}
