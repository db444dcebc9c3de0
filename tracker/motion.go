package tracker

import (
	"errors"
	"fmt"
	"github.com/swdee/go-cvtrack"
	"gonum.org/v1/gonum/mat"
)

// motionFilter is a constant velocity Kalman filter over the (center x,
// center y, aspect ratio, height) box state.  The classifier based engines
// use it to predict where to search for the target in the next frame
type motionFilter struct {
	stdWeightPosition float64
	stdWeightVelocity float64
	motionMat         *mat.Dense
	updateMat         *mat.Dense
	// mean is the 8 dimensional state of position and velocity
	mean *mat.VecDense
	cov  *mat.Dense
}

// newMotionFilter returns a filter with the given process noise weights
// relative to the box height
func newMotionFilter(stdWeightPosition, stdWeightVelocity float64) *motionFilter {

	ndim := 4
	dt := 1.0

	// identity with the velocity terms added to the position
	motionMat := mat.NewDense(8, 8, nil)

	for i := 0; i < 8; i++ {
		motionMat.Set(i, i, 1)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	// observe the position terms only
	updateMat := mat.NewDense(4, 8, nil)

	for i := 0; i < 4; i++ {
		updateMat.Set(i, i, 1)
	}

	return &motionFilter{
		stdWeightPosition: stdWeightPosition,
		stdWeightVelocity: stdWeightVelocity,
		motionMat:         motionMat,
		updateMat:         updateMat,
		mean:              mat.NewVecDense(8, nil),
		cov:               mat.NewDense(8, 8, nil),
	}
}

// initiate resets the state to the region with zero velocity
func (kf *motionFilter) initiate(r cvtrack.Region) {

	m := r.Xyah()
	h := m[3]

	kf.mean = mat.NewVecDense(8, []float64{m[0], m[1], m[2], m[3], 0, 0, 0, 0})

	std := []float64{
		2 * kf.stdWeightPosition * h,  // x position
		2 * kf.stdWeightPosition * h,  // y position
		1e-2,                          // aspect ratio
		2 * kf.stdWeightPosition * h,  // height
		10 * kf.stdWeightVelocity * h, // x velocity
		10 * kf.stdWeightVelocity * h, // y velocity
		1e-5,                          // aspect ratio velocity
		10 * kf.stdWeightVelocity * h, // height velocity
	}

	kf.cov = mat.NewDense(8, 8, nil)

	for i, v := range std {
		kf.cov.Set(i, i, v*v)
	}
}

// predict advances the state one frame and returns the predicted region
func (kf *motionFilter) predict() cvtrack.Region {

	h := kf.mean.AtVec(3)

	std := []float64{
		kf.stdWeightPosition * h,
		kf.stdWeightPosition * h,
		1e-2,
		kf.stdWeightPosition * h,
		kf.stdWeightVelocity * h,
		kf.stdWeightVelocity * h,
		1e-5,
		kf.stdWeightVelocity * h,
	}

	motionCov := mat.NewDense(8, 8, nil)

	for i, v := range std {
		motionCov.Set(i, i, v*v)
	}

	mean := mat.NewVecDense(8, nil)
	mean.MulVec(kf.motionMat, kf.mean)
	kf.mean = mean

	var tmp, cov mat.Dense
	tmp.Mul(kf.motionMat, kf.cov)
	cov.Mul(&tmp, kf.motionMat.T())
	cov.Add(&cov, motionCov)
	kf.cov = &cov

	return kf.region()
}

// correct fuses a measured region into the state
func (kf *motionFilter) correct(r cvtrack.Region) error {

	measurement := r.Xyah()

	projectedMean, projectedCov := kf.project()

	chol := mat.Cholesky{}

	if ok := chol.Factorize(projectedCov); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	b := mat.NewDense(8, 4, nil)
	b.Mul(kf.cov, kf.updateMat.T())

	var gain mat.Dense

	if err := chol.SolveTo(&gain, b.T()); err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	innovation := mat.NewVecDense(4, nil)

	for i := 0; i < 4; i++ {
		innovation.SetVec(i, measurement[i]-projectedMean.AtVec(i))
	}

	delta := mat.NewVecDense(8, nil)
	delta.MulVec(gain.T(), innovation)
	kf.mean.AddVec(kf.mean, delta)

	var tmp, tmp2, cov mat.Dense
	tmp.Mul(gain.T(), projectedCov)
	tmp2.Mul(&tmp, &gain)
	cov.Sub(kf.cov, &tmp2)
	kf.cov = &cov

	return nil
}

// project maps the state into measurement space adding measurement noise
func (kf *motionFilter) project() (*mat.VecDense, *mat.SymDense) {

	h := kf.mean.AtVec(3)
	std := []float64{
		kf.stdWeightPosition * h,
		kf.stdWeightPosition * h,
		1e-1,
		kf.stdWeightPosition * h,
	}

	mean := mat.NewVecDense(4, nil)
	mean.MulVec(kf.updateMat, kf.mean)

	var tmp, proj mat.Dense
	tmp.Mul(kf.updateMat, kf.cov)
	proj.Mul(&tmp, kf.updateMat.T())

	cov := mat.NewSymDense(4, nil)

	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			cov.SetSym(i, j, proj.At(i, j))
		}
		cov.SetSym(i, i, cov.At(i, i)+std[i]*std[i])
	}

	return mean, cov
}

// region returns the current position state as a region
func (kf *motionFilter) region() cvtrack.Region {
	return cvtrack.RegionFromXyah(cvtrack.Xyah{
		kf.mean.AtVec(0), kf.mean.AtVec(1), kf.mean.AtVec(2), kf.mean.AtVec(3),
	})
}
