package cvtrack

import (
	"fmt"
)

// Params are the construction parameters of a tracker variant.  Only
// Boosting, MIL, KCF, MedianFlow and CSRT define parameters
type Params interface {
	// Variant returns the tracker variant the parameters belong to
	Variant() Variant
	// Validate checks the parameter values
	Validate() error
}

// BoostingParams defines the parameters of the online boosting tracker
type BoostingParams struct {
	// NumClassifiers is the number of selectors in the strong classifier
	NumClassifiers int
	// SamplerOverlap is the overlap between neighbouring search windows
	SamplerOverlap float64
	// SamplerSearchFactor is the search region size relative to the target
	SamplerSearchFactor float64
	// ItersInit is the number of classifier updates run at initialization
	ItersInit int
	// FeatureSetNumFeatures is the size of the Haar feature pool
	FeatureSetNumFeatures int
}

// DefaultBoostingParams returns the default boosting tracker parameters
func DefaultBoostingParams() BoostingParams {
	return BoostingParams{
		NumClassifiers:        100,
		SamplerOverlap:        0.99,
		SamplerSearchFactor:   1.8,
		ItersInit:             50,
		FeatureSetNumFeatures: 1050,
	}
}

// Variant returns Boosting
func (p BoostingParams) Variant() Variant { return Boosting }

// Validate checks the parameter values
func (p BoostingParams) Validate() error {
	switch {
	case p.NumClassifiers <= 0:
		return paramErr(p, "NumClassifiers must be positive")
	case p.FeatureSetNumFeatures < p.NumClassifiers:
		return paramErr(p, "FeatureSetNumFeatures must be at least NumClassifiers")
	case p.SamplerOverlap < 0 || p.SamplerOverlap >= 1:
		return paramErr(p, "SamplerOverlap must be within [0,1)")
	case p.SamplerSearchFactor < 1:
		return paramErr(p, "SamplerSearchFactor must be at least 1")
	case p.ItersInit < 0:
		return paramErr(p, "ItersInit must not be negative")
	}
	return nil
}

// MILParams defines the parameters of the Multiple Instance Learning tracker
type MILParams struct {
	// SamplerInitInRadius is the radius for gathering positive instances
	// during initialization
	SamplerInitInRadius float64
	// SamplerInitMaxNegNum is the number of negative samples used during
	// initialization
	SamplerInitMaxNegNum int
	// SamplerSearchWinSize is the search radius around the previous location
	SamplerSearchWinSize float64
	// SamplerTrackInRadius is the radius for gathering positive instances
	// during tracking
	SamplerTrackInRadius float64
	// SamplerTrackMaxPosNum is the maximum positive instances used in tracking
	SamplerTrackMaxPosNum int
	// SamplerTrackMaxNegNum is the maximum negative instances used in tracking
	SamplerTrackMaxNegNum int
	// FeatureSetNumFeatures is the size of the Haar feature pool
	FeatureSetNumFeatures int
}

// DefaultMILParams returns the default MIL tracker parameters
func DefaultMILParams() MILParams {
	return MILParams{
		SamplerInitInRadius:   3,
		SamplerInitMaxNegNum:  65,
		SamplerSearchWinSize:  25,
		SamplerTrackInRadius:  4,
		SamplerTrackMaxPosNum: 100000,
		SamplerTrackMaxNegNum: 65,
		FeatureSetNumFeatures: 250,
	}
}

// Variant returns MIL
func (p MILParams) Variant() Variant { return MIL }

// Validate checks the parameter values
func (p MILParams) Validate() error {
	switch {
	case p.SamplerInitInRadius <= 0 || p.SamplerTrackInRadius <= 0:
		return paramErr(p, "sampler radii must be positive")
	case p.SamplerSearchWinSize <= p.SamplerTrackInRadius:
		return paramErr(p, "SamplerSearchWinSize must exceed SamplerTrackInRadius")
	case p.SamplerInitMaxNegNum <= 0 || p.SamplerTrackMaxNegNum <= 0:
		return paramErr(p, "negative sample counts must be positive")
	case p.SamplerTrackMaxPosNum <= 0:
		return paramErr(p, "SamplerTrackMaxPosNum must be positive")
	case p.FeatureSetNumFeatures < MILSelectedFeatures:
		return paramErr(p, fmt.Sprintf("FeatureSetNumFeatures must be at least %d",
			MILSelectedFeatures))
	}
	return nil
}

// MILSelectedFeatures is the number of weak classifiers the MIL strong
// classifier selects from the feature pool
const MILSelectedFeatures = 50

// KCFParams defines the parameters of the Kernelized Correlation Filter
// tracker
type KCFParams struct {
	// DetectThresh is the minimum peak response for the target to be found
	DetectThresh float64
	// Sigma is the Gaussian kernel bandwidth
	Sigma float64
	// Lambda is the ridge regression regularization
	Lambda float64
	// InterpFactor is the linear interpolation factor for adaptation
	InterpFactor float64
	// OutputSigmaFactor is the spatial bandwidth of the regression target,
	// proportional to the target size
	OutputSigmaFactor float64
	// Padding is the extra area surrounding the target, relative to its size
	Padding float64
	// Resize enables downscaling of large patches to MaxPatchSize
	Resize bool
	// MaxPatchSize is the maximum patch area in pixels when Resize is set
	MaxPatchSize int
}

// DefaultKCFParams returns the default KCF tracker parameters
func DefaultKCFParams() KCFParams {
	return KCFParams{
		DetectThresh:      0.5,
		Sigma:             0.2,
		Lambda:            0.0001,
		InterpFactor:      0.075,
		OutputSigmaFactor: 1.0 / 16.0,
		Padding:           1.5,
		Resize:            true,
		MaxPatchSize:      80 * 80,
	}
}

// Variant returns KCF
func (p KCFParams) Variant() Variant { return KCF }

// Validate checks the parameter values
func (p KCFParams) Validate() error {
	switch {
	case p.Sigma <= 0:
		return paramErr(p, "Sigma must be positive")
	case p.Lambda <= 0:
		return paramErr(p, "Lambda must be positive")
	case p.InterpFactor < 0 || p.InterpFactor > 1:
		return paramErr(p, "InterpFactor must be within [0,1]")
	case p.OutputSigmaFactor <= 0:
		return paramErr(p, "OutputSigmaFactor must be positive")
	case p.Padding < 0:
		return paramErr(p, "Padding must not be negative")
	case p.Resize && p.MaxPatchSize < 16:
		return paramErr(p, "MaxPatchSize must be at least 16")
	}
	return nil
}

// MedianFlowParams defines the parameters of the Median Flow tracker
type MedianFlowParams struct {
	// PointsInGrid is the number of points tracked along each axis of the
	// target region
	PointsInGrid int
	// WinSize is the half size of the Lucas-Kanade window
	WinSize int
	// MaxLevel is the maximum pyramid level used by Lucas-Kanade
	MaxLevel int
	// MaxIterations is the Lucas-Kanade iteration limit per level
	MaxIterations int
	// Epsilon is the Lucas-Kanade convergence threshold in pixels
	Epsilon float64
	// WinSizeNCC is the patch size used for normalized cross correlation
	WinSizeNCC int
	// MaxMedianLengthOfDisplacementDifference is the maximum median
	// forward-backward error for the target to be found
	MaxMedianLengthOfDisplacementDifference float64
}

// DefaultMedianFlowParams returns the default Median Flow tracker parameters
func DefaultMedianFlowParams() MedianFlowParams {
	return MedianFlowParams{
		PointsInGrid:  10,
		WinSize:       3,
		MaxLevel:      5,
		MaxIterations: 20,
		Epsilon:       0.3,
		WinSizeNCC:    30,

		MaxMedianLengthOfDisplacementDifference: 10,
	}
}

// MedianFlowPoints returns the default Median Flow parameters with the given
// number of grid points per axis
func MedianFlowPoints(pointsInGrid int) MedianFlowParams {
	p := DefaultMedianFlowParams()
	p.PointsInGrid = pointsInGrid
	return p
}

// Variant returns MedianFlow
func (p MedianFlowParams) Variant() Variant { return MedianFlow }

// Validate checks the parameter values
func (p MedianFlowParams) Validate() error {
	switch {
	case p.PointsInGrid <= 0:
		return paramErr(p, "PointsInGrid must be positive")
	case p.WinSize <= 0:
		return paramErr(p, "WinSize must be positive")
	case p.MaxLevel < 0:
		return paramErr(p, "MaxLevel must not be negative")
	case p.MaxIterations <= 0:
		return paramErr(p, "MaxIterations must be positive")
	case p.Epsilon <= 0:
		return paramErr(p, "Epsilon must be positive")
	case p.WinSizeNCC <= 0:
		return paramErr(p, "WinSizeNCC must be positive")
	case p.MaxMedianLengthOfDisplacementDifference <= 0:
		return paramErr(p, "MaxMedianLengthOfDisplacementDifference must be positive")
	}
	return nil
}

// CSRTParams defines the parameters of the Discriminative Correlation Filter
// with Channel and Spatial Reliability tracker
type CSRTParams struct {
	// Padding is the extra area surrounding the target, relative to its size
	Padding float64
	// TemplateSize is the side length the padded patch is scaled to
	TemplateSize int
	// GslSigma is the Gaussian label bandwidth
	GslSigma float64
	// UseGray enables the intensity feature channel
	UseGray bool
	// UseGradient enables the horizontal and vertical gradient channels
	UseGradient bool
	// FilterLR is the filter learning rate
	FilterLR float64
	// WeightsLR is the channel reliability learning rate
	WeightsLR float64
	// AdmmIterations is the number of ADMM iterations solving the
	// constrained filter
	AdmmIterations int
	// PSRThreshold is the minimum peak to sidelobe ratio for the target to
	// be found
	PSRThreshold float64
}

// DefaultCSRTParams returns the default CSRT tracker parameters
func DefaultCSRTParams() CSRTParams {
	return CSRTParams{
		Padding:        2,
		TemplateSize:   64,
		GslSigma:       1,
		UseGray:        true,
		UseGradient:    true,
		FilterLR:       0.02,
		WeightsLR:      0.02,
		AdmmIterations: 4,
		PSRThreshold:   4,
	}
}

// Variant returns CSRT
func (p CSRTParams) Variant() Variant { return CSRT }

// Validate checks the parameter values
func (p CSRTParams) Validate() error {
	switch {
	case p.Padding < 0:
		return paramErr(p, "Padding must not be negative")
	case p.TemplateSize < 16:
		return paramErr(p, "TemplateSize must be at least 16")
	case p.GslSigma <= 0:
		return paramErr(p, "GslSigma must be positive")
	case !p.UseGray && !p.UseGradient:
		return paramErr(p, "at least one feature channel must be enabled")
	case p.FilterLR < 0 || p.FilterLR > 1 || p.WeightsLR < 0 || p.WeightsLR > 1:
		return paramErr(p, "learning rates must be within [0,1]")
	case p.AdmmIterations <= 0:
		return paramErr(p, "AdmmIterations must be positive")
	}
	return nil
}

// DefaultParams returns the default parameters of a variant, or nil if the
// variant has no parameter schema
func DefaultParams(v Variant) Params {
	switch v {
	case Boosting:
		return DefaultBoostingParams()
	case MIL:
		return DefaultMILParams()
	case KCF:
		return DefaultKCFParams()
	case MedianFlow:
		return DefaultMedianFlowParams()
	case CSRT:
		return DefaultCSRTParams()
	}
	return nil
}

// HasParams reports whether the variant defines a parameter schema
func HasParams(v Variant) bool {
	return DefaultParams(v) != nil
}

// resolveParams returns the parameters to construct the variant with,
// applying defaults when none are given
func resolveParams(v Variant, p Params) (Params, error) {

	if p == nil {
		return DefaultParams(v), nil
	}

	if !HasParams(v) {
		return nil, fmt.Errorf("%w: %s has no parameter type",
			ErrUnsupportedParameterization, v)
	}

	if p.Variant() != v {
		return nil, fmt.Errorf("%w: %s parameters given to %s",
			ErrUnsupportedParameterization, p.Variant(), v)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// paramErr formats a parameter validation error
func paramErr(p Params, msg string) error {
	return fmt.Errorf("%w: %s params: %s", ErrInvalidArgument, p.Variant(), msg)
}
