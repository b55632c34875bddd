package lmod

import(
	"log"
	"math"
	"sort"

	"github.com/openphoto/lenskit/pkg/ldb"
	"github.com/openphoto/lenskit/pkg/lmath"
)

// A Modifier holds the three callback chains that rectify (or simulate)
// the aberrations of one lens at one set of shooting parameters, plus the
// constants of the normalized coordinate system they work in.
//
// The normalized system has its origin at the optical center and uses half
// the long side of the calibration frame as its unit, so coefficients
// measured on one sensor apply to another. All coordinate kernels consume
// and produce normalized coordinates; the block-apply entry points convert
// at the chain boundaries.
//
// After Initialize returns, nothing mutates the modifier, so the apply
// methods may be called concurrently on disjoint tiles.
type Modifier struct {
	// Coordinate grid extents; original image dimensions minus one
	Width, Height float64
	// Optical center in pixel coordinates
	CenterX, CenterY float64
	// Conversion to and from normalized coordinates
	NormScale, NormUnScale float64
	// Length of one normalized unit on the camera sensor, in mm
	NormalizedInMillimeters float64
	// Converts the long-side radius unit to the vignetting short-side unit
	AspectRatioCorrection float64
	// Clip bounds of the original image in normalized coordinates
	MaxX, MaxY float64
	// Nominal focal length in normalized units
	FocalLengthNormalized float64
	// Real (paraxial) focal length in normalized units
	RealFocalLengthNormalized float64
	// Whether we simulate the lens rather than correct it
	Reverse bool

	format PixelFormat

	colorCBs    []colorCallback
	coordCBs    []coordCallback
	subpixelCBs []subpixelCallback
}

// CoordFunc modifies a strip of interleaved (x, y) normalized coordinate
// pairs in place.
type CoordFunc func(iocoord []float64)

// SubpixelFunc modifies a strip of interleaved (xR, yR, xG, yG, xB, yB)
// normalized coordinate groups in place.
type SubpixelFunc func(iocoord []float64)

// ColorFunc modifies a strip of pixel groups in place. x and y are the
// image coordinates of the first pixel of the strip; pixels is one of
// []uint8, []uint16, []uint32, []float32, []float64 per the pixel format.
type ColorFunc func(x, y float64, pixels interface{}, roles ComponentRoles, count int)

type colorCallback struct {
	priority int
	fn       ColorFunc
}

type coordCallback struct {
	priority int
	fn       CoordFunc
}

type subpixelCallback struct {
	priority int
	fn       SubpixelFunc
}

// Fixed priorities of the stock kernels. Chains run in ascending priority;
// ties keep insertion order.
const (
	prioScale          = 100
	prioVignettingFwd  = 250
	prioVignettingRev  = 750
	prioPerspective    = 300
	prioGeometry       = 500
	prioTCA            = 500
	prioDistortionFwd  = 750
	prioDistortionRev  = 250
)

// NewModifier sets up the coordinate system for an image of the given
// dimensions shot on a camera with the given crop factor. The lens
// supplies the calibration frame geometry and the optical center shift.
func NewModifier(lens *ldb.Lens, crop float64, width, height int) *Modifier {
	if lens == nil {
		log.Fatalf("lmod: NewModifier called with a nil lens")
	}
	if crop <= 0 {
		log.Fatalf("lmod: NewModifier called with crop factor %f", crop)
	}

	m := &Modifier{}

	// Avoid divide overflows on singular cases
	m.Width = 1
	if width >= 2 {
		m.Width = float64(width - 1)
	}
	m.Height = 1
	if height >= 2 {
		m.Height = float64(height - 1)
	}

	// Optical center shift is a fraction of the image half-extent
	m.CenterX = m.Width/2.0 + lens.CenterX*m.Width/2.0
	m.CenterY = m.Height/2.0 + lens.CenterY*m.Height/2.0

	long, short := m.Width, m.Height
	if long < short {
		long, short = short, long
	}
	imageAspect := long / short

	calibAspect := lens.AspectRatio
	if calibAspect < 1 {
		calibAspect = imageAspect
	}
	calibCrop := lens.CropFactor
	if calibCrop <= 0 {
		calibCrop = crop
	}

	// One normalized unit is half the long side of the calibration frame.
	// Sensors share a diagonal budget of 43.27mm/crop, so going from the
	// camera frame to the calibration frame scales by the crop ratio and
	// the aspect difference.
	g := func(a float64) float64 { return a / math.Sqrt(1+a*a) }
	m.NormScale = 2.0 / long * (calibCrop / crop) * (g(imageAspect) / g(calibAspect))
	m.NormUnScale = 1.0 / m.NormScale

	m.NormalizedInMillimeters = lmath.HalfLongSide(crop, imageAspect)

	// Vignetting data is normalized to the short side of the calibration
	// frame rather than the long one
	m.AspectRatioCorrection = calibAspect

	m.MaxX = math.Max(m.CenterX, m.Width-m.CenterX) * m.NormScale
	m.MaxY = math.Max(m.CenterY, m.Height-m.CenterY) * m.NormScale

	return m
}

// Initialize populates the callback chains for the corrections requested
// in flags, interpolating each calibration at the given shooting
// parameters. Corrections with no usable calibration drop out silently.
// It returns the subset of flags that actually installed a kernel.
//
// Aperture and distance matter only for vignetting; when unknown, a
// distance of 1000 is a usable stand-in. A scale of 0 requests autoscale,
// 1 disables scaling. With reverse set, the chains simulate the lens
// instead of correcting it.
func (m *Modifier)Initialize(lens *ldb.Lens, format PixelFormat, focal, aperture,
	distance, scale float64, targeom ldb.LensType, flags int, reverse bool) int {

	if lens == nil {
		log.Fatalf("lmod: Initialize called with a nil lens")
	}

	flags &^= deprecatedFlagBits

	m.Reverse = reverse
	m.format = format
	m.FocalLengthNormalized = focal / m.NormalizedInMillimeters
	m.RealFocalLengthNormalized = m.realFocalLength(lens, focal) / m.NormalizedInMillimeters

	oflags := 0

	if flags&ModifyTCA != 0 {
		var tc ldb.CalibTCA
		if lens.InterpolateTCA(focal, &tc) && m.AddSubpixelCallbackTCA(tc, reverse) {
			oflags |= ModifyTCA
		}
	}

	if flags&ModifyVignetting != 0 {
		var vc ldb.CalibVignetting
		if lens.InterpolateVignetting(focal, aperture, distance, &vc) &&
			m.AddColorCallbackVignetting(vc, format, reverse) {
			oflags |= ModifyVignetting
		}
	}

	if flags&ModifyDistortion != 0 {
		var dc ldb.CalibDistortion
		if lens.InterpolateDistortion(focal, &dc) && m.AddCoordCallbackDistortion(dc, reverse) {
			oflags |= ModifyDistortion
		}
	}

	if flags&ModifyGeometry != 0 && lens.Type != targeom {
		if m.AddCoordCallbackGeometry(lens.Type, targeom) {
			oflags |= ModifyGeometry
		}
	}

	if flags&ModifyScale != 0 && scale != 1.0 {
		if m.AddCoordCallbackScale(scale, reverse) {
			oflags |= ModifyScale
		}
	}

	return oflags
}

// realFocalLength picks the paraxial focal length for the given nominal
// one: a measured value from the distortion calibration wins; a calibrated
// field of view comes next; the nominal value is the fallback.
func (m *Modifier)realFocalLength(lens *ldb.Lens, focal float64) float64 {
	var dc ldb.CalibDistortion
	haveDist := lens.InterpolateDistortion(focal, &dc)
	if haveDist && dc.RealFocalMeasured && dc.RealFocal > 0 {
		return dc.RealFocal
	}

	var fc ldb.CalibFov
	if lens.InterpolateFov(focal, &fc) && fc.FieldOfView > 0 {
		halfFov := fc.FieldOfView * math.Pi / 180.0 / 2.0
		half := m.NormalizedInMillimeters // half the long side, in mm
		switch lens.Type {
		case ldb.LensFisheye, ldb.LensPanoramic, ldb.LensEquirectangular:
			return half / halfFov
		case ldb.LensFisheyeOrthographic:
			return half / math.Sin(halfFov)
		case ldb.LensFisheyeStereographic:
			return half / (2.0 * math.Tan(halfFov/2.0))
		case ldb.LensFisheyeEquisolid:
			return half / (2.0 * math.Sin(halfFov/2.0))
		case ldb.LensFisheyeThoby:
			return half / (thobyK1 * math.Sin(thobyK2*halfFov))
		default:
			return half / math.Tan(halfFov)
		}
	}

	return focal
}

// AddColorCallback registers a user callback on the color chain.
// Priorities should stay in 0..999; chains run in ascending order.
func (m *Modifier)AddColorCallback(fn ColorFunc, priority int) {
	m.colorCBs = append(m.colorCBs, colorCallback{priority, fn})
	sort.SliceStable(m.colorCBs, func(i, j int) bool {
		return m.colorCBs[i].priority < m.colorCBs[j].priority
	})
}

// AddCoordCallback registers a user callback on the coordinate chain.
func (m *Modifier)AddCoordCallback(fn CoordFunc, priority int) {
	m.coordCBs = append(m.coordCBs, coordCallback{priority, fn})
	sort.SliceStable(m.coordCBs, func(i, j int) bool {
		return m.coordCBs[i].priority < m.coordCBs[j].priority
	})
}

// AddSubpixelCallback registers a user callback on the subpixel chain.
func (m *Modifier)AddSubpixelCallback(fn SubpixelFunc, priority int) {
	m.subpixelCBs = append(m.subpixelCBs, subpixelCallback{priority, fn})
	sort.SliceStable(m.subpixelCBs, func(i, j int) bool {
		return m.subpixelCBs[i].priority < m.subpixelCBs[j].priority
	})
}
