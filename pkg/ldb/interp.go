package ldb

import(
	"math"

	"github.com/openphoto/lenskit/pkg/lmath"
)

/* Coefficient interpolation.

   Distortion, TCA, crop and FoV data are sampled along the focal length
   axis only, and get cubic Hermite spline interpolation over the nearest
   four samples. Vignetting is sampled in (focal, aperture, distance) and
   gets inverse distance weighting instead.

   Both methods want input data that follows a roughly linear slope. The
   sampled coefficients mostly don't: distortion terms follow a 1/f law,
   and the ACM models use a coordinate system that scales with the focal
   length, so their terms grow with powers of f. To compensate, each term
   is multiplied by a per-term factor of the sample's focal length before
   interpolating, and divided by the same factor of the query focal length
   afterwards. The reciprocal aperture and distance axes in vignettingDist
   serve the same purpose.
*/

// distortionTermScale returns the parameter-axis factor for term i of a
// distortion model at focal length f.
func distortionTermScale(model DistortionModel, i int, f float64) float64 {
	switch model {
	case DistModelACM:
		// The k1..k3 terms multiply r^2, r^4, r^6 in focal-length units
		if i < 3 {
			return f / math.Pow(f, float64(2*(i+1)))
		}
		return 1.0
	default:
		// POLY3/POLY5/PTLens terms follow 1/f
		return f
	}
}

// tcaTermScale returns the parameter-axis factor for term i of a TCA model
// at focal length f.
func tcaTermScale(model TCAModel, i int, f float64) float64 {
	switch model {
	case TCAModelACM:
		if i > 1 && i < 8 {
			return f / math.Pow(f, float64(i/2*2))
		}
		return 1.0
	default:
		// The first two terms are per-channel scale factors near unity
		if i < 2 {
			return 1.0
		}
		return f
	}
}

// vignettingTermScale returns the parameter-axis factor for term i of a
// vignetting model at focal length f.
func vignettingTermScale(model VignettingModel, i int, f float64) float64 {
	if model == VigModelACM {
		return 1.0 / math.Pow(f, float64(2*(i+1)))
	}
	return 1.0
}

// scaledTerm multiplies a sample term by its axis factor, keeping the
// absent-slot sentinel intact.
func scaledTerm(term, scale float64) float64 {
	if term == lmath.Unknown {
		return lmath.Unknown
	}
	return term * scale
}

// InterpolateDistortion computes distortion coefficients for the given
// nominal focal length. Only records of the first model family encountered
// participate; an exact focal match is returned verbatim. Reports false
// when no data is available.
func (l *Lens)InterpolateDistortion(focal float64, res *CalibDistortion) bool {
	if len(l.CalibDistortion) == 0 {
		return false
	}

	slots := lmath.NewSplineSlots()
	dm := DistModelNone

	for i := range l.CalibDistortion {
		c := &l.CalibDistortion[i]
		if c.Model == DistModelNone {
			continue
		}

		// Take into account just the first encountered lens model
		if dm == DistModelNone {
			dm = c.Model
		} else if dm != c.Model {
			continue
		}

		df := focal - c.Focal
		if df == 0.0 {
			// Exact match found, don't care to interpolate
			*res = *c
			return true
		}
		slots.Insert(c.Focal-focal, i)
	}

	i1, i2 := slots.Inner()
	if i1 < 0 || i2 < 0 {
		if i1 >= 0 {
			*res = l.CalibDistortion[i1]
			return true
		}
		if i2 >= 0 {
			*res = l.CalibDistortion[i2]
			return true
		}
		return false
	}
	i0, i3 := slots.Outer()

	c1, c2 := &l.CalibDistortion[i1], &l.CalibDistortion[i2]
	res.Model = dm
	res.Focal = focal
	res.RealFocalMeasured = c1.RealFocalMeasured && c2.RealFocalMeasured
	t := (focal - c1.Focal) / (c2.Focal - c1.Focal)

	y0, y3 := lmath.Unknown, lmath.Unknown
	if i0 >= 0 {
		y0 = l.CalibDistortion[i0].RealFocal
	}
	if i3 >= 0 {
		y3 = l.CalibDistortion[i3].RealFocal
	}
	res.RealFocal = lmath.HermiteInterpolate(y0, c1.RealFocal, c2.RealFocal, y3, t)

	for i := range res.Terms {
		y0, y3 = lmath.Unknown, lmath.Unknown
		if i0 >= 0 {
			c := &l.CalibDistortion[i0]
			y0 = scaledTerm(c.Terms[i], distortionTermScale(dm, i, c.Focal))
		}
		if i3 >= 0 {
			c := &l.CalibDistortion[i3]
			y3 = scaledTerm(c.Terms[i], distortionTermScale(dm, i, c.Focal))
		}
		res.Terms[i] = lmath.HermiteInterpolate(
			y0,
			c1.Terms[i]*distortionTermScale(dm, i, c1.Focal),
			c2.Terms[i]*distortionTermScale(dm, i, c2.Focal),
			y3,
			t) / distortionTermScale(dm, i, focal)
	}

	return true
}

// InterpolateTCA computes TCA coefficients for the given nominal focal
// length; same selection rules as InterpolateDistortion.
func (l *Lens)InterpolateTCA(focal float64, res *CalibTCA) bool {
	if len(l.CalibTCA) == 0 {
		return false
	}

	slots := lmath.NewSplineSlots()
	tm := TCAModelNone

	for i := range l.CalibTCA {
		c := &l.CalibTCA[i]
		if c.Model == TCAModelNone {
			continue
		}
		if tm == TCAModelNone {
			tm = c.Model
		} else if tm != c.Model {
			continue
		}

		df := focal - c.Focal
		if df == 0.0 {
			*res = *c
			return true
		}
		slots.Insert(c.Focal-focal, i)
	}

	i1, i2 := slots.Inner()
	if i1 < 0 || i2 < 0 {
		if i1 >= 0 {
			*res = l.CalibTCA[i1]
			return true
		}
		if i2 >= 0 {
			*res = l.CalibTCA[i2]
			return true
		}
		return false
	}
	i0, i3 := slots.Outer()

	c1, c2 := &l.CalibTCA[i1], &l.CalibTCA[i2]
	res.Model = tm
	res.Focal = focal
	t := (focal - c1.Focal) / (c2.Focal - c1.Focal)

	for i := range res.Terms {
		y0, y3 := lmath.Unknown, lmath.Unknown
		if i0 >= 0 {
			c := &l.CalibTCA[i0]
			y0 = scaledTerm(c.Terms[i], tcaTermScale(tm, i, c.Focal))
		}
		if i3 >= 0 {
			c := &l.CalibTCA[i3]
			y3 = scaledTerm(c.Terms[i], tcaTermScale(tm, i, c.Focal))
		}
		res.Terms[i] = lmath.HermiteInterpolate(
			y0,
			c1.Terms[i]*tcaTermScale(tm, i, c1.Focal),
			c2.Terms[i]*tcaTermScale(tm, i, c2.Focal),
			y3,
			t) / tcaTermScale(tm, i, focal)
	}

	return true
}

// vignettingDist measures how far a vignetting sample sits from the query
// point. Every axis is translated to a linear scale and normalized
// approximately to 0..1: focal by the lens range, aperture and distance by
// reciprocals.
func (l *Lens)vignettingDist(c *CalibVignetting, focal, aperture, distance float64) float64 {
	f1 := focal - l.MinFocal
	f2 := c.Focal - l.MinFocal
	if df := l.MaxFocal - l.MinFocal; df != 0 {
		f1 /= df
		f2 /= df
	}
	a1 := 4.0 / aperture
	a2 := 4.0 / c.Aperture
	d1 := 0.1 / distance
	d2 := 0.1 / c.Distance

	return math.Sqrt(lmath.Square(f2-f1) + lmath.Square(a2-a1) + lmath.Square(d2-d1))
}

// InterpolateVignetting computes vignetting coefficients for the given
// focal length, aperture and focus distance, using inverse distance
// weighting (p = 3.5) over all samples of the first model family
// encountered. Reports false when no sample lies within unit distance.
func (l *Lens)InterpolateVignetting(focal, aperture, distance float64, res *CalibVignetting) bool {
	if len(l.CalibVignetting) == 0 {
		return false
	}

	vm := VigModelNone
	res.Focal = focal
	res.Aperture = aperture
	res.Distance = distance
	for i := range res.Terms {
		res.Terms[i] = 0
	}

	const power = 3.5
	totalWeighting := 0.0
	smallest := math.MaxFloat64

	for i := range l.CalibVignetting {
		c := &l.CalibVignetting[i]
		// Take into account just the first encountered lens model
		if vm == VigModelNone {
			vm = c.Model
			res.Model = vm
		} else if vm != c.Model {
			continue
		}

		dist := l.vignettingDist(c, focal, aperture, distance)
		if dist < 0.0001 {
			*res = *c
			return true
		}

		if dist < smallest {
			smallest = dist
		}
		weighting := math.Abs(1.0 / math.Pow(dist, power))
		for j := range res.Terms {
			res.Terms[j] += weighting * c.Terms[j] * vignettingTermScale(vm, j, c.Focal)
		}
		totalWeighting += weighting
	}

	if smallest > 1 {
		return false
	}

	if totalWeighting > 0 && smallest < math.MaxFloat64 {
		for j := range res.Terms {
			res.Terms[j] /= totalWeighting * vignettingTermScale(vm, j, focal)
		}
		return true
	}
	return false
}

// InterpolateCrop computes the crop area for the given focal length; crop
// terms have no axis scaling.
func (l *Lens)InterpolateCrop(focal float64, res *CalibCrop) bool {
	if len(l.CalibCrop) == 0 {
		return false
	}

	slots := lmath.NewSplineSlots()
	cm := NoCrop

	for i := range l.CalibCrop {
		c := &l.CalibCrop[i]
		if c.CropMode == NoCrop {
			continue
		}
		if cm == NoCrop {
			cm = c.CropMode
		} else if cm != c.CropMode {
			continue
		}

		df := focal - c.Focal
		if df == 0.0 {
			*res = *c
			return true
		}
		slots.Insert(c.Focal-focal, i)
	}

	i1, i2 := slots.Inner()
	if i1 < 0 || i2 < 0 {
		if i1 >= 0 {
			*res = l.CalibCrop[i1]
			return true
		}
		if i2 >= 0 {
			*res = l.CalibCrop[i2]
			return true
		}
		return false
	}
	i0, i3 := slots.Outer()

	c1, c2 := &l.CalibCrop[i1], &l.CalibCrop[i2]
	res.CropMode = cm
	res.Focal = focal
	t := (focal - c1.Focal) / (c2.Focal - c1.Focal)

	for i := range res.Crop {
		y0, y3 := lmath.Unknown, lmath.Unknown
		if i0 >= 0 {
			y0 = l.CalibCrop[i0].Crop[i]
		}
		if i3 >= 0 {
			y3 = l.CalibCrop[i3].Crop[i]
		}
		res.Crop[i] = lmath.HermiteInterpolate(y0, c1.Crop[i], c2.Crop[i], y3, t)
	}

	return true
}

// InterpolateFov computes the field of view for the given focal length.
// Samples with a zero field of view are skipped.
func (l *Lens)InterpolateFov(focal float64, res *CalibFov) bool {
	if len(l.CalibFov) == 0 {
		return false
	}

	slots := lmath.NewSplineSlots()
	counter := 0

	for i := range l.CalibFov {
		c := &l.CalibFov[i]
		if c.FieldOfView == 0 {
			continue
		}
		counter++

		df := focal - c.Focal
		if df == 0.0 {
			*res = *c
			return true
		}
		slots.Insert(c.Focal-focal, i)
	}

	if counter == 0 {
		return false
	}

	i1, i2 := slots.Inner()
	if i1 < 0 || i2 < 0 {
		if i1 >= 0 {
			*res = l.CalibFov[i1]
			return true
		}
		if i2 >= 0 {
			*res = l.CalibFov[i2]
			return true
		}
		return false
	}
	i0, i3 := slots.Outer()

	c1, c2 := &l.CalibFov[i1], &l.CalibFov[i2]
	res.Focal = focal
	t := (focal - c1.Focal) / (c2.Focal - c1.Focal)

	y0, y3 := lmath.Unknown, lmath.Unknown
	if i0 >= 0 {
		y0 = l.CalibFov[i0].FieldOfView
	}
	if i3 >= 0 {
		y3 = l.CalibFov[i3].FieldOfView
	}
	res.FieldOfView = lmath.HermiteInterpolate(y0, c1.FieldOfView, c2.FieldOfView, y3, t)

	return true
}
