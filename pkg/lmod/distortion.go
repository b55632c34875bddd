package lmod

import(
	"math"

	"github.com/openphoto/lenskit/pkg/ldb"
)

// Distortion kernels. The coordinate chain maps output-image coordinates
// back to source-image coordinates, so *correcting* distortion applies the
// forward model (undistorted radius in, distorted radius out), and
// *simulating* it needs the model inverse.

const newtonIterations = 6
const newtonEps = 1e-6

// AddCoordCallbackDistortion installs the stock distortion kernel for the
// given calibration. Forward priority 750, reverse 250.
func (m *Modifier)AddCoordCallbackDistortion(dc ldb.CalibDistortion, reverse bool) bool {
	var fn CoordFunc

	switch dc.Model {
	case ldb.DistModelPoly3:
		k1 := dc.Terms[0]
		if reverse {
			fn = func(io []float64) { unDistPoly3(io, k1) }
		} else {
			fn = func(io []float64) { distPoly3(io, k1) }
		}

	case ldb.DistModelPoly5:
		k1, k2 := dc.Terms[0], dc.Terms[1]
		if reverse {
			fn = func(io []float64) { unDistPoly5(io, k1, k2) }
		} else {
			fn = func(io []float64) { distPoly5(io, k1, k2) }
		}

	case ldb.DistModelPTLens:
		a, b, c := dc.Terms[0], dc.Terms[1], dc.Terms[2]
		if reverse {
			fn = func(io []float64) { unDistPTLens(io, a, b, c) }
		} else {
			fn = func(io []float64) { distPTLens(io, a, b, c) }
		}

	case ldb.DistModelACM:
		// ACM coordinates are measured in units of the real focal length
		if m.RealFocalLengthNormalized <= 0 {
			return false
		}
		conv := 1.0 / m.RealFocalLengthNormalized
		terms := dc.Terms
		if reverse {
			fn = func(io []float64) { unDistACM(io, terms, conv) }
		} else {
			fn = func(io []float64) { distACM(io, terms, conv) }
		}

	default:
		return false
	}

	priority := prioDistortionFwd
	if reverse {
		priority = prioDistortionRev
	}
	m.AddCoordCallback(fn, priority)
	return true
}

// Rd = Ru * (1 - k1 + k1 * Ru^2)
func distPoly3(io []float64, k1 float64) {
	for i:=0; i<len(io); i += 2 {
		x, y := io[i], io[i+1]
		poly := 1.0 - k1 + k1*(x*x+y*y)
		io[i] = x * poly
		io[i+1] = y * poly
	}
}

func unDistPoly3(io []float64, k1 float64) {
	for i:=0; i<len(io); i += 2 {
		x, y := io[i], io[i+1]
		rd := math.Sqrt(x*x + y*y)
		if rd == 0 {
			continue
		}
		ru := newtonRadius(rd, func(r float64) (float64, float64) {
			r2 := r * r
			return r * (1.0 - k1 + k1*r2), 1.0 - k1 + 3.0*k1*r2
		})
		s := ru / rd
		io[i] = x * s
		io[i+1] = y * s
	}
}

// Rd = Ru * (1 + k1 * Ru^2 + k2 * Ru^4)
func distPoly5(io []float64, k1, k2 float64) {
	for i:=0; i<len(io); i += 2 {
		x, y := io[i], io[i+1]
		r2 := x*x + y*y
		poly := 1.0 + k1*r2 + k2*r2*r2
		io[i] = x * poly
		io[i+1] = y * poly
	}
}

func unDistPoly5(io []float64, k1, k2 float64) {
	for i:=0; i<len(io); i += 2 {
		x, y := io[i], io[i+1]
		rd := math.Sqrt(x*x + y*y)
		if rd == 0 {
			continue
		}
		ru := newtonRadius(rd, func(r float64) (float64, float64) {
			r2 := r * r
			return r * (1.0 + k1*r2 + k2*r2*r2), 1.0 + 3.0*k1*r2 + 5.0*k2*r2*r2
		})
		s := ru / rd
		io[i] = x * s
		io[i+1] = y * s
	}
}

// Rd = Ru * (a * Ru^3 + b * Ru^2 + c * Ru + 1 - a - b - c)
func distPTLens(io []float64, a, b, c float64) {
	d := 1.0 - a - b - c
	for i:=0; i<len(io); i += 2 {
		x, y := io[i], io[i+1]
		r := math.Sqrt(x*x + y*y)
		poly := a*r*r*r + b*r*r + c*r + d
		io[i] = x * poly
		io[i+1] = y * poly
	}
}

func unDistPTLens(io []float64, a, b, c float64) {
	d := 1.0 - a - b - c
	for i:=0; i<len(io); i += 2 {
		x, y := io[i], io[i+1]
		rd := math.Sqrt(x*x + y*y)
		if rd == 0 {
			continue
		}
		ru := newtonRadius(rd, func(r float64) (float64, float64) {
			return r * (a*r*r*r + b*r*r + c*r + d), 4.0*a*r*r*r + 3.0*b*r*r + 2.0*c*r + d
		})
		s := ru / rd
		io[i] = x * s
		io[i+1] = y * s
	}
}

// newtonRadius inverts a monotonic radial polynomial: given rd, find ru
// with f(ru) = rd. Seeded at rd; six rounds reach ~1e-6 of the normalized
// radius, plenty for 100MP images.
func newtonRadius(rd float64, f func(r float64) (val, deriv float64)) float64 {
	r := rd
	for i:=0; i<newtonIterations; i++ {
		val, deriv := f(r)
		resid := val - rd
		if math.Abs(resid) < newtonEps {
			break
		}
		if deriv == 0 {
			break
		}
		r -= resid / deriv
	}
	return r
}

// The Adobe camera model, radial plus two tangential terms, in units of
// the real focal length. conv converts a normalized coordinate into
// focal-length units.
func distACM(io []float64, k [5]float64, conv float64) {
	for i:=0; i<len(io); i += 2 {
		x, y := io[i]*conv, io[i+1]*conv
		r2 := x*x + y*y
		radial := 1.0 + k[0]*r2 + k[1]*r2*r2 + k[2]*r2*r2*r2
		tang := 2.0 * (k[3]*y + k[4]*x)
		xd := x*radial + x*tang + k[4]*r2
		yd := y*radial + y*tang + k[3]*r2
		io[i] = xd / conv
		io[i+1] = yd / conv
	}
}

// unDistACM inverts the 2-D model with a fixed-iteration Newton descent on
// both coordinates (2x2 Jacobian).
func unDistACM(io []float64, k [5]float64, conv float64) {
	for i:=0; i<len(io); i += 2 {
		xd, yd := io[i]*conv, io[i+1]*conv
		x, y := xd, yd
		for it:=0; it<newtonIterations; it++ {
			r2 := x*x + y*y
			radial := 1.0 + k[0]*r2 + k[1]*r2*r2 + k[2]*r2*r2*r2
			tang := 2.0 * (k[3]*y + k[4]*x)
			fx := x*radial + x*tang + k[4]*r2 - xd
			fy := y*radial + y*tang + k[3]*r2 - yd
			if math.Abs(fx) < newtonEps && math.Abs(fy) < newtonEps {
				break
			}
			dradial := 2.0*k[0] + 4.0*k[1]*r2 + 6.0*k[2]*r2*r2
			// d(fx)/dx, d(fx)/dy, d(fy)/dx, d(fy)/dy
			j00 := radial + x*x*dradial + tang + 2.0*k[4]*x + 2.0*k[4]*x
			j01 := x*y*dradial + 2.0*k[3]*x + 2.0*k[4]*y
			j10 := x*y*dradial + 2.0*k[4]*y + 2.0*k[3]*x
			j11 := radial + y*y*dradial + tang + 2.0*k[3]*y + 2.0*k[3]*y
			det := j00*j11 - j01*j10
			if det == 0 {
				break
			}
			x -= (fx*j11 - fy*j01) / det
			y -= (fy*j00 - fx*j10) / det
		}
		io[i] = x / conv
		io[i+1] = y / conv
	}
}
