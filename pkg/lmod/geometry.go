package lmod

import(
	"math"

	"github.com/openphoto/lenskit/pkg/ldb"
	"github.com/openphoto/lenskit/pkg/lmath"
)

// Geometry conversion kernels. For every output pixel in the target
// projection we find the scene direction it shows, then ask where the
// source projection put that direction. The real focal length (in
// normalized units) is the sphere radius. Directions the source cannot
// show are flagged with the out-of-bounds sentinel.
//
// The direction vectors use x right, y down, z along the optical axis.
// The cylinder axis of the panoramic and equirectangular projections is
// vertical (y).

// OutOfBounds marks a coordinate with no source-image counterpart. It is
// far outside any legal pixel bound even after un-normalization.
const OutOfBounds = 1.0e+9

// IsOutOfBounds reports whether a coordinate pair carries the sentinel.
func IsOutOfBounds(x, y float64) bool {
	return x >= OutOfBounds/2 || y >= OutOfBounds/2
}

// AddCoordCallbackGeometry installs the projection change kernel at
// priority 500. It reports false when either type is unknown; identical
// types are the caller's no-op to skip.
func (m *Modifier)AddCoordCallbackGeometry(from, to ldb.LensType, _ ...float64) bool {
	if from == ldb.LensUnknown || to == ldb.LensUnknown || from == to {
		return false
	}
	f := m.RealFocalLengthNormalized
	if f <= 0 {
		return false
	}

	// The coordinate chain maps output coords to source coords. When
	// correcting, the output is the target projection; when simulating,
	// the roles swap.
	out, src := to, from
	if m.Reverse {
		out, src = from, to
	}

	fn := func(io []float64) {
		for i:=0; i<len(io); i += 2 {
			dir, ok := projToSphere(out, io[i], io[i+1], f)
			if ok {
				io[i], io[i+1], ok = projFromSphere(src, dir, f)
			}
			if !ok {
				io[i], io[i+1] = OutOfBounds, OutOfBounds
			}
		}
	}

	m.AddCoordCallback(fn, prioGeometry)
	return true
}

// thobyK1 and thobyK2 are the empirical constants of the Thoby fisheye
// projection r = k1 * f * sin(k2 * theta).
const thobyK1 = 1.47
const thobyK2 = 0.713

// projToSphere turns a plane coordinate of the given projection into a
// unit direction vector. ok is false for coordinates outside the
// projection's domain.
func projToSphere(t ldb.LensType, x, y, f float64) (lmath.Vec3, bool) {
	switch t {
	case ldb.LensRectilinear:
		v := lmath.Vec3{x, y, f}
		return v.Scaled(1.0 / v.Norm()), true

	case ldb.LensPanoramic:
		phi := x / f
		if math.Abs(phi) > math.Pi {
			return lmath.Vec3{}, false
		}
		psi := math.Atan(y / f)
		return lmath.Vec3{math.Cos(psi) * math.Sin(phi), math.Sin(psi), math.Cos(psi) * math.Cos(phi)}, true

	case ldb.LensEquirectangular:
		phi := x / f
		psi := y / f
		if math.Abs(phi) > math.Pi || math.Abs(psi) > math.Pi/2 {
			return lmath.Vec3{}, false
		}
		return lmath.Vec3{math.Cos(psi) * math.Sin(phi), math.Sin(psi), math.Cos(psi) * math.Cos(phi)}, true
	}

	// The fisheye family is radial: r = f * g(theta)
	r := math.Sqrt(x*x + y*y)
	var theta float64
	switch t {
	case ldb.LensFisheye:
		theta = r / f
		if theta > math.Pi {
			return lmath.Vec3{}, false
		}
	case ldb.LensFisheyeOrthographic:
		if r > f {
			return lmath.Vec3{}, false
		}
		theta = math.Asin(r / f)
	case ldb.LensFisheyeStereographic:
		theta = 2.0 * math.Atan(r/(2.0*f))
	case ldb.LensFisheyeEquisolid:
		s := r / (2.0 * f)
		if s > 1 {
			return lmath.Vec3{}, false
		}
		theta = 2.0 * math.Asin(s)
	case ldb.LensFisheyeThoby:
		s := r / (thobyK1 * f)
		if s > 1 {
			return lmath.Vec3{}, false
		}
		theta = math.Asin(s) / thobyK2
	default:
		return lmath.Vec3{}, false
	}

	if r == 0 {
		return lmath.Vec3{0, 0, 1}, true
	}
	sin := math.Sin(theta)
	return lmath.Vec3{sin * x / r, sin * y / r, math.Cos(theta)}, true
}

// projFromSphere projects a unit direction vector onto the plane of the
// given projection. ok is false for directions the projection cannot show.
func projFromSphere(t ldb.LensType, d lmath.Vec3, f float64) (float64, float64, bool) {
	dx, dy, dz := d[0], d[1], d[2]

	switch t {
	case ldb.LensRectilinear:
		if dz <= 0 {
			return 0, 0, false
		}
		return f * dx / dz, f * dy / dz, true

	case ldb.LensPanoramic:
		rxz := math.Sqrt(dx*dx + dz*dz)
		if rxz == 0 {
			return 0, 0, false
		}
		return f * math.Atan2(dx, dz), f * dy / rxz, true

	case ldb.LensEquirectangular:
		psi := math.Asin(clamp1(dy))
		if math.Abs(math.Cos(psi)) < 1e-12 {
			// Pole: longitude undefined, pick the meridian
			return 0, f * psi, true
		}
		return f * math.Atan2(dx, dz), f * psi, true
	}

	// Radial family again
	rxy := math.Sqrt(dx*dx + dy*dy)
	theta := math.Acos(clamp1(dz))
	if rxy == 0 {
		// Straight ahead maps to the center; straight behind has no
		// defined azimuth
		return 0, 0, dz > 0
	}

	var r float64
	switch t {
	case ldb.LensFisheye:
		r = f * theta
	case ldb.LensFisheyeOrthographic:
		if dz < 0 {
			return 0, 0, false
		}
		r = f * rxy // sin(theta) == rxy on the unit sphere
	case ldb.LensFisheyeStereographic:
		if dz <= -1.0+1e-12 {
			return 0, 0, false
		}
		r = 2.0 * f * rxy / (1.0 + dz) // tan(theta/2) = sin/(1+cos)
	case ldb.LensFisheyeEquisolid:
		r = 2.0 * f * math.Sin(theta/2.0)
	case ldb.LensFisheyeThoby:
		if thobyK2*theta > math.Pi/2 {
			return 0, 0, false
		}
		r = thobyK1 * f * math.Sin(thobyK2*theta)
	default:
		return 0, 0, false
	}

	return r * dx / rxy, r * dy / rxy, true
}

func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
