package lmod

import(
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/openphoto/lenskit/pkg/lmath"
)

// Perspective correction from control points. The control points pin down
// the scene's vertical (and optionally horizontal) directions; from them
// we build the camera rotation that moves the corresponding vanishing
// points to infinity, and install a single projective kernel at priority
// 300.
//
// Control point counts:
//   4: two vertical lines (p0-p1, p2-p3)
//   6: plus one horizontal line (p4-p5)
//   8: plus a second horizontal line (p6-p7); the focal length is derived
//      from the two vanishing points instead of the configured one
//   5: points on a rotated circle; the traversal orientation picks the
//      vertex above (clockwise) or below (counter-clockwise) the centre
//   7: the 5-point circle plus a horizontal line (p5-p6) to level the
//      result
//
// If the lines from the first four points are more horizontal than
// vertical (for 7 points: if the horizontal line is more vertical than
// horizontal), the roles of horizontal and vertical swap.
//
// Points are pixel coordinates in the original image, ideally taken after
// anti-distortion. d in [-1, +1] blends from no change (-1) over perfect
// correction (0) to 125% of the tilt (+1).

const perspectiveDegeneracyEps = 1e-10

// EnablePerspectiveCorrection fits the tilt from the control points and
// installs the kernel. It reports false for unusable counts or degenerate
// geometry, leaving the chains untouched.
func (m *Modifier)EnablePerspectiveCorrection(x, y []float64, count int, d float64) bool {
	if count < 4 || count > 8 || len(x) < count || len(y) < count {
		return false
	}
	if d < -1 {
		d = -1
	}
	if d > 1 {
		d = 1
	}

	// To normalized coordinates
	px := make([]float64, count)
	py := make([]float64, count)
	for i:=0; i<count; i++ {
		px[i] = (x[i] - m.CenterX) * m.NormScale
		py[i] = (y[i] - m.CenterY) * m.NormScale
	}

	f := m.FocalLengthNormalized
	if f <= 0 {
		return false
	}

	swapped := false
	switch count {
	case 4, 6, 8:
		dx := math.Abs(px[1]-px[0]) + math.Abs(px[3]-px[2])
		dy := math.Abs(py[1]-py[0]) + math.Abs(py[3]-py[2])
		swapped = dx > dy
	case 5, 7:
		if count == 7 {
			dx := math.Abs(px[6] - px[5])
			dy := math.Abs(py[6] - py[5])
			swapped = dy > dx
		}
	}
	if swapped {
		px, py = py, px
	}

	var vx, vy float64    // vertical vanishing point, normalized coords
	atInfinity := false   // verticals already parallel
	rho := 0.0

	switch count {
	case 4, 6, 8:
		v, ok := vanishingPoint(px[0], py[0], px[1], py[1], px[2], py[2], px[3], py[3])
		if !ok {
			return false
		}
		if math.Abs(v[2]) < perspectiveDegeneracyEps {
			atInfinity = true
			rho = math.Atan2(v[0], v[1])
		} else {
			vx, vy = v[0]/v[2], v[1]/v[2]
		}

		if count == 8 {
			// Two horizontal lines give the horizontal vanishing point;
			// orthogonal vanishing directions then fix the focal length
			h, ok := vanishingPoint(px[4], py[4], px[5], py[5], px[6], py[6], px[7], py[7])
			if ok && math.Abs(h[2]) >= perspectiveDegeneracyEps && !atInfinity {
				hx, hy := h[0]/h[2], h[1]/h[2]
				if f2 := -(vx*hx + vy*hy); f2 > 0 {
					f = math.Sqrt(f2)
				}
			}
		}

	case 5, 7:
		ok, _, wx, wy := circleVanishingPoint(px[:5], py[:5], f)
		if !ok {
			return false
		}
		vx, vy = wx, wy
	}

	if !atInfinity {
		rho = math.Atan2(vx, vy)
	}

	// Tilt that moves the vanishing point to infinity
	delta := 0.0
	if !atInfinity {
		yv := math.Hypot(vx, vy)
		delta = -math.Atan2(f, yv)
	}

	// The d slider: -1 no change, 0 perfect, +1 125% tilt
	if d <= 0 {
		delta *= 1 + d
	} else {
		delta *= 1 + 0.25*d
	}

	rot := lmath.RotX(delta).Mult(lmath.RotZ(rho))

	// A horizontal line levels the final image; without one, undo the
	// helper z-rotation so that zero tilt means an unchanged image
	switch count {
	case 6, 8:
		rot = levelHorizon(rot, px[4], py[4], px[5], py[5], f)
	case 7:
		rot = levelHorizon(rot, px[5], py[5], px[6], py[6], f)
	default:
		rot = lmath.RotZ(-rho).Mult(rot)
	}

	if swapped {
		s := lmath.SwapXY()
		rot = s.Mult(rot).Mult(s)
	}

	// Output-to-source wants the inverse rotation; a reverse modifier
	// applies the correction itself
	kernelMat := rot.Transpose()
	if m.Reverse {
		kernelMat = rot
	}

	kf := f
	fn := func(io []float64) {
		for i:=0; i<len(io); i += 2 {
			q := kernelMat.Apply(lmath.Vec3{io[i], io[i+1], kf})
			if q[2] <= perspectiveDegeneracyEps {
				io[i], io[i+1] = OutOfBounds, OutOfBounds
				continue
			}
			io[i] = kf * q[0] / q[2]
			io[i+1] = kf * q[1] / q[2]
		}
	}

	m.AddCoordCallback(fn, prioPerspective)
	return true
}

// vanishingPoint intersects the lines p0-p1 and p2-p3, all homogeneous
// with z=1. ok is false when either line is degenerate.
func vanishingPoint(x0, y0, x1, y1, x2, y2, x3, y3 float64) (lmath.Vec3, bool) {
	p0 := lmath.Vec3{x0, y0, 1}
	p1 := lmath.Vec3{x1, y1, 1}
	p2 := lmath.Vec3{x2, y2, 1}
	p3 := lmath.Vec3{x3, y3, 1}

	l1 := p0.Cross(p1)
	l2 := p2.Cross(p3)
	if l1.Norm() < perspectiveDegeneracyEps || l2.Norm() < perspectiveDegeneracyEps {
		return lmath.Vec3{}, false
	}
	v := l1.Cross(l2)
	if v.Norm() < perspectiveDegeneracyEps {
		// Same line twice
		return lmath.Vec3{}, false
	}
	return v, true
}

// levelHorizon post-rotates rot about the optical axis so that the
// corrected horizontal line p0-p1 comes out level.
func levelHorizon(rot lmath.Mat3, x0, y0, x1, y1, f float64) lmath.Mat3 {
	a := rot.Apply(lmath.Vec3{x0, y0, f})
	b := rot.Apply(lmath.Vec3{x1, y1, f})
	if a[2] <= 0 || b[2] <= 0 {
		return rot
	}
	ax, ay := a[0]/a[2], a[1]/a[2]
	bx, by := b[0]/b[2], b[1]/b[2]
	beta := math.Atan2(by-ay, bx-ax)
	return lmath.RotZ(-beta).Mult(rot)
}

// circleVanishingPoint fits a conic through five points that are supposed
// to be the projection of a circle, and recovers the vanishing point of
// the circle plane's normal (the scene vertical, for a horizontal
// circle). cw reports the traversal orientation of the points. ok is
// false when the points are near-degenerate: almost colinear, not an
// ellipse, or a circle seen almost head-on.
func circleVanishingPoint(px, py []float64, f float64) (ok, cw bool, vx, vy float64) {
	// Work in units of the focal length so the view cone is the conic
	// matrix itself
	var a [5][6]float64
	for i:=0; i<5; i++ {
		x, y := px[i]/f, py[i]/f
		a[i] = [6]float64{x * x, x * y, y * y, x, y, 1}
	}

	rows := make([]float64, 0, 30)
	for i:=0; i<5; i++ {
		rows = append(rows, a[i][:]...)
	}
	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(5, 6, rows), mat.SVDFull) {
		return false, false, 0, 0
	}
	var v mat.Dense
	svd.VTo(&v)
	// Null direction: right singular vector of the smallest singular value
	A := v.At(0, 5)
	B := v.At(1, 5)
	C := v.At(2, 5)
	D := v.At(3, 5)
	E := v.At(4, 5)
	F := v.At(5, 5)

	// A projected circle is an ellipse
	if B*B-4*A*C >= -perspectiveDegeneracyEps {
		return false, false, 0, 0
	}

	// The cone from the projection centre over the image conic, in
	// focal-unit coordinates
	q := mat.NewSymDense(3, []float64{
		A, B / 2, D / 2,
		B / 2, C, E / 2,
		D / 2, E / 2, F,
	})
	var es mat.EigenSym
	if !es.Factorize(q, true) {
		return false, false, 0, 0
	}
	vals := es.Values(nil) // ascending
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// Need signature (+,+,-); flip the overall sign if it's (-,-,+)
	pos := 0
	for _, l := range vals {
		if l > 0 {
			pos++
		}
	}
	sign := 1.0
	if pos == 1 {
		sign = -1.0
	} else if pos != 2 {
		return false, false, 0, 0
	}

	// Descending eigenvalues l1 >= l2 >= l3 with their vectors
	idx := []int{2, 1, 0}
	if sign < 0 {
		idx = []int{0, 1, 2}
	}
	l1 := sign * vals[idx[0]]
	l2 := sign * vals[idx[1]]
	l3 := sign * vals[idx[2]]
	if l1 <= 0 || l3 >= 0 {
		return false, false, 0, 0
	}
	spread := l1 - l3
	if spread < perspectiveDegeneracyEps {
		return false, false, 0, 0
	}
	// A circle seen head-on has l1 == l2 and carries no tilt direction
	if (l1-l2)/spread < 1e-6 {
		return false, false, 0, 0
	}

	e1 := lmath.Vec3{vecs.At(0, idx[0]), vecs.At(1, idx[0]), vecs.At(2, idx[0])}
	e3 := lmath.Vec3{vecs.At(0, idx[2]), vecs.At(1, idx[2]), vecs.At(2, idx[2])}

	// The two plane normals whose sections of the cone are circles
	c1 := math.Sqrt((l1 - l2) / spread)
	c3 := math.Sqrt((l2 - l3) / spread)
	n1 := e1.Scaled(c1)
	na := lmath.Vec3{n1[0] + c3*e3[0], n1[1] + c3*e3[1], n1[2] + c3*e3[2]}
	nb := lmath.Vec3{n1[0] - c3*e3[0], n1[1] - c3*e3[1], n1[2] - c3*e3[2]}

	// Ellipse centre y, for deciding which normal puts the vertex on the
	// requested side
	ecy := (B*D - 2*A*E) / (4*A*C - B*B)

	// Traversal orientation; with y pointing down, a clockwise figure has
	// a positive shoelace sum
	area2 := 0.0
	for i:=0; i<5; i++ {
		j := (i + 1) % 5
		area2 += px[i]*py[j] - px[j]*py[i]
	}
	cw = area2 > 0

	pick := func(n lmath.Vec3) (float64, float64, bool) {
		if math.Abs(n[2]) < perspectiveDegeneracyEps {
			return 0, 0, false
		}
		return n[0] / n[2], n[1] / n[2], true
	}

	ax, ay, aok := pick(na)
	bx, by, bok := pick(nb)
	if !aok && !bok {
		return false, false, 0, 0
	}

	// Clockwise: vertex above the ellipse centre (smaller y); counter-
	// clockwise: below
	wantAbove := cw
	chooseA := aok
	if aok && bok {
		aAbove := ay < ecy
		chooseA = (aAbove == wantAbove)
	}
	if chooseA {
		vx, vy = ax*f, ay*f
	} else {
		vx, vy = bx*f, by*f
	}
	return true, cw, vx, vy
}
