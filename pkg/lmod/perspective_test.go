package lmod

import(
	"math"
	"testing"

	"github.com/openphoto/lenskit/pkg/ldb"
)

// perspectiveModifier returns a modifier with no kernels but the focal
// length bookkeeping done, ready for EnablePerspectiveCorrection.
func perspectiveModifier(t *testing.T, reverse bool) *Modifier {
	t.Helper()
	l := testLens()
	m := newTestModifier(l)
	m.Initialize(l, PixelF64, 35, 2.8, 10, 1.0, ldb.LensRectilinear, 0, reverse)
	return m
}

func TestPerspectiveRejectsBadInput(t *testing.T) {
	m := perspectiveModifier(t, false)

	xs := []float64{100, 100, 900, 900, 500, 500, 500, 500, 500}
	ys := []float64{100, 900, 100, 900, 100, 900, 100, 900, 500}

	for _, count := range []int{0, 1, 2, 3, 9} {
		if m.EnablePerspectiveCorrection(xs, ys, count, 0) {
			t.Errorf("count %d must be rejected", count)
		}
	}

	// Both "vertical" lines on top of each other: no vanishing point
	same := []float64{100, 100, 100, 100}
	if m.EnablePerspectiveCorrection(same, []float64{100, 900, 100, 900}, 4, 0) {
		t.Errorf("coincident lines must be rejected")
	}
}

func TestPerspectiveFourPointsLevelsVerticals(t *testing.T) {
	// A keystoned facade: two vertical edges leaning towards a vanishing
	// point above the image. The corrected image must render them
	// parallel. A reverse modifier applies the correcting rotation
	// directly, which makes the check easy.
	m := perspectiveModifier(t, true)

	xs := []float64{400, 430, 600, 570}
	ys := []float64{800, 200, 800, 200}
	if !m.EnablePerspectiveCorrection(xs, ys, 4, 0) {
		t.Fatalf("perspective correction not enabled")
	}

	var c [4][2]float64
	for i:=0; i<4; i++ {
		buf := []float64{0, 0}
		if !m.ApplyGeometryDistortion(xs[i], ys[i], 1, 1, buf) {
			t.Fatalf("apply failed")
		}
		c[i][0], c[i][1] = buf[0], buf[1]
	}

	// Direction vectors of the two corrected lines
	d1x, d1y := c[1][0]-c[0][0], c[1][1]-c[0][1]
	d2x, d2y := c[3][0]-c[2][0], c[3][1]-c[2][1]
	cross := d1x*d2y - d1y*d2x
	norm := math.Hypot(d1x, d1y) * math.Hypot(d2x, d2y)
	if math.Abs(cross)/norm > 1e-6 {
		t.Errorf("corrected verticals not parallel: cross %g", cross/norm)
	}
}

func TestPerspectiveDMinusOneIsIdentity(t *testing.T) {
	// d = -1 blends the correction all the way back to "no change".
	m := perspectiveModifier(t, false)

	xs := []float64{400, 430, 600, 570}
	ys := []float64{800, 200, 800, 200}
	if !m.EnablePerspectiveCorrection(xs, ys, 4, -1) {
		t.Fatalf("perspective correction not enabled")
	}

	gx, gy := mapNorm(m, 0.3, 0.2)
	if !almost(gx, 0.3, 1e-9) || !almost(gy, 0.2, 1e-9) {
		t.Errorf("d=-1 must leave coordinates alone: got (%g, %g)", gx, gy)
	}
}

func TestPerspectiveSixPointsLevelsHorizon(t *testing.T) {
	// The same keystoned verticals plus a horizontal line; after
	// correction the horizontal's endpoints must share a y coordinate.
	m := perspectiveModifier(t, true)

	xs := []float64{400, 430, 600, 570, 420, 580}
	ys := []float64{800, 200, 800, 200, 700, 710}
	if !m.EnablePerspectiveCorrection(xs, ys, 6, 0) {
		t.Fatalf("perspective correction not enabled")
	}

	a := []float64{0, 0}
	b := []float64{0, 0}
	m.ApplyGeometryDistortion(xs[4], ys[4], 1, 1, a)
	m.ApplyGeometryDistortion(xs[5], ys[5], 1, 1, b)
	if !almost(a[1], b[1], 1e-6*m.NormUnScale) {
		t.Errorf("horizon not level: y %f vs %f", a[1], b[1])
	}
}

func TestPerspectiveSwapsForHorizontalLines(t *testing.T) {
	// The first four points form lines that are more horizontal than
	// vertical; the correction must still engage (with the roles of the
	// axes swapped) rather than failing or producing nonsense.
	m := perspectiveModifier(t, true)

	xs := []float64{200, 800, 200, 800}
	ys := []float64{400, 430, 600, 570}
	if !m.EnablePerspectiveCorrection(xs, ys, 4, 0) {
		t.Fatalf("perspective correction not enabled")
	}

	var c [4][2]float64
	for i:=0; i<4; i++ {
		buf := []float64{0, 0}
		m.ApplyGeometryDistortion(xs[i], ys[i], 1, 1, buf)
		c[i][0], c[i][1] = buf[0], buf[1]
	}
	d1x, d1y := c[1][0]-c[0][0], c[1][1]-c[0][1]
	d2x, d2y := c[3][0]-c[2][0], c[3][1]-c[2][1]
	cross := d1x*d2y - d1y*d2x
	norm := math.Hypot(d1x, d1y) * math.Hypot(d2x, d2y)
	if math.Abs(cross)/norm > 1e-6 {
		t.Errorf("corrected horizontals not parallel: cross %g", cross/norm)
	}
}

func TestPerspectiveFivePointsOnCircle(t *testing.T) {
	// Five points on a genuine ellipse (a projected circle) must be
	// accepted.
	m := perspectiveModifier(t, false)

	var xs, ys []float64
	for i:=0; i<5; i++ {
		phi := 2.0 * math.Pi * float64(i) / 5.0
		xs = append(xs, 500+200*math.Cos(phi))
		ys = append(ys, 620+90*math.Sin(phi))
	}
	if !m.EnablePerspectiveCorrection(xs, ys, 5, 0) {
		t.Errorf("valid 5-point circle rejected")
	}
}

func TestPerspectiveFivePointsDegenerate(t *testing.T) {
	// Four of the five points are colinear, so the interpolating conic
	// degenerates to a line pair; the documented behavior is to refuse
	// rather than guess.
	m := perspectiveModifier(t, false)

	xs := []float64{100, 300, 500, 700, 900}
	ys := []float64{100, 200, 300.1, 400, 500}
	if m.EnablePerspectiveCorrection(xs, ys, 5, 0) {
		t.Errorf("near-colinear 5 points must be rejected")
	}
}

func TestPerspectiveRoundTrip(t *testing.T) {
	// The forward kernel applies the inverse rotation of the reverse
	// kernel, so chaining them is the identity.
	fwd := perspectiveModifier(t, false)
	rev := perspectiveModifier(t, true)

	xs := []float64{400, 430, 600, 570}
	ys := []float64{800, 200, 800, 200}
	if !fwd.EnablePerspectiveCorrection(xs, ys, 4, 0) ||
		!rev.EnablePerspectiveCorrection(xs, ys, 4, 0) {
		t.Fatalf("perspective correction not enabled")
	}

	for i:=0; i<32; i++ {
		nx := -0.5 + float64(i)/31.0
		ny := 0.3*nx - 0.1
		dx, dy := mapNorm(fwd, nx, ny)
		rx, ry := mapNorm(rev, dx, dy)
		if !almost(rx, nx, 1e-6) || !almost(ry, ny, 1e-6) {
			t.Fatalf("round trip of (%.4f, %.4f) gave (%.6f, %.6f)", nx, ny, rx, ry)
		}
	}
}
