package lmod

import(
	"testing"

	"github.com/openphoto/lenskit/pkg/ldb"
)

func distortionModifier(t *testing.T, dc ldb.CalibDistortion, reverse bool) *Modifier {
	t.Helper()
	l := testLens()
	l.AddCalibDistortion(dc)
	m := newTestModifier(l)
	if m.Initialize(l, PixelF64, dc.Focal, 2.8, 10, 1.0, ldb.LensRectilinear,
		ModifyDistortion, reverse)&ModifyDistortion == 0 {
		t.Fatalf("distortion kernel not installed for %+v", dc)
	}
	return m
}

func TestPoly3Forward(t *testing.T) {
	// Single sample at f=20, k1=0.1; query at the same focal and
	// Ru=0.5: Rd = 0.5 * (1 - 0.1 + 0.1*0.25) = 0.4625
	m := distortionModifier(t, ldb.CalibDistortion{Model: ldb.DistModelPoly3, Focal: 20,
		Terms: [5]float64{0.1}}, false)

	gx, gy := mapNorm(m, 0.5, 0)
	if !almost(gx, 0.4625, 1e-9) || !almost(gy, 0, 1e-12) {
		t.Errorf("got (%.6f, %.6f), expected (0.4625, 0)", gx, gy)
	}

	// Radial symmetry: same radius along y
	gx, gy = mapNorm(m, 0, -0.5)
	if !almost(gy, -0.4625, 1e-9) || !almost(gx, 0, 1e-12) {
		t.Errorf("got (%.6f, %.6f), expected (0, -0.4625)", gx, gy)
	}
}

func TestDistortionRoundTrip(t *testing.T) {
	// Applying the forward and the reverse kernel in sequence must return
	// every grid point to within 1e-4 in normalized units.
	calibs := []ldb.CalibDistortion{
		{Model: ldb.DistModelPoly3, Focal: 50, Terms: [5]float64{0.1}},
		{Model: ldb.DistModelPoly5, Focal: 50, Terms: [5]float64{0.05, -0.01}},
		{Model: ldb.DistModelPTLens, Focal: 50, Terms: [5]float64{0.01, -0.03, 0.02}},
		{Model: ldb.DistModelACM, Focal: 50, Terms: [5]float64{0.05, -0.01, 0.001, 0.0005, -0.0003}},
	}

	for _, dc := range calibs {
		fwd := distortionModifier(t, dc, false)
		rev := distortionModifier(t, dc, true)

		name, _, _ := ldb.DistortionModelDesc(dc.Model)
		for i:=0; i<32; i++ {
			for j:=0; j<32; j++ {
				nx := -0.7 + 1.4*float64(i)/31.0
				ny := -0.7 + 1.4*float64(j)/31.0
				dx, dy := mapNorm(fwd, nx, ny)
				rx, ry := mapNorm(rev, dx, dy)
				if !almost(rx, nx, 1e-4) || !almost(ry, ny, 1e-4) {
					t.Fatalf("%s: round trip of (%.4f, %.4f) gave (%.6f, %.6f)",
						name, nx, ny, rx, ry)
				}
			}
		}
	}
}

func TestDistortionNoneNotInstalled(t *testing.T) {
	l := testLens()
	l.AddCalibDistortion(ldb.CalibDistortion{Model: ldb.DistModelNone, Focal: 50})
	m := newTestModifier(l)
	got := m.Initialize(l, PixelF64, 50, 2.8, 10, 1.0, ldb.LensRectilinear, ModifyDistortion, false)
	if got != 0 {
		t.Errorf("effective flags: got %#x, expected 0", got)
	}
}
