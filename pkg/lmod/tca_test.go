package lmod

import(
	"testing"

	"github.com/openphoto/lenskit/pkg/ldb"
)

func tcaModifier(t *testing.T, tc ldb.CalibTCA, reverse bool) *Modifier {
	t.Helper()
	l := testLens()
	l.AddCalibTCA(tc)
	m := newTestModifier(l)
	if m.Initialize(l, PixelF64, tc.Focal, 2.8, 10, 1.0, ldb.LensRectilinear,
		ModifyTCA, reverse)&ModifyTCA == 0 {
		t.Fatalf("tca kernel not installed for %+v", tc)
	}
	return m
}

func TestTCALinear(t *testing.T) {
	// kR=1.002, kB=0.998 at f=50; querying Ru=(0.3, 0) must give red at
	// (0.3006, 0), blue at (0.2994, 0), green unchanged.
	tc := ldb.CalibTCA{Model: ldb.TCAModelLinear, Focal: 50}
	tc.Terms[0], tc.Terms[1] = 1.002, 0.998
	m := tcaModifier(t, tc, false)

	got := mapSubpixelNorm(m, 0.3, 0)
	expected := [6]float64{0.3006, 0, 0.3, 0, 0.2994, 0}
	for i := range expected {
		if !almost(got[i], expected[i], 1e-9) {
			t.Errorf("component %d: got %.6f, expected %.6f", i, got[i], expected[i])
		}
	}
}

func TestTCARoundTrip(t *testing.T) {
	calibs := []ldb.CalibTCA{
		{Model: ldb.TCAModelLinear, Focal: 50,
			Terms: [12]float64{1.002, 0.998}},
		{Model: ldb.TCAModelPoly3, Focal: 50,
			Terms: [12]float64{1.001, 0.999, 0.002, -0.001, -0.003, 0.002}},
		{Model: ldb.TCAModelACM, Focal: 50,
			Terms: [12]float64{1.001, 0.999, 0.0005, -0.0004, 0.0001, -0.0001, 0, 0, 0.0002, -0.0001, 0.0001, 0.0002}},
	}

	for _, tc := range calibs {
		fwd := tcaModifier(t, tc, false)
		rev := tcaModifier(t, tc, true)

		name, _, _ := ldb.TCAModelDesc(tc.Model)
		for i:=0; i<32; i++ {
			for j:=0; j<32; j++ {
				nx := -0.7 + 1.4*float64(i)/31.0
				ny := -0.7 + 1.4*float64(j)/31.0
				d := mapSubpixelNorm(fwd, nx, ny)
				// Feed each channel's coordinate through the reverse
				// kernel and check the same channel comes back
				r := mapSubpixelNorm(rev, d[0], d[1])
				b := mapSubpixelNorm(rev, d[4], d[5])
				if !almost(r[0], nx, 1e-4) || !almost(r[1], ny, 1e-4) {
					t.Fatalf("%s: red round trip of (%.4f, %.4f) gave (%.6f, %.6f)",
						name, nx, ny, r[0], r[1])
				}
				if !almost(b[4], nx, 1e-4) || !almost(b[5], ny, 1e-4) {
					t.Fatalf("%s: blue round trip of (%.4f, %.4f) gave (%.6f, %.6f)",
						name, nx, ny, b[4], b[5])
				}
			}
		}
	}
}

func TestTCAPoly3KernelValue(t *testing.T) {
	// Terms are [vr vb cr cb br bb]; the red scale at radius R is
	// br*R^2 + cr*R + vr.
	tc := ldb.CalibTCA{Model: ldb.TCAModelPoly3, Focal: 50,
		Terms: [12]float64{1.001, 0.999, 0.002, -0.001, -0.003, 0.002}}
	m := tcaModifier(t, tc, false)

	got := mapSubpixelNorm(m, 0.4, 0)
	scaleR := -0.003*0.16 + 0.002*0.4 + 1.001
	scaleB := 0.002*0.16 + -0.001*0.4 + 0.999
	if !almost(got[0], 0.4*scaleR, 1e-9) {
		t.Errorf("red: got %.7f, expected %.7f", got[0], 0.4*scaleR)
	}
	if !almost(got[4], 0.4*scaleB, 1e-9) {
		t.Errorf("blue: got %.7f, expected %.7f", got[4], 0.4*scaleB)
	}
	if !almost(got[2], 0.4, 1e-12) {
		t.Errorf("green must be untouched, got %.7f", got[2])
	}
}
