package lmod

import(
	"testing"

	"github.com/openphoto/lenskit/pkg/ldb"
)

func TestAutoScaleBarrelDistortion(t *testing.T) {
	// POLY3 with k1=0.05 is mild barrel distortion: the corrected corners
	// pull in, so autoscale has to magnify a little.
	l := testLens()
	l.AddCalibDistortion(ldb.CalibDistortion{Model: ldb.DistModelPoly3, Focal: 50,
		Terms: [5]float64{0.05}})

	m := newTestModifier(l)
	m.Initialize(l, PixelF64, 50, 2.8, 10, 1.0, ldb.LensRectilinear, ModifyDistortion, false)

	scale := m.GetAutoScale(false)
	if scale < 1.02 || scale > 1.08 {
		t.Errorf("autoscale: got %f, expected within [1.02, 1.08]", scale)
	}

	// The reverse factor is the reciprocal
	if rev := m.GetAutoScale(true); !almost(rev, 1.0/scale, 1e-9) {
		t.Errorf("reverse autoscale: got %f, expected %f", rev, 1.0/scale)
	}
}

func TestAutoScaleKeepsSamplesInside(t *testing.T) {
	// With autoscale plus distortion installed, mapping any border pixel
	// of the output must land inside the source frame (within a small
	// slack for the bisection).
	l := testLens()
	l.AddCalibDistortion(ldb.CalibDistortion{Model: ldb.DistModelPoly3, Focal: 50,
		Terms: [5]float64{0.05}})

	m := newTestModifier(l)
	got := m.Initialize(l, PixelF64, 50, 2.8, 10, 0.0, ldb.LensRectilinear,
		ModifyDistortion|ModifyScale, false)
	if got != ModifyDistortion|ModifyScale {
		t.Fatalf("effective flags: got %#x", got)
	}

	probe := func(nx, ny float64) {
		gx, gy := mapNorm(m, nx, ny)
		if gx < -m.MaxX-1e-3 || gx > m.MaxX+1e-3 || gy < -m.MaxY-1e-3 || gy > m.MaxY+1e-3 {
			t.Errorf("border point (%.2f, %.2f) samples outside: (%.4f, %.4f)", nx, ny, gx, gy)
		}
	}

	// Corners and edge midpoints of the output frame
	for _, p := range [][2]float64{
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	} {
		probe(p[0], p[1])
	}
}

func TestAutoScaleWithoutKernelsIsUnity(t *testing.T) {
	l := testLens()
	m := newTestModifier(l)
	if scale := m.GetAutoScale(false); scale != 1.0 {
		t.Errorf("autoscale on an empty chain: got %f, expected 1", scale)
	}
}

func TestAutoScalePincushionClampsToOne(t *testing.T) {
	// Pincushion correction pushes the corners outward, so no
	// magnification is needed; the scale must still be at least 1.
	l := testLens()
	l.AddCalibDistortion(ldb.CalibDistortion{Model: ldb.DistModelPoly3, Focal: 50,
		Terms: [5]float64{-0.05}})

	m := newTestModifier(l)
	m.Initialize(l, PixelF64, 50, 2.8, 10, 1.0, ldb.LensRectilinear, ModifyDistortion, false)

	if scale := m.GetAutoScale(false); scale < 1.0 {
		t.Errorf("autoscale: got %f, expected >= 1", scale)
	}
}
