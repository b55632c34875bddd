package ldb

import(
	"math"
	"testing"
)

func almost(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestInterpolateDistortionExactMatch(t *testing.T) {
	l := NewLens()
	l.AddCalibDistortion(CalibDistortion{Model: DistModelPoly3, Focal: 20,
		Terms: [5]float64{0.1}})
	l.AddCalibDistortion(CalibDistortion{Model: DistModelPoly3, Focal: 50,
		Terms: [5]float64{-0.03}})

	var res CalibDistortion
	if !l.InterpolateDistortion(20, &res) {
		t.Fatalf("interpolation failed")
	}
	// An exact focal match must come back verbatim, bit for bit
	if res != l.CalibDistortion[0] {
		t.Errorf("exact match not verbatim: got %+v", res)
	}
}

func TestInterpolateDistortionTwoSampleSpline(t *testing.T) {
	// POLY5 samples at f=24 (k1=0.05) and f=70 (k1=-0.02). With no outer
	// neighbours the Hermite spline reduces to a straight line in the
	// scaled parameter k1*f: at f=47 the midpoint is
	// (0.05*24 + (-0.02)*70)/2 = -0.1, and dividing by the query focal
	// gives -0.1/47 = -0.0021276596.
	l := NewLens()
	l.AddCalibDistortion(CalibDistortion{Model: DistModelPoly5, Focal: 24,
		Terms: [5]float64{0.05, 0}})
	l.AddCalibDistortion(CalibDistortion{Model: DistModelPoly5, Focal: 70,
		Terms: [5]float64{-0.02, 0}})

	var res CalibDistortion
	if !l.InterpolateDistortion(47, &res) {
		t.Fatalf("interpolation failed")
	}
	if res.Model != DistModelPoly5 || res.Focal != 47 {
		t.Errorf("wrong model/focal: %+v", res)
	}
	expected := (0.05*24 - 0.02*70) / 2.0 / 47.0
	if !almost(res.Terms[0], expected, 1e-9) {
		t.Errorf("k1: got %.9f, expected %.9f", res.Terms[0], expected)
	}
	if res.Terms[1] != 0 {
		t.Errorf("k2: got %f, expected 0", res.Terms[1])
	}
}

func TestInterpolateDistortionSingleSample(t *testing.T) {
	l := NewLens()
	l.AddCalibDistortion(CalibDistortion{Model: DistModelPTLens, Focal: 35,
		Terms: [5]float64{0.01, -0.02, 0.005}})

	var res CalibDistortion
	for _, focal := range []float64{10, 35, 200} {
		if !l.InterpolateDistortion(focal, &res) {
			t.Fatalf("f=%f: interpolation failed", focal)
		}
		if res != l.CalibDistortion[0] {
			t.Errorf("f=%f: single sample not returned verbatim", focal)
		}
	}
}

func TestInterpolateDistortionEmptyAndNone(t *testing.T) {
	l := NewLens()
	var res CalibDistortion
	res.Terms[0] = 42 // must stay untouched on failure
	if l.InterpolateDistortion(50, &res) {
		t.Errorf("empty list should fail")
	}

	l.AddCalibDistortion(CalibDistortion{Model: DistModelNone, Focal: 50})
	if l.InterpolateDistortion(50, &res) {
		t.Errorf("all-NONE list should fail")
	}
	if res.Terms[0] != 42 {
		t.Errorf("failed interpolation touched the output record")
	}
}

func TestInterpolateDistortionModelLatching(t *testing.T) {
	// The first non-NONE model wins; later records of other models are
	// silently skipped.
	l := NewLens()
	l.AddCalibDistortion(CalibDistortion{Model: DistModelPoly3, Focal: 24, Terms: [5]float64{0.04}})
	l.AddCalibDistortion(CalibDistortion{Model: DistModelPTLens, Focal: 35, Terms: [5]float64{0.5, 0.5, 0.5}})
	l.AddCalibDistortion(CalibDistortion{Model: DistModelPoly3, Focal: 50, Terms: [5]float64{0.02}})

	var res CalibDistortion
	if !l.InterpolateDistortion(35, &res) {
		t.Fatalf("interpolation failed")
	}
	if res.Model != DistModelPoly3 {
		t.Errorf("model: got %v, expected POLY3", res.Model)
	}
	// With no outer neighbours the spline is linear in k1*f between the
	// POLY3 samples: at f=35, t = (35-24)/(50-24) = 11/26, and the result
	// is divided by 35
	frac := (35.0 - 24.0) / (50.0 - 24.0)
	expected := (0.04*24 + (0.02*50-0.04*24)*frac) / 35.0
	if !almost(res.Terms[0], expected, 1e-9) {
		t.Errorf("k1: got %.9f, expected %.9f", res.Terms[0], expected)
	}
}

func TestInterpolateDistortionACMScaling(t *testing.T) {
	// ACM terms are scaled by f/f^(2(i+1)) for i < 3 and left alone for
	// the tangential terms. With two samples this is linear in the scaled
	// parameter.
	l := NewLens()
	l.AddCalibDistortion(CalibDistortion{Model: DistModelACM, Focal: 10,
		Terms: [5]float64{0.1, 0.01, 0.001, 0.02, 0.03}})
	l.AddCalibDistortion(CalibDistortion{Model: DistModelACM, Focal: 20,
		Terms: [5]float64{0.05, 0.005, 0.0005, 0.04, 0.01}})

	var res CalibDistortion
	if !l.InterpolateDistortion(15, &res) {
		t.Fatalf("interpolation failed")
	}

	scale := func(i int, f float64) float64 {
		if i < 3 {
			return f / math.Pow(f, float64(2*(i+1)))
		}
		return 1.0
	}
	for i:=0; i<5; i++ {
		expected := (l.CalibDistortion[0].Terms[i]*scale(i, 10)+
			l.CalibDistortion[1].Terms[i]*scale(i, 20)) / 2.0 / scale(i, 15)
		if !almost(res.Terms[i], expected, 1e-12) {
			t.Errorf("term %d: got %g, expected %g", i, res.Terms[i], expected)
		}
	}
}

func TestInterpolateTCAExactAndSpline(t *testing.T) {
	l := NewLens()
	tc1 := CalibTCA{Model: TCAModelLinear, Focal: 24}
	tc1.Terms[0], tc1.Terms[1] = 1.002, 0.998
	tc2 := CalibTCA{Model: TCAModelLinear, Focal: 70}
	tc2.Terms[0], tc2.Terms[1] = 1.004, 0.996
	l.AddCalibTCA(tc1)
	l.AddCalibTCA(tc2)

	var res CalibTCA
	if !l.InterpolateTCA(24, &res) {
		t.Fatalf("interpolation failed")
	}
	if res != tc1 {
		t.Errorf("exact match not verbatim")
	}

	// kr and kb are scale factors near unity and are not axis-scaled, so
	// the midpoint is the plain average
	if !l.InterpolateTCA(47, &res) {
		t.Fatalf("interpolation failed")
	}
	if !almost(res.Terms[0], 1.003, 1e-9) || !almost(res.Terms[1], 0.997, 1e-9) {
		t.Errorf("kr/kb: got %.6f/%.6f, expected 1.003/0.997", res.Terms[0], res.Terms[1])
	}
}

func TestInterpolateVignettingExactMatch(t *testing.T) {
	// Three PA samples with distinct terms; querying the key of the third
	// returns it verbatim.
	l := NewLens()
	l.MinFocal, l.MaxFocal = 24, 50
	samples := []CalibVignetting{
		{Model: VigModelPA, Focal: 24, Aperture: 2.8, Distance: 1, Terms: [3]float64{-0.1, 0.01, 0}},
		{Model: VigModelPA, Focal: 24, Aperture: 5.6, Distance: 1, Terms: [3]float64{-0.2, 0.02, 0}},
		{Model: VigModelPA, Focal: 50, Aperture: 2.8, Distance: 1, Terms: [3]float64{-0.3, 0.03, 0}},
	}
	for _, s := range samples {
		l.AddCalibVignetting(s)
	}

	var res CalibVignetting
	if !l.InterpolateVignetting(50, 2.8, 1, &res) {
		t.Fatalf("interpolation failed")
	}
	if res != samples[2] {
		t.Errorf("exact match not verbatim: got %+v", res)
	}
}

func TestInterpolateVignettingIDW(t *testing.T) {
	// Same focal for both samples, so only the reciprocal aperture axis
	// separates them. Weights are 1/D^3.5.
	l := NewLens()
	l.MinFocal, l.MaxFocal = 24, 24 // zero focal range must not divide by zero
	l.AddCalibVignetting(CalibVignetting{Model: VigModelPA, Focal: 24, Aperture: 2.8, Distance: 1,
		Terms: [3]float64{0.1, 0, 0}})
	l.AddCalibVignetting(CalibVignetting{Model: VigModelPA, Focal: 24, Aperture: 5.6, Distance: 1,
		Terms: [3]float64{0.2, 0, 0}})

	var res CalibVignetting
	if !l.InterpolateVignetting(24, 4.0, 1, &res) {
		t.Fatalf("interpolation failed")
	}

	d1 := math.Abs(4.0/4.0 - 4.0/2.8)
	d2 := math.Abs(4.0/4.0 - 4.0/5.6)
	w1 := 1.0 / math.Pow(d1, 3.5)
	w2 := 1.0 / math.Pow(d2, 3.5)
	expected := (w1*0.1 + w2*0.2) / (w1 + w2)
	if math.IsNaN(res.Terms[0]) {
		t.Fatalf("IDW produced NaN")
	}
	if !almost(res.Terms[0], expected, 1e-9) {
		t.Errorf("k1: got %.6f, expected %.6f", res.Terms[0], expected)
	}
}

func TestInterpolateVignettingTooFar(t *testing.T) {
	// The nearest sample is farther than unit distance in the normalized
	// axes, so the interpolation refuses to extrapolate.
	l := NewLens()
	l.MinFocal, l.MaxFocal = 10, 500
	l.AddCalibVignetting(CalibVignetting{Model: VigModelPA, Focal: 10, Aperture: 1.2, Distance: 1,
		Terms: [3]float64{0.1, 0, 0}})

	var res CalibVignetting
	if l.InterpolateVignetting(500, 32, 1000, &res) {
		t.Errorf("expected failure when no sample is within unit distance")
	}
}

func TestInterpolateCropAndFov(t *testing.T) {
	l := NewLens()
	l.AddCalibCrop(CalibCrop{Focal: 10, CropMode: CropRectangle, Crop: [4]float64{0, 1, 0.1, 0.9}})
	l.AddCalibCrop(CalibCrop{Focal: 20, CropMode: CropRectangle, Crop: [4]float64{0.1, 0.9, 0.2, 0.8}})
	l.AddCalibFov(CalibFov{Focal: 10, FieldOfView: 100})
	l.AddCalibFov(CalibFov{Focal: 20, FieldOfView: 60})

	var cr CalibCrop
	if !l.InterpolateCrop(15, &cr) {
		t.Fatalf("crop interpolation failed")
	}
	if cr.CropMode != CropRectangle || !almost(cr.Crop[0], 0.05, 1e-9) || !almost(cr.Crop[3], 0.85, 1e-9) {
		t.Errorf("crop: got %+v", cr)
	}

	var fc CalibFov
	if !l.InterpolateFov(15, &fc) {
		t.Fatalf("fov interpolation failed")
	}
	if !almost(fc.FieldOfView, 80, 1e-9) {
		t.Errorf("fov: got %f, expected 80", fc.FieldOfView)
	}
	if !l.InterpolateFov(20, &fc) || fc.FieldOfView != 60 {
		t.Errorf("fov exact match: got %+v", fc)
	}
}
