package ldb

// Human-readable descriptors for the calibration models, with per-term
// bounds and defaults. UIs use these to build sliders; the bounds are the
// ranges that make sense for real lenses, not hard limits.

// A Parameter describes a single term of some lens model.
type Parameter struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// DistortionModelDesc returns the name, a details string, and the
// parameter list of a distortion model. The name is "" for an unknown
// model value.
func DistortionModelDesc(model DistortionModel) (name, details string, params []Parameter) {
	switch model {
	case DistModelNone:
		return "None", "No distortion model", []Parameter{}
	case DistModelPoly3:
		return "3rd order polynomial",
			"Rd = Ru * (1 - k1 + k1 * Ru^2)\nRef: http://www.imatest.com/docs/distortion.html",
			[]Parameter{{"k1", -0.2, 0.2, 0}}
	case DistModelPoly5:
		return "5th order polynomial",
			"Rd = Ru * (1 + k1 * Ru^2 + k2 * Ru^4)\nRef: http://www.imatest.com/docs/distortion.html",
			[]Parameter{{"k1", -0.2, 0.2, 0}, {"k2", -0.2, 0.2, 0}}
	case DistModelPTLens:
		return "PanoTools lens model",
			"Rd = Ru * (a * Ru^3 + b * Ru^2 + c * Ru + 1 - (a + b + c))\nRef: http://wiki.panotools.org/Lens_correction_model",
			[]Parameter{{"a", -0.5, 0.5, 0}, {"b", -1.0, 1.0, 0}, {"c", -1.0, 1.0, 0}}
	case DistModelACM:
		return "Adobe camera model",
			"x_d = x_u (1 + k_1 r^2 + k_2 r^4 + k_3 r^6) + 2x(k_4y + k_5x) + k_5 r^2\n" +
				"y_d = y_u (1 + k_1 r^2 + k_2 r^4 + k_3 r^6) + 2y(k_4y + k_5x) + k_4 r^2\n" +
				"Coordinates are in units of focal length.",
			[]Parameter{{"k1", -0.2, 0.2, 0}, {"k2", -0.2, 0.2, 0}, {"k3", -1.0, 1.0, 0},
				{"k4", -1.0, 1.0, 0}, {"k5", -1.0, 1.0, 0}}
	}
	return "", "", nil
}

// TCAModelDesc returns the name, a details string, and the parameter list
// of a TCA model.
func TCAModelDesc(model TCAModel) (name, details string, params []Parameter) {
	switch model {
	case TCAModelNone:
		return "None", "No transversal chromatic aberration model", []Parameter{}
	case TCAModelLinear:
		return "Linear", "Cd = Cs * k",
			[]Parameter{{"kr", 0.99, 1.01, 1}, {"kb", 0.99, 1.01, 1}}
	case TCAModelPoly3:
		return "3rd order polynomial",
			"Cd = Cs^3 * b + Cs^2 * c + Cs * v\nRef: http://wiki.panotools.org/Tca_correct",
			[]Parameter{
				{"vr", 0.99, 1.01, 1}, {"vb", 0.99, 1.01, 1},
				{"cr", -0.01, 0.01, 0}, {"cb", -0.01, 0.01, 0},
				{"br", -0.01, 0.01, 0}, {"bb", -0.01, 0.01, 0},
			}
	case TCAModelACM:
		return "Adobe camera model",
			"Radial plus tangential polynomial per channel, coordinates in units of focal length.",
			[]Parameter{
				{"alpha0", 0.99, 1.01, 1}, {"beta0", 0.99, 1.01, 1},
				{"alpha1", -0.01, 0.01, 0}, {"beta1", -0.01, 0.01, 0},
				{"alpha2", -0.01, 0.01, 0}, {"beta2", -0.01, 0.01, 0},
				{"alpha3", -0.01, 0.01, 0}, {"beta3", -0.01, 0.01, 0},
				{"alpha4", -0.01, 0.01, 0}, {"beta4", -0.01, 0.01, 0},
				{"alpha5", -0.01, 0.01, 0}, {"beta5", -0.01, 0.01, 0},
			}
	}
	return "", "", nil
}

// VignettingModelDesc returns the name, a details string, and the
// parameter list of a vignetting model.
func VignettingModelDesc(model VignettingModel) (name, details string, params []Parameter) {
	switch model {
	case VigModelNone:
		return "None", "No vignetting model", []Parameter{}
	case VigModelPA:
		return "6th order polynomial (Pablo D'Angelo)",
			"Pablo D'Angelo vignetting model\n(which is a more general variant of the cos^4 law):\n" +
				"Cd = Cs * (1 + k1 * R^2 + k2 * R^4 + k3 * R^6)\nRef: http://hugin.sourceforge.net/tech/",
			[]Parameter{{"k1", -3.0, 1.0, 0}, {"k2", -5.0, 10.0, 0}, {"k3", -5.0, 10.0, 0}}
	case VigModelACM:
		return "6th order polynomial (Adobe)",
			"Adobe's vignetting model\n(which differs from D'Angelo's only in the coordinate system)",
			[]Parameter{{"alpha1", -1.0, 1.0, 0}, {"alpha2", -5.0, 10.0, 0}, {"alpha3", -5.0, 10.0, 0}}
	}
	return "", "", nil
}

// CropModeDesc returns the name, a details string, and the parameter list
// of a crop mode.
func CropModeDesc(mode CropMode) (name, details string, params []Parameter) {
	cropParams := []Parameter{
		{"left", -1.0, 1.0, 0}, {"right", 0.0, 2.0, 0},
		{"top", -1.0, 1.0, 0}, {"bottom", 0.0, 2.0, 0},
	}
	switch mode {
	case NoCrop:
		return "No crop", "No crop", []Parameter{}
	case CropRectangle:
		return "rectangular crop", "Rectangular crop area", cropParams
	case CropCircle:
		return "circular crop", "Circular crop area", cropParams
	}
	return "", "", nil
}

// LensTypeDesc returns the name and a details string of a lens type.
func LensTypeDesc(t LensType) (name, details string) {
	switch t {
	case LensUnknown:
		return "Unknown", ""
	case LensRectilinear:
		return "Rectilinear", "Ref: http://wiki.panotools.org/Rectilinear_Projection"
	case LensFisheye:
		return "Fish-Eye", "Ref: http://wiki.panotools.org/Fisheye_Projection"
	case LensPanoramic:
		return "Panoramic", "Ref: http://wiki.panotools.org/Cylindrical_Projection"
	case LensEquirectangular:
		return "Equirectangular", "Ref: http://wiki.panotools.org/Equirectangular_Projection"
	case LensFisheyeOrthographic:
		return "Fisheye, orthographic", "Ref: http://wiki.panotools.org/Fisheye_Projection"
	case LensFisheyeStereographic:
		return "Fisheye, stereographic", "Ref: http://wiki.panotools.org/Stereographic_Projection"
	case LensFisheyeEquisolid:
		return "Fisheye, equisolid", "Ref: http://wiki.panotools.org/Fisheye_Projection"
	case LensFisheyeThoby:
		return "Thoby-Fisheye", ""
	}
	return "", ""
}
