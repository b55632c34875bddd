package ldb

// The calibration record kinds owned by a Lens. Their term layouts follow
// the database conventions, so records loaded by external tooling drop
// straight in.

// DistortionModel identifies the radial distortion model a calibration
// record was fitted with.
type DistortionModel int

const (
	DistModelNone DistortionModel = iota
	// Rd = Ru * (1 - k1 + k1 * Ru^2); terms [k1]
	DistModelPoly3
	// Rd = Ru * (1 + k1 * Ru^2 + k2 * Ru^4); terms [k1 k2]
	DistModelPoly5
	// Rd = Ru * (a * Ru^3 + b * Ru^2 + c * Ru + 1 - a - b - c); terms [a b c]
	DistModelPTLens
	// Adobe camera model, radial plus two tangential terms, coordinates in
	// units of the real focal length; terms [k1 k2 k3 k4 k5]
	DistModelACM
)

// TCAModel identifies the transversal chromatic aberration model.
type TCAModel int

const (
	TCAModelNone TCAModel = iota
	// Rd = Ru * k per channel; terms [kr kb]
	TCAModelLinear
	// Rd = Ru * (b*Ru^2 + c*Ru + v) per channel; terms [vr vb cr cb br bb]
	TCAModelPoly3
	// Adobe camera model per channel, coordinates in units of the focal
	// length; terms [a0 b0 a1 b1 a2 b2 a3 b3 a4 b4 a5 b5]
	TCAModelACM
)

// VignettingModel identifies the brightness falloff model.
type VignettingModel int

const (
	VigModelNone VignettingModel = iota
	// Pablo D'Angelo model: Cd = Cs * (1 + k1 R^2 + k2 R^4 + k3 R^6)
	VigModelPA
	// Same polynomial, with R in units of the focal length
	VigModelACM
)

// CropMode tells how the usable image area is delimited.
type CropMode int

const (
	NoCrop CropMode = iota
	CropRectangle
	CropCircle
)

// LensType is the projection geometry of a lens. The numeric values are
// stable across database versions.
type LensType int

const (
	LensUnknown LensType = iota
	LensRectilinear
	LensFisheye // equidistant
	LensPanoramic
	LensEquirectangular
	LensFisheyeOrthographic
	LensFisheyeStereographic
	LensFisheyeEquisolid
	LensFisheyeThoby
)

// CalibDistortion is one sampled distortion calibration, keyed by nominal
// focal length.
type CalibDistortion struct {
	Model DistortionModel `yaml:"model"`
	Focal float64         `yaml:"focal"`

	// Paraxial focal length for this nominal focal. Zero means unknown;
	// AddCalibDistortion fills in the model default.
	RealFocal         float64 `yaml:"realfocal,omitempty"`
	RealFocalMeasured bool    `yaml:"realfocalmeasured,omitempty"`

	Terms [5]float64 `yaml:"terms,flow"`
}

// CalibTCA is one sampled TCA calibration, keyed by nominal focal length.
type CalibTCA struct {
	Model TCAModel    `yaml:"model"`
	Focal float64     `yaml:"focal"`
	Terms [12]float64 `yaml:"terms,flow"`
}

// CalibVignetting is one sampled vignetting calibration, keyed by
// (focal, aperture, focus distance).
type CalibVignetting struct {
	Model    VignettingModel `yaml:"model"`
	Focal    float64         `yaml:"focal"`
	Aperture float64         `yaml:"aperture"`
	Distance float64         `yaml:"distance"`
	Terms    [3]float64      `yaml:"terms,flow"`
}

// CalibCrop delimits the usable image area at one focal length. The crop
// values are left, right, top, bottom, relative to the long image side;
// negative values are allowed for crop circles extending beyond the frame.
type CalibCrop struct {
	Focal    float64    `yaml:"focal"`
	CropMode CropMode   `yaml:"cropmode"`
	Crop     [4]float64 `yaml:"crop,flow"`
}

// CalibFov stores a measured field of view in degrees. Deprecated in the
// database format, but still honored as a real-focal-length fallback.
type CalibFov struct {
	Focal       float64 `yaml:"focal"`
	FieldOfView float64 `yaml:"fov"`
}
