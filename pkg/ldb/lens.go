package ldb

import(
	"regexp"
	"strconv"
	"strings"
)

// A Lens record: identity, geometry, and the five owned calibration lists.
// Records come from the external loader, or are built ad hoc for searches.
// Once handed to a modifier they must be treated as immutable.
type Lens struct {
	Maker  MLString `yaml:"maker"`
	Model  MLString `yaml:"model"`
	Mounts []string `yaml:"mounts,omitempty"`

	MinFocal    float64 `yaml:"minfocal,omitempty"`
	MaxFocal    float64 `yaml:"maxfocal,omitempty"`
	MinAperture float64 `yaml:"minaperture,omitempty"`
	MaxAperture float64 `yaml:"maxaperture,omitempty"`

	// Crop factor of the camera the calibration was measured on
	CropFactor  float64 `yaml:"cropfactor"`
	// Long side over short side of the calibration frame, >= 1
	AspectRatio float64 `yaml:"aspectratio,omitempty"`

	// Optical center shift, as a fraction of the image half-extent,
	// each in [-0.5, 0.5]
	CenterX float64 `yaml:"centerx,omitempty"`
	CenterY float64 `yaml:"centery,omitempty"`

	Type LensType `yaml:"type"`

	CalibDistortion []CalibDistortion `yaml:"calibdistortion,omitempty"`
	CalibTCA        []CalibTCA        `yaml:"calibtca,omitempty"`
	CalibVignetting []CalibVignetting `yaml:"calibvignetting,omitempty"`
	CalibCrop       []CalibCrop       `yaml:"calibcrop,omitempty"`
	CalibFov        []CalibFov        `yaml:"calibfov,omitempty"`
}

func NewLens() *Lens {
	// Attributes default to "unknown" (mostly 0), so that ad hoc instances
	// used for searches can be matched against database lenses easily.
	return &Lens{Type: LensUnknown}
}

func (l *Lens)Clone() *Lens {
	l2 := *l
	l2.Mounts = append([]string(nil), l.Mounts...)
	l2.CalibDistortion = append([]CalibDistortion(nil), l.CalibDistortion...)
	l2.CalibTCA = append([]CalibTCA(nil), l.CalibTCA...)
	l2.CalibVignetting = append([]CalibVignetting(nil), l.CalibVignetting...)
	l2.CalibCrop = append([]CalibCrop(nil), l.CalibCrop...)
	l2.CalibFov = append([]CalibFov(nil), l.CalibFov...)
	return &l2
}

func (l *Lens)AddMount(val string) {
	if val == "" {
		return
	}
	l.Mounts = append(l.Mounts, val)
}

// AddCalibDistortion appends a distortion sample, replacing any existing
// sample at the same focal length. An unknown real focal length defaults
// to the nominal one; PTLens fits assume the focal scaled by the linear
// polynomial coefficient.
func (l *Lens)AddCalibDistortion(dc CalibDistortion) {
	if dc.RealFocal == 0 {
		if dc.Model == DistModelPTLens {
			a, b, c := dc.Terms[0], dc.Terms[1], dc.Terms[2]
			dc.RealFocal = dc.Focal * (1 - a - b - c)
		} else {
			dc.RealFocal = dc.Focal
		}
	}
	for i := range l.CalibDistortion {
		if l.CalibDistortion[i].Focal == dc.Focal {
			l.CalibDistortion[i] = dc
			return
		}
	}
	l.CalibDistortion = append(l.CalibDistortion, dc)
}

func (l *Lens)RemoveCalibDistortion(idx int) bool {
	if idx < 0 || idx >= len(l.CalibDistortion) {
		return false
	}
	l.CalibDistortion = append(l.CalibDistortion[:idx], l.CalibDistortion[idx+1:]...)
	return true
}

// AddCalibTCA appends a TCA sample, replacing any existing sample at the
// same focal length.
func (l *Lens)AddCalibTCA(tc CalibTCA) {
	for i := range l.CalibTCA {
		if l.CalibTCA[i].Focal == tc.Focal {
			l.CalibTCA[i] = tc
			return
		}
	}
	l.CalibTCA = append(l.CalibTCA, tc)
}

func (l *Lens)RemoveCalibTCA(idx int) bool {
	if idx < 0 || idx >= len(l.CalibTCA) {
		return false
	}
	l.CalibTCA = append(l.CalibTCA[:idx], l.CalibTCA[idx+1:]...)
	return true
}

// AddCalibVignetting appends a vignetting sample, replacing any existing
// sample with the same (focal, aperture, distance) key.
func (l *Lens)AddCalibVignetting(vc CalibVignetting) {
	for i := range l.CalibVignetting {
		c := &l.CalibVignetting[i]
		if c.Focal == vc.Focal && c.Aperture == vc.Aperture && c.Distance == vc.Distance {
			*c = vc
			return
		}
	}
	l.CalibVignetting = append(l.CalibVignetting, vc)
}

func (l *Lens)RemoveCalibVignetting(idx int) bool {
	if idx < 0 || idx >= len(l.CalibVignetting) {
		return false
	}
	l.CalibVignetting = append(l.CalibVignetting[:idx], l.CalibVignetting[idx+1:]...)
	return true
}

// AddCalibCrop appends a crop sample, replacing any existing sample at the
// same focal length.
func (l *Lens)AddCalibCrop(cc CalibCrop) {
	for i := range l.CalibCrop {
		if l.CalibCrop[i].Focal == cc.Focal {
			l.CalibCrop[i] = cc
			return
		}
	}
	l.CalibCrop = append(l.CalibCrop, cc)
}

func (l *Lens)RemoveCalibCrop(idx int) bool {
	if idx < 0 || idx >= len(l.CalibCrop) {
		return false
	}
	l.CalibCrop = append(l.CalibCrop[:idx], l.CalibCrop[idx+1:]...)
	return true
}

// AddCalibFov appends a field-of-view sample, replacing any existing
// sample at the same focal length.
func (l *Lens)AddCalibFov(fc CalibFov) {
	for i := range l.CalibFov {
		if l.CalibFov[i].Focal == fc.Focal {
			l.CalibFov[i] = fc
			return
		}
	}
	l.CalibFov = append(l.CalibFov, fc)
}

func (l *Lens)RemoveCalibFov(idx int) bool {
	if idx < 0 || idx >= len(l.CalibFov) {
		return false
	}
	l.CalibFov = append(l.CalibFov[:idx], l.CalibFov[idx+1:]...)
	return true
}

// The usual ways makers write focal range and aperture into a model name.
var lensNameRegexps = []struct {
	rex      *regexp.Regexp
	minf, maxf, mina int // submatch indexes
}{
	// [min focal]-[max focal]mm f/[min aperture]-[max aperture]
	{regexp.MustCompile(`(?i)(\s+|^)([0-9]+[0-9.]*)(-[0-9]+[0-9.]*)?(mm)?\s+(f/|f|1/|1:)?([0-9.]+)(-[0-9.]+)?`), 2, 3, 6},
	// 1:[min aperture]-[max aperture] [min focal]-[max focal]mm
	{regexp.MustCompile(`(?i)\s+1:([0-9.]+)(-[0-9.]+)?\s+([0-9.]+)(-[0-9.]+)?(mm)?`), 3, 4, 1},
	// [min aperture]-[max aperture]/[min focal]-[max focal]
	{regexp.MustCompile(`(?i)([0-9.]+)(-[0-9.]+)?\s*/\s*([0-9.]+)(-[0-9.]+)?`), 3, 4, 1},
}

var extenderMagnificationRegexp = regexp.MustCompile(`(?i)[0-9](\.[0-9]+)?x`)

func parseLensNameFloat(s string) float64 {
	// A leading '-' is the range separator, not a minus sign
	s = strings.TrimPrefix(s, "-")
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseLensName(model string) (minf, maxf, mina float64, ok bool) {
	for _, r := range lensNameRegexps {
		m := r.rex.FindStringSubmatch(model)
		if m == nil {
			continue
		}
		if m[r.minf] != "" {
			minf = parseLensNameFloat(m[r.minf])
		}
		if m[r.maxf] != "" {
			maxf = parseLensNameFloat(m[r.maxf])
		}
		if m[r.mina] != "" {
			mina = parseLensNameFloat(m[r.mina])
		}
		return minf, maxf, mina, true
	}
	return 0, 0, 0, false
}

// GuessParameters fills in missing focal range and aperture fields, first
// from the model name, then from the calibration data ranges. Fields which
// already have a value are left alone, so calling this twice is a no-op.
func (l *Lens)GuessParameters() {
	var minf, maxf, mina, maxa float64

	model := l.Model.Get("en")
	if model != "" && (l.MinAperture == 0 || l.MinFocal == 0) &&
		!strings.Contains(model, "adapter") &&
		!strings.Contains(model, "reducer") &&
		!strings.Contains(model, "booster") &&
		!strings.Contains(model, "extender") &&
		!strings.Contains(model, "converter") &&
		!extenderMagnificationRegexp.MatchString(model) {
		minf, maxf, mina, _ = parseLensName(model)
	}

	if l.MinAperture == 0 || l.MinFocal == 0 {
		// Fall back on the range of focal lengths in the calibration data
		updf := func(f float64) {
			if minf == 0 || f < minf {
				minf = f
			}
			if f > maxf {
				maxf = f
			}
		}
		for _, c := range l.CalibDistortion {
			updf(c.Focal)
		}
		for _, c := range l.CalibTCA {
			updf(c.Focal)
		}
		for _, c := range l.CalibVignetting {
			updf(c.Focal)
			if mina == 0 || c.Aperture < mina {
				mina = c.Aperture
			}
			if c.Aperture > maxa {
				maxa = c.Aperture
			}
		}
		for _, c := range l.CalibCrop {
			updf(c.Focal)
		}
		for _, c := range l.CalibFov {
			updf(c.Focal)
		}
	}

	if minf != 0 && l.MinFocal == 0 {
		l.MinFocal = minf
	}
	if maxf != 0 && l.MaxFocal == 0 {
		l.MaxFocal = maxf
	}
	if mina != 0 && l.MinAperture == 0 {
		l.MinAperture = mina
	}
	if maxa != 0 && l.MaxAperture == 0 {
		l.MaxAperture = maxa
	}

	if l.MaxFocal == 0 {
		l.MaxFocal = l.MinFocal
	}
}

// Check guesses missing parameters, then reports whether the record is
// valid: a model name, at least one mount, a positive crop factor, sane
// focal and aperture ranges, and an aspect ratio of at least 1.
func (l *Lens)Check() bool {
	l.GuessParameters()

	if l.Model.Empty() || len(l.Mounts) == 0 || l.CropFactor <= 0 ||
		l.MinFocal > l.MaxFocal ||
		(l.MaxAperture != 0 && l.MinAperture > l.MaxAperture) ||
		l.AspectRatio < 1 {
		return false
	}

	return true
}
