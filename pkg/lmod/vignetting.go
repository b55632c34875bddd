package lmod

import(
	"github.com/openphoto/lenskit/pkg/ldb"
)

// Vignetting kernels run on the color chain, modifying pixel values in
// place. Correction divides each component by the falloff polynomial;
// the reverse transform multiplies, re-applying the lens falloff.
//
// Integer components clamp at the type maximum on the way back; float
// components don't.

type vignettingConfig struct {
	terms   [3]float64
	// Image coordinates to model coordinates: pixel offset from the
	// optical center times this
	coordScale float64
	centerX, centerY float64
	reverse bool
}

// AddColorCallbackVignetting installs the stock vignetting kernel for the
// given calibration. Forward priority 250, reverse 750.
func (m *Modifier)AddColorCallbackVignetting(vc ldb.CalibVignetting, format PixelFormat, reverse bool) bool {
	cfg := vignettingConfig{
		terms:   vc.Terms,
		centerX: m.CenterX,
		centerY: m.CenterY,
		reverse: reverse,
	}

	switch vc.Model {
	case ldb.VigModelPA:
		// The falloff polynomial is calibrated against the short side of
		// the calibration frame, not the long one
		cfg.coordScale = m.NormScale * m.AspectRatioCorrection
	case ldb.VigModelACM:
		if m.FocalLengthNormalized <= 0 {
			return false
		}
		cfg.coordScale = m.NormScale / m.FocalLengthNormalized
	default:
		return false
	}

	var fn ColorFunc
	switch format {
	case PixelU8:
		fn = func(x, y float64, pixels interface{}, roles ComponentRoles, count int) {
			vignetteStrip(pixels.([]uint8), 255, x, y, roles, count, &cfg)
		}
	case PixelU16:
		fn = func(x, y float64, pixels interface{}, roles ComponentRoles, count int) {
			vignetteStrip(pixels.([]uint16), 65535, x, y, roles, count, &cfg)
		}
	case PixelU32:
		fn = func(x, y float64, pixels interface{}, roles ComponentRoles, count int) {
			vignetteStrip(pixels.([]uint32), 4294967295, x, y, roles, count, &cfg)
		}
	case PixelF32:
		fn = func(x, y float64, pixels interface{}, roles ComponentRoles, count int) {
			vignetteStrip(pixels.([]float32), 0, x, y, roles, count, &cfg)
		}
	case PixelF64:
		fn = func(x, y float64, pixels interface{}, roles ComponentRoles, count int) {
			vignetteStrip(pixels.([]float64), 0, x, y, roles, count, &cfg)
		}
	default:
		return false
	}

	priority := prioVignettingFwd
	if reverse {
		priority = prioVignettingRev
	}
	m.AddColorCallback(fn, priority)
	return true
}

type pixelComponent interface {
	~uint8 | ~uint16 | ~uint32 | ~float32 | ~float64
}

// vignetteStrip walks count pixel groups starting at image coordinate
// (x, y). maxVal > 0 clamps the result (integer formats).
func vignetteStrip[T pixelComponent](pix []T, maxVal float64, x, y float64,
	roles ComponentRoles, count int, cfg *vignettingConfig) {

	cx := (x - cfg.centerX) * cfg.coordScale
	cy := (y - cfg.centerY) * cfg.coordScale
	step := cfg.coordScale

	p := 0
	for n:=0; n<count; n++ {
		r2 := cx*cx + cy*cy
		g := 1.0 + cfg.terms[0]*r2 + cfg.terms[1]*r2*r2 + cfg.terms[2]*r2*r2*r2

		for cr := roles; cr != 0; cr >>= 4 {
			switch ComponentRole(cr & 15) {
			case CREnd:
				// A zero slot terminates the list even with junk above it
				cr = 0xf
			case CRNext:
				// Same group, next image pixel (Bayer layouts)
				cx += step
				r2 = cx*cx + cy*cy
				g = 1.0 + cfg.terms[0]*r2 + cfg.terms[1]*r2*r2 + cfg.terms[2]*r2*r2*r2
			case CRUnknown:
				p++
			case CRIntensity, CRRed, CRGreen, CRBlue:
				v := float64(pix[p])
				if cfg.reverse {
					v *= g
				} else {
					v /= g
				}
				if maxVal > 0 {
					if v > maxVal {
						v = maxVal
					}
					if v < 0 {
						v = 0
					}
				}
				pix[p] = T(v)
				p++
			}
		}
		cx += step
	}
}
