package lmod

import(
	"math"

	"github.com/openphoto/lenskit/pkg/ldb"
)

// TCA kernels run on the subpixel chain: interleaved (xR,yR,xG,yG,xB,yB)
// groups, all in normalized coordinates. Green is the reference channel
// and stays put; red and blue get their own radial magnification.

// AddSubpixelCallbackTCA installs the stock TCA kernel for the given
// calibration at priority 500.
func (m *Modifier)AddSubpixelCallbackTCA(tc ldb.CalibTCA, reverse bool) bool {
	var fn SubpixelFunc

	switch tc.Model {
	case ldb.TCAModelLinear:
		kr, kb := tc.Terms[0], tc.Terms[1]
		if kr == 0 || kb == 0 {
			return false
		}
		if reverse {
			fn = func(io []float64) { tcaLinear(io, 1.0/kr, 1.0/kb) }
		} else {
			fn = func(io []float64) { tcaLinear(io, kr, kb) }
		}

	case ldb.TCAModelPoly3:
		vr, vb := tc.Terms[0], tc.Terms[1]
		cr, cb := tc.Terms[2], tc.Terms[3]
		br, bb := tc.Terms[4], tc.Terms[5]
		if reverse {
			fn = func(io []float64) { unTCAPoly3(io, br, cr, vr, bb, cb, vb) }
		} else {
			fn = func(io []float64) { tcaPoly3(io, br, cr, vr, bb, cb, vb) }
		}

	case ldb.TCAModelACM:
		if m.FocalLengthNormalized <= 0 {
			return false
		}
		conv := 1.0 / m.FocalLengthNormalized
		var alpha, beta [6]float64
		for i:=0; i<6; i++ {
			alpha[i] = tc.Terms[2*i]
			beta[i] = tc.Terms[2*i+1]
		}
		if alpha[0] == 0 || beta[0] == 0 {
			return false
		}
		if reverse {
			fn = func(io []float64) { unTCAACM(io, alpha, beta, conv) }
		} else {
			fn = func(io []float64) { tcaACM(io, alpha, beta, conv) }
		}

	default:
		return false
	}

	m.AddSubpixelCallback(fn, prioTCA)
	return true
}

// Rd = Ru * k per channel
func tcaLinear(io []float64, kr, kb float64) {
	for i:=0; i<len(io); i += 6 {
		io[i] *= kr
		io[i+1] *= kr
		io[i+4] *= kb
		io[i+5] *= kb
	}
}

// Rd = Ru * (b*Ru^2 + c*Ru + v) per channel
func tcaPoly3(io []float64, br, cr, vr, bb, cb, vb float64) {
	for i:=0; i<len(io); i += 6 {
		x, y := io[i], io[i+1]
		r := math.Sqrt(x*x + y*y)
		poly := br*r*r + cr*r + vr
		io[i] = x * poly
		io[i+1] = y * poly

		x, y = io[i+4], io[i+5]
		r = math.Sqrt(x*x + y*y)
		poly = bb*r*r + cb*r + vb
		io[i+4] = x * poly
		io[i+5] = y * poly
	}
}

func unTCAPoly3(io []float64, br, cr, vr, bb, cb, vb float64) {
	scale := func(x, y, b, c, v float64) float64 {
		rd := math.Sqrt(x*x + y*y)
		if rd == 0 {
			return 1.0
		}
		ru := newtonRadius(rd, func(r float64) (float64, float64) {
			return r * (b*r*r + c*r + v), 3.0*b*r*r + 2.0*c*r + v
		})
		return ru / rd
	}
	for i:=0; i<len(io); i += 6 {
		s := scale(io[i], io[i+1], br, cr, vr)
		io[i] *= s
		io[i+1] *= s
		s = scale(io[i+4], io[i+5], bb, cb, vb)
		io[i+4] *= s
		io[i+5] *= s
	}
}

// The Adobe TCA model: per-channel radial-plus-tangential polynomial with
// an overall scale, in units of the (nominal) focal length.
func acmChannel(x, y float64, k [6]float64) (float64, float64) {
	r2 := x*x + y*y
	radial := 1.0 + k[1]*r2 + k[2]*r2*r2 + k[3]*r2*r2*r2
	tang := 2.0 * (k[4]*y + k[5]*x)
	xd := k[0] * (x*radial + x*tang + k[5]*r2)
	yd := k[0] * (y*radial + y*tang + k[4]*r2)
	return xd, yd
}

func acmChannelInverse(xd, yd float64, k [6]float64) (float64, float64) {
	x, y := xd/k[0], yd/k[0]
	for it:=0; it<newtonIterations; it++ {
		gx, gy := acmChannel(x, y, k)
		fx, fy := gx-xd, gy-yd
		if math.Abs(fx) < newtonEps && math.Abs(fy) < newtonEps {
			break
		}
		r2 := x*x + y*y
		radial := 1.0 + k[1]*r2 + k[2]*r2*r2 + k[3]*r2*r2*r2
		tang := 2.0 * (k[4]*y + k[5]*x)
		dradial := 2.0*k[1] + 4.0*k[2]*r2 + 6.0*k[3]*r2*r2
		j00 := k[0] * (radial + x*x*dradial + tang + 4.0*k[5]*x)
		j01 := k[0] * (x*y*dradial + 2.0*k[4]*x + 2.0*k[5]*y)
		j10 := k[0] * (x*y*dradial + 2.0*k[5]*y + 2.0*k[4]*x)
		j11 := k[0] * (radial + y*y*dradial + tang + 4.0*k[4]*y)
		det := j00*j11 - j01*j10
		if det == 0 {
			break
		}
		x -= (fx*j11 - fy*j01) / det
		y -= (fy*j00 - fx*j10) / det
	}
	return x, y
}

func tcaACM(io []float64, alpha, beta [6]float64, conv float64) {
	for i:=0; i<len(io); i += 6 {
		x, y := acmChannel(io[i]*conv, io[i+1]*conv, alpha)
		io[i] = x / conv
		io[i+1] = y / conv
		x, y = acmChannel(io[i+4]*conv, io[i+5]*conv, beta)
		io[i+4] = x / conv
		io[i+5] = y / conv
	}
}

func unTCAACM(io []float64, alpha, beta [6]float64, conv float64) {
	for i:=0; i<len(io); i += 6 {
		x, y := acmChannelInverse(io[i]*conv, io[i+1]*conv, alpha)
		io[i] = x / conv
		io[i+1] = y / conv
		x, y = acmChannelInverse(io[i+4]*conv, io[i+5]*conv, beta)
		io[i+4] = x / conv
		io[i+5] = y / conv
	}
}
