package lmod

import(
	"math"
)

// Scaling and autoscale. The scale kernel is the first one on the
// coordinate chain (priority 100) no matter the direction: shrinking the
// sampling window is what hides the unfilled edges the other kernels
// would otherwise produce.

// AddCoordCallbackScale installs the stock scaling kernel. A scale of 0
// requests autoscale, which needs every other coordinate kernel to be on
// the chain already.
func (m *Modifier)AddCoordCallbackScale(scale float64, reverse bool) bool {
	if scale == 0 {
		scale = m.GetAutoScale(reverse)
	}
	if scale == 0 {
		return false
	}

	factor := 1.0 / scale
	if reverse {
		factor = scale
	}

	m.AddCoordCallback(func(io []float64) {
		for i := range io {
			io[i] *= factor
		}
	}, prioScale)
	return true
}

// autoscaleSamples is the number of directions probed. The scan is
// coarse, so the result can undershoot the true optimum by a few percent;
// that's the price of a constant-time search.
const autoscaleSamples = 16

// GetAutoScale finds the smallest scale >= 1 that keeps every output
// pixel's source lookup inside the source image. Call it after all other
// coordinate kernels are installed and before the scale kernel is.
func (m *Modifier)GetAutoScale(reverse bool) float64 {
	if len(m.coordCBs) == 0 {
		return 1.0
	}

	scale := 0.0
	for k:=0; k<autoscaleSamples; k++ {
		angle := 2.0 * math.Pi * float64(k) / autoscaleSamples
		edge := m.edgeDistance(angle)
		r := m.transformedDistance(angle, edge)
		if r > 1e-9 && !math.IsInf(r, 0) {
			if s := edge / r; s > scale {
				scale = s
			}
		}
	}

	if scale == 0 {
		// Degenerate kernels everywhere; don't rescale at all
		return 1.0
	}
	if scale < 1 {
		scale = 1.0
	}
	if reverse {
		return 1.0 / scale
	}
	return scale
}

// edgeDistance returns the distance, in normalized coordinates, from the
// origin to the image frame along the given direction.
func (m *Modifier)edgeDistance(angle float64) float64 {
	c, s := math.Cos(angle), math.Sin(angle)
	dist := math.MaxFloat64
	if c != 0 {
		dist = m.MaxX / math.Abs(c)
	}
	if s != 0 {
		if d := m.MaxY / math.Abs(s); d < dist {
			dist = d
		}
	}
	return dist
}

// transformedDistance finds, by bisection, the radius along the given
// direction whose transformed point lands exactly on the source-image
// frame. seed is the radius of the output-image frame in that direction.
func (m *Modifier)transformedDistance(angle, seed float64) float64 {
	c, s := math.Cos(angle), math.Sin(angle)

	residual := func(r float64) float64 {
		coord := [2]float64{r * c, r * s}
		m.applyCoordChain(coord[:])
		return m.autoscaleResidualDistance(coord[0], coord[1])
	}

	if residual(0) >= 0 {
		// Even the center lands outside; no scale can fix this direction
		return math.Inf(1)
	}

	// Expand until we're outside the frame
	lo, hi := 0.0, seed
	found := false
	for i:=0; i<32; i++ {
		if residual(hi) > 0 {
			found = true
			break
		}
		lo = hi
		hi *= 2.0
	}
	if !found {
		return math.Inf(1)
	}

	for i:=0; i<40; i++ {
		mid := (lo + hi) / 2.0
		if residual(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return (lo + hi) / 2.0
}

// autoscaleResidualDistance measures how far a transformed point sits
// from the source frame: negative inside, zero on the frame, positive
// outside. Out-of-bounds sentinels land far outside, as they should.
func (m *Modifier)autoscaleResidualDistance(x, y float64) float64 {
	rx := math.Abs(x) - m.MaxX
	ry := math.Abs(y) - m.MaxY
	if rx > ry {
		return rx
	}
	return ry
}

// applyCoordChain runs every coordinate kernel over a strip of normalized
// coordinate pairs.
func (m *Modifier)applyCoordChain(io []float64) {
	for _, cb := range m.coordCBs {
		cb.fn(io)
	}
}
