package lmath

// The interpolation helpers used when resampling calibration data at
// arbitrary focal lengths.

// Unknown marks an absent outer spline slot. When an outer neighbour is
// unknown, the Hermite tangent at that end collapses to the one-sided
// difference of the two inner values.
const Unknown = 3.402823466e+38 // FLT_MAX; calibration terms never get here

// HermiteInterpolate evaluates a cubic Hermite polynomial through the four
// equally-weighted samples y1..y4 at parameter t in [0,1], where t spans the
// interval between y2 and y3. y1 and/or y4 may be Unknown.
func HermiteInterpolate(y1, y2, y3, y4, t float64) float64 {
	var tg2, tg3 float64
	t2 := t * t
	t3 := t2 * t

	if y1 == Unknown {
		tg2 = y3 - y2
	} else {
		tg2 = (y3 - y1) * 0.5
	}

	if y4 == Unknown {
		tg3 = y3 - y2
	} else {
		tg3 = (y4 - y2) * 0.5
	}

	// Hermite polynomial
	return (2*t3-3*t2+1)*y2 +
		(t3-2*t2+t)*tg2 +
		(-2*t3+3*t2)*y3 +
		(t3-t2)*tg3
}

// SplineSlots keeps the four neighbours of a query point on a 1-D axis:
// slots 0,1 hold the two nearest samples below the query (slot 1 nearest),
// slots 2,3 the two nearest above (slot 2 nearest). Empty slots have index -1.
type SplineSlots struct {
	Dist [4]float64
	Idx  [4]int
}

func NewSplineSlots() SplineSlots {
	return SplineSlots{
		Dist: [4]float64{-Unknown, -Unknown, Unknown, Unknown},
		Idx:  [4]int{-1, -1, -1, -1},
	}
}

// Insert offers a sample at signed distance dist (sample axis value minus
// query value) for one of the four slots.
func (s *SplineSlots)Insert(dist float64, idx int) {
	if dist < 0 {
		if dist > s.Dist[1] {
			s.Dist[0], s.Dist[1] = s.Dist[1], dist
			s.Idx[0], s.Idx[1] = s.Idx[1], idx
		} else if dist > s.Dist[0] {
			s.Dist[0] = dist
			s.Idx[0] = idx
		}
	} else {
		if dist < s.Dist[2] {
			s.Dist[3], s.Dist[2] = s.Dist[2], dist
			s.Idx[3], s.Idx[2] = s.Idx[2], idx
		} else if dist < s.Dist[3] {
			s.Dist[3] = dist
			s.Idx[3] = idx
		}
	}
}

// Inner reports the two samples bracketing the query, or -1 where absent.
func (s SplineSlots)Inner() (below, above int) { return s.Idx[1], s.Idx[2] }

// Outer reports the two outer neighbours, or -1 where absent.
func (s SplineSlots)Outer() (below, above int) { return s.Idx[0], s.Idx[3] }
