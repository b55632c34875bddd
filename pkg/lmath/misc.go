package lmath

import "math"

// Some functions that only operate on basic types, that are useful

func Square(x float64) float64 { return x * x }

// HalfLongSide is the half length, in millimeters, of the long side of a
// sensor with the given crop factor and aspect ratio (long/short, >= 1).
// The reference frame is 36x24mm with a 43.27mm diagonal.
func HalfLongSide(crop, aspect float64) float64 {
	diagonal := math.Sqrt(36.0*36.0+24.0*24.0) / crop
	return diagonal / 2.0 * aspect / math.Sqrt(1.0+aspect*aspect)
}
