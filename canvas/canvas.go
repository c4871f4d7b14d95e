// Package canvas holds the fixed court geometry. The court is centred on
// the origin, so x runs from -HalfWidth to HalfWidth and y from
// -HalfHeight to HalfHeight.
package canvas

const (
	Width  float32 = 10.0
	Height float32 = 5.0

	HalfWidth  = Width / 2
	HalfHeight = Height / 2
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
