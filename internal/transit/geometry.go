package transit

import "math"

// CircleCircleIntersectionArea returns the area of the intersection of two
// circles with radii r1 and r2 whose centres are separated by b. In transit
// modelling r1 is the stellar radius (normalised to 1), r2 the planet-star
// radius ratio k, and b the projected centre separation.
//
// The closed form is the standard circular-lens formula. The degenerate
// regions are handled explicitly so the arccos arguments never leave [-1,1]:
// no overlap for b >= r1+r2, the full smaller-disk area when one circle
// contains the other.
func CircleCircleIntersectionArea(r1, r2, b float64) float64 {
	switch {
	case r1 < b-r2:
		return 0.0
	case r1 >= b+r2:
		return math.Pi * r2 * r2
	case b-r2 <= -r1:
		return math.Pi * r1 * r1
	default:
		return r2*r2*math.Acos((b*b+r2*r2-r1*r1)/(2*b*r2)) +
			r1*r1*math.Acos((b*b+r1*r1-r2*r2)/(2*b*r1)) -
			0.5*math.Sqrt((-b+r2+r1)*(b+r2-r1)*(b-r2+r1)*(b+r2+r1))
	}
}

// CircleCircleIntersectionAreaV evaluates CircleCircleIntersectionArea for
// every separation in bs and returns the areas as a new slice.
func CircleCircleIntersectionAreaV(r1, r2 float64, bs []float64) []float64 {
	areas := make([]float64, len(bs))
	for i, b := range bs {
		areas[i] = CircleCircleIntersectionArea(r1, r2, b)
	}
	return areas
}
