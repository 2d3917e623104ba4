package edit

import "math"

// DefaultTolerance is the hit radius in screen units
const DefaultTolerance = 40.0

// Projector converts between screen and map coordinates. The two
// directions must be approximate inverses for hit testing to work.
type Projector interface {
	ToMap(x, y float64) Point
	ToScreen(p Point) (x, y float64)
}

// DeriveMidpoints returns the insertion handles for a vertex list: one
// between each consecutive pair, plus one closing the ring for closed modes
// once there are at least three vertices.
func DeriveMidpoints(vertices []Point, mode Mode) []Point {
	if len(vertices) < 2 {
		return nil
	}

	mids := make([]Point, 0, len(vertices))
	for i := 1; i < len(vertices); i++ {
		mids = append(mids, vertices[i-1].Midpoint(vertices[i]))
	}

	if mode.Closed() && len(vertices) > 2 {
		mids = append(mids, vertices[0].Midpoint(vertices[len(vertices)-1]))
	}

	return mids
}

// HitTest finds the point nearest to screen position (x, y).
// Returns the index of the nearest point if its squared distance is strictly
// less than tolerance squared, otherwise -1. Equidistant points resolve to
// the lowest index.
func HitTest(x, y float64, points []Point, proj Projector, tolerance float64) int {
	if len(points) == 0 || proj == nil {
		return -1
	}

	index := -1
	best := math.MaxFloat64
	for i, p := range points {
		sx, sy := proj.ToScreen(p)
		dx := sx - x
		dy := sy - y
		distSq := dx*dx + dy*dy
		if distSq < best {
			index = i
			best = distSq
		}
	}

	if best < tolerance*tolerance {
		return index
	}
	return -1
}
