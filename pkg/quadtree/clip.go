package quadtree

import "gonum.org/v1/gonum/spatial/r2"

// clipIndicesToViewportRuns splits a simplified index list into the
// contiguous runs visible within viewport. Each index is kept
// independently of any other index's state: it is kept if it is itself
// inside viewport, or if its edge to the previous point crosses
// viewport, or if its edge to the next point crosses viewport. This
// means a point that never enters the viewport but sits on an edge that
// passes straight through it (both neighbors outside, segment crossing)
// is still kept, and two disjoint excursions outside the viewport
// remain two separate runs rather than getting bridged by a straight
// line through unrelated points in between.
//
// Kept indices are grouped into runs in order. A kept point outside the
// viewport that follows another kept point is an exit anchor: it closes
// the current run, and if the next point is also kept it opens the next
// run as its entry anchor. So a line that leaves the viewport and comes
// back through a single outside point yields two runs sharing that point.
//
// points and indices must be the same length and in the same order;
// indices[i] is the original-point index corresponding to points[i].
// The returned [][]int hold copies of values from indices, one per
// visible run, in ascending order.
func clipIndicesToViewportRuns(points []r2.Vec, indices []int, viewport r2.Box) [][]int {
	n := len(points)
	if n == 0 || n != len(indices) {
		return nil
	}

	keep := make([]bool, n)
	for i, p := range points {
		switch {
		case pointInBox(p, viewport):
			keep[i] = true
		case i > 0 && lineIntersectsRect(points[i-1], points[i], viewport):
			keep[i] = true
		case i+1 < n && lineIntersectsRect(points[i], points[i+1], viewport):
			keep[i] = true
		}
	}

	var runs [][]int
	var current []int
	for i := 0; i < n; i++ {
		if keep[i] {
			current = append(current, indices[i])
			if len(current) >= 2 && !pointInBox(points[i], viewport) {
				runs = append(runs, current)
				current = nil
				if i+1 < n && keep[i+1] {
					current = []int{indices[i]}
				}
			}
			continue
		}
		if len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}

	return runs
}
