package quadtree

import "gonum.org/v1/gonum/spatial/r2"

// segmentSpansMultipleChildren reports whether the full set of points
// assigned to this node, subdivided into the four child boxes, touches
// more than one child — i.e. whether recursing would actually split the
// chunk rather than just copying it whole into a single child.
func segmentSpansMultipleChildren(points []r2.Vec, children *[4]Node) bool {
	touched := 0
	for i := range children {
		if polylineIntersectsBox(points, children[i].bounds) {
			touched++
			if touched > 1 {
				return true
			}
		}
	}
	return false
}

// segmentIntersectsBounds reports whether any point of the chunk lies
// within bounds, or any of its edges crosses into bounds.
func segmentIntersectsBounds(points []r2.Vec, bounds r2.Box) bool {
	return polylineIntersectsBox(points, bounds)
}

// extractChunk produces the sub-run of c that belongs to bounds: every
// point that is itself in bounds, plus both endpoints of every edge that
// crosses bounds (including an edge whose endpoints both lie outside).
// This keeps the extracted polyline connected across the node boundary
// instead of producing a polyline with gaps.
//
// The returned chunk's originalIndices always maps back to the source
// route's point indices, and is strictly increasing: this diverges
// deliberately from the reference implementation's occasional
// out-of-order insert-at-position when a trailing edge re-enters bounds
// after leaving it; here such a re-entry starts a point run rather than
// being spliced behind the last accepted index.
func extractChunk(c rawChunk, bounds r2.Box) (rawChunk, bool) {
	n := len(c.points)
	if n == 0 {
		return rawChunk{}, false
	}

	include := make([]bool, n)
	for i, p := range c.points {
		if pointInBox(p, bounds) {
			include[i] = true
		}
	}
	for i := 0; i+1 < n; i++ {
		if include[i] && include[i+1] {
			continue
		}
		if lineIntersectsRect(c.points[i], c.points[i+1], bounds) {
			include[i] = true
			include[i+1] = true
		}
	}

	var outPoints []r2.Vec
	var outIndices []int
	for i, keep := range include {
		if !keep {
			continue
		}
		outPoints = append(outPoints, c.points[i])
		outIndices = append(outIndices, c.mapIndex(i))
	}
	if len(outPoints) < 2 {
		return rawChunk{}, false
	}

	return rawChunk{
		route:           c.route,
		routeIndex:      c.routeIndex,
		trackIndex:      c.trackIndex,
		segmentIndex:    c.segmentIndex,
		points:          outPoints,
		originalIndices: outIndices,
	}, true
}
