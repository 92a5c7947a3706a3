package quadtree

import "gonum.org/v1/gonum/spatial/r2"

// pointInBox reports whether p lies within box, inclusive of the
// boundary.
func pointInBox(p r2.Vec, box r2.Box) bool {
	return p.X >= box.Min.X && p.X <= box.Max.X && p.Y >= box.Min.Y && p.Y <= box.Max.Y
}

// lineIntersectsRect reports whether the segment (p1, p2) crosses box,
// using a Cohen-Sutherland-style outcode fast path with a fallback to
// segment-vs-edge intersection tests.
func lineIntersectsRect(p1, p2 r2.Vec, box r2.Box) bool {
	outcode := func(p r2.Vec) uint8 {
		var code uint8
		if p.X < box.Min.X {
			code |= 1
		}
		if p.X > box.Max.X {
			code |= 2
		}
		if p.Y < box.Min.Y {
			code |= 4
		}
		if p.Y > box.Max.Y {
			code |= 8
		}
		return code
	}

	c1 := outcode(p1)
	c2 := outcode(p2)

	if c1 == 0 && c2 == 0 {
		return true
	}
	if c1&c2 != 0 {
		return false
	}

	min, max := box.Min, box.Max
	edges := [4][2]r2.Vec{
		{{X: min.X, Y: min.Y}, {X: min.X, Y: max.Y}}, // left
		{{X: max.X, Y: min.Y}, {X: max.X, Y: max.Y}}, // right
		{{X: min.X, Y: min.Y}, {X: max.X, Y: min.Y}}, // bottom
		{{X: min.X, Y: max.Y}, {X: max.X, Y: max.Y}}, // top
	}
	for _, e := range edges {
		if segmentsIntersect(p1, p2, e[0], e[1]) {
			return true
		}
	}
	return false
}

func direction(p1, p2, p3 r2.Vec) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

func onSegment(p1, p2, p r2.Vec) bool {
	minX, maxX := p1.X, p2.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := p1.Y, p2.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

func segmentsIntersect(p1, p2, p3, p4 r2.Vec) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

// polylineIntersectsBox reports whether any point of points lies in box,
// or any consecutive edge crosses it.
func polylineIntersectsBox(points []r2.Vec, box r2.Box) bool {
	if len(points) == 0 {
		return false
	}
	for _, p := range points {
		if pointInBox(p, box) {
			return true
		}
	}
	for i := 0; i+1 < len(points); i++ {
		if lineIntersectsRect(points[i], points[i+1], box) {
			return true
		}
	}
	return false
}

// boxesIntersect reports whether two axis-aligned boxes are not disjoint.
func boxesIntersect(a, b r2.Box) bool {
	return !(a.Max.X < b.Min.X || a.Min.X > b.Max.X || a.Max.Y < b.Min.Y || a.Min.Y > b.Max.Y)
}

// boxesEqual reports approximate equality within tolerance meters on
// each bound.
func boxesEqual(a, b r2.Box, tolerance float64) bool {
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(a.Min.X-b.Min.X) < tolerance &&
		abs(a.Min.Y-b.Min.Y) < tolerance &&
		abs(a.Max.X-b.Max.X) < tolerance &&
		abs(a.Max.Y-b.Max.Y) < tolerance
}
