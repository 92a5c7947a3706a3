// Package quadtree implements the Earth-rooted LOD spatial index: chunked
// polyline storage, viewport-driven level selection, on-demand
// Visvalingam-Whyatt simplification with memoization, and
// continuity-preserving viewport clipping.
package quadtree

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/NeoTecDigital/tracklod/pkg/geo"
	"github.com/NeoTecDigital/tracklod/pkg/track"
)

const (
	// MaxDepth bounds quadtree recursion.
	MaxDepth = 20
	// MinPointsForRecursion is the minimum chunk point count required
	// before a node may recurse into children.
	MinPointsForRecursion = 8

	// bboxEqualityToleranceM is the tolerance, in meters, used when
	// comparing node bounding boxes during merge.
	bboxEqualityToleranceM = 1.0
	// biasEqualityTolerance is the tolerance used when comparing two
	// trees' bias factors during merge.
	biasEqualityTolerance = 1e-6
)

// MergeMismatchError is returned by Merge when two trees were built with
// incompatible configuration (reference viewport or bias).
type MergeMismatchError struct {
	Reason string
}

func (e *MergeMismatchError) Error() string {
	return fmt.Sprintf("quadtree: merge mismatch: %s", e.Reason)
}

// rawChunk is the portion of one track segment owned by one quadtree
// node: a contiguous run of Mercator points plus an optional mapping back
// to the original segment's point indices (present iff this chunk is a
// proper subset of the segment).
type rawChunk struct {
	route        *track.Route
	routeIndex   int
	trackIndex   int
	segmentIndex int

	points          []r2.Vec
	originalIndices []int // nil means "identity: chunk indices are original indices"
}

func (c *rawChunk) mapIndex(i int) int {
	if c.originalIndices == nil {
		return i
	}
	return c.originalIndices[i]
}

// Node is a single node of the LOD quadtree.
type Node struct {
	bounds   r2.Box
	level    int
	chunks   []rawChunk
	children *[4]Node // NW, NE, SW, SE, in that fixed order
}

const (
	quadNW = iota
	quadNE
	quadSW
	quadSE
)

func newRootNode() Node {
	return Node{
		bounds: r2.Box{
			Min: r2.Vec{X: geo.EarthMercatorMin, Y: geo.EarthMercatorMin},
			Max: r2.Vec{X: geo.EarthMercatorMax, Y: geo.EarthMercatorMax},
		},
		level: 0,
	}
}

func newChildNode(bounds r2.Box, level int) Node {
	return Node{bounds: bounds, level: level}
}

func (n *Node) hasChildren() bool { return n.children != nil }

func (n *Node) subdivide() {
	if n.children != nil {
		return
	}
	min, max := n.bounds.Min, n.bounds.Max
	midX := (min.X + max.X) / 2
	midY := (min.Y + max.Y) / 2
	childLevel := n.level + 1

	var children [4]Node
	children[quadNW] = newChildNode(r2.Box{Min: r2.Vec{X: min.X, Y: midY}, Max: r2.Vec{X: midX, Y: max.Y}}, childLevel)
	children[quadNE] = newChildNode(r2.Box{Min: r2.Vec{X: midX, Y: midY}, Max: r2.Vec{X: max.X, Y: max.Y}}, childLevel)
	children[quadSW] = newChildNode(r2.Box{Min: r2.Vec{X: min.X, Y: min.Y}, Max: r2.Vec{X: midX, Y: midY}}, childLevel)
	children[quadSE] = newChildNode(r2.Box{Min: r2.Vec{X: midX, Y: min.Y}, Max: r2.Vec{X: max.X, Y: midY}}, childLevel)
	n.children = &children
}
