package quadtree

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/NeoTecDigital/tracklod/pkg/geo"
	"github.com/NeoTecDigital/tracklod/pkg/track"
)

// Tree is an Earth-rooted quadtree LOD index over one or more routes'
// chunked polylines, plus the viewport-sizing parameters used to pick a
// target depth and simplification tolerance at query time.
type Tree struct {
	root Node

	// referenceViewportWidthPx is the on-screen viewport width, in
	// pixels, that the tree was configured for; Query takes one node at
	// the target depth to span this many pixels when deriving the
	// simplification tolerance.
	referenceViewportWidthPx float64
	bias                     float64

	memo   *Memo
	logger *zap.Logger
}

// New builds an empty Tree rooted over the whole Web Mercator square.
// bias scales the Visvalingam-Whyatt tolerance: larger bias gives a
// smaller tolerance and so keeps more detail at a given zoom level.
// referenceViewportWidthPx is the nominal viewport width in pixels that
// Query uses, with bias, to derive the tolerance at each target depth.
func New(bias, referenceViewportWidthPx float64, memoCapacity int, logger *zap.Logger) *Tree {
	if logger == nil {
		logger = zap.NewNop()
	}
	if referenceViewportWidthPx <= 0 {
		referenceViewportWidthPx = 1024
	}
	return &Tree{
		root:                     newRootNode(),
		referenceViewportWidthPx: referenceViewportWidthPx,
		bias:                     bias,
		memo:                     NewMemo(memoCapacity),
		logger:                   logger,
	}
}

// Bias returns the tree's configured simplification bias.
func (t *Tree) Bias() float64 { return t.bias }

// AddRoute inserts every track/segment of route into the tree, chunked
// against quadtree node boundaries starting from the root. routeIndex is
// an opaque identifier the caller associates with this route (e.g. its
// position in a RouteCollection's slice); it rides along on each chunk
// for diagnostic purposes only.
func (t *Tree) AddRoute(route *track.Route, routeIndex int) {
	for ti, tr := range route.Tracks() {
		for si, seg := range tr.Segments {
			if len(seg.Points) == 0 {
				continue
			}
			points := make([]r2.Vec, 0, len(seg.Points))
			var original []int
			for i, wp := range seg.Points {
				p := geo.ToMercator(wp.Lat, wp.Lon)
				if geo.IsValidMercator(p) {
					points = append(points, p)
					original = append(original, i)
				}
			}
			if len(points) == 0 {
				continue
			}
			chunk := rawChunk{
				route:        route,
				routeIndex:   routeIndex,
				trackIndex:   ti,
				segmentIndex: si,
				points:       points,
			}
			if len(points) < len(seg.Points) {
				// Invalid points were skipped: map chunk indices back to
				// the segment's original point indices.
				chunk.originalIndices = original
			}
			t.insert(&t.root, chunk)
		}
	}
}

// insert places chunk into node, subdividing node and recursing when the
// chunk is large enough and actually spans more than one child.
func (t *Tree) insert(node *Node, chunk rawChunk) {
	if node.level >= MaxDepth || len(chunk.points) < MinPointsForRecursion {
		node.chunks = append(node.chunks, chunk)
		return
	}

	if !node.hasChildren() {
		node.subdivide()
	}

	if !segmentSpansMultipleChildren(chunk.points, node.children) {
		// The chunk touches at most one child; it stays at this node.
		node.chunks = append(node.chunks, chunk)
		return
	}

	for i := range node.children {
		sub, ok := extractChunk(chunk, node.children[i].bounds)
		if !ok {
			continue
		}
		t.insert(&node.children[i], sub)
	}
}

// Merge folds other's tree structure into t's, requiring the two trees
// to have been built with matching bias and reference viewport (else a
// query against the merged tree would be using one tree's sizing
// parameters against the other's chunked geometry).
func (t *Tree) Merge(other *Tree) error {
	if math.Abs(t.bias-other.bias) > biasEqualityTolerance {
		return &MergeMismatchError{Reason: "bias mismatch"}
	}
	if math.Abs(t.referenceViewportWidthPx-other.referenceViewportWidthPx) > 1e-6 {
		return &MergeMismatchError{Reason: "reference viewport mismatch"}
	}
	return mergeNodes(&t.root, &other.root)
}

// mergeNodes recursively folds b into a. Two nodes are considered the
// same structural position if their levels match and their bounding
// boxes agree within bboxEqualityToleranceM meters; the invariant holds
// automatically for any two trees built from newRootNode with the same
// subdivision logic, since subdivision is purely a function of level and
// parent bounds.
func mergeNodes(a, b *Node) error {
	if a.level != b.level {
		return &MergeMismatchError{Reason: "node level mismatch"}
	}
	if !boxesEqual(a.bounds, b.bounds, bboxEqualityToleranceM) {
		return &MergeMismatchError{Reason: "node bounds mismatch"}
	}

	a.chunks = append(a.chunks, b.chunks...)

	switch {
	case a.hasChildren() && b.hasChildren():
		for i := range a.children {
			if err := mergeNodes(&a.children[i], &b.children[i]); err != nil {
				return err
			}
		}
	case !a.hasChildren() && b.hasChildren():
		a.children = b.children
	case a.hasChildren() && !b.hasChildren():
		// nothing to do: b contributed no children, a keeps its own.
	default:
		// neither has children, nothing further to merge.
	}
	return nil
}

// calculateTargetLevel picks the shallowest quadtree depth whose node
// width is at most twice the viewport's width in world meters: halving
// the root's width once per level until that condition holds, capped at
// MaxDepth.
func calculateTargetLevel(viewportWidthMeters float64) int {
	if viewportWidthMeters <= 0 {
		return MaxDepth
	}
	rootWidth := geo.EarthMercatorMax - geo.EarthMercatorMin
	level := 0
	width := rootWidth
	for width > 2*viewportWidthMeters && level < MaxDepth {
		width /= 2
		level++
	}
	return level
}

// calculatePixelTolerance derives the Visvalingam-Whyatt area tolerance
// for a query from the tree's bias and the viewport's pixels-per-meter
// density: a denser viewport (more pixels per meter, i.e. zoomed in)
// gets a smaller tolerance and so a less aggressive simplification.
func calculatePixelTolerance(bias, pixelsPerMeter float64) float64 {
	denom := bias * pixelsPerMeter
	if denom < 1e-15 {
		denom = 1e-15
	}
	return 1.0 / denom
}

// Query returns the simplified, viewport-clipped segments visible within
// viewport (in Web Mercator meters). The viewport's width picks the
// target depth; the tolerance at that depth comes from the tree's bias
// and its reference viewport width spread over one node of that depth.
// viewportWidthPx does not affect the result.
func (t *Tree) Query(viewport r2.Box, viewportWidthPx float64) []SimplifiedSegment {
	viewportWidthMeters := viewport.Max.X - viewport.Min.X
	targetLevel := calculateTargetLevel(viewportWidthMeters)

	nodeWidthMeters := geo.EarthSizeMeters / math.Exp2(float64(targetLevel))
	tolerance := calculatePixelTolerance(t.bias, t.referenceViewportWidthPx/nodeWidthMeters)

	var collected []rawChunk
	t.collectChunks(&t.root, viewport, &collected)

	bySegment := make(map[segKey][]rawChunk)
	var order []segKey
	for _, c := range collected {
		k := segKey{routeID: c.route.ID(), trackIndex: c.trackIndex, segmentIndex: c.segmentIndex}
		if _, ok := bySegment[k]; !ok {
			order = append(order, k)
		}
		bySegment[k] = append(bySegment[k], c)
	}

	results := make([]SimplifiedSegment, 0, len(order))
	for _, k := range order {
		chunks := bySegment[k]
		result := SimplifiedSegment{
			Route:        chunks[0].route,
			TrackIndex:   k.trackIndex,
			SegmentIndex: k.segmentIndex,
		}
		for _, c := range chunks {
			parts := t.simplifyAndClip(c, targetLevel, tolerance, viewport)
			result.Parts = append(result.Parts, parts...)
		}
		sort.SliceStable(result.Parts, func(i, j int) bool {
			return result.Parts[i].Indices[0] < result.Parts[j].Indices[0]
		})
		if len(result.Parts) > 0 {
			results = append(results, result)
		}
	}
	return results
}

type segKey struct {
	routeID      int64
	trackIndex   int
	segmentIndex int
}

// collectChunks walks node depth-first, pruning only on bounding-box
// disjointness from viewport: every node along the way contributes its
// own stored chunks (chunks live at whatever node insert() stopped
// recursing at, not just at one particular depth), and every existing
// child is always visited regardless of node.level. targetLevel feeds
// only the simplification tolerance and the memo key (Query), never
// this traversal.
func (t *Tree) collectChunks(node *Node, viewport r2.Box, out *[]rawChunk) {
	if !boxesIntersect(node.bounds, viewport) {
		return
	}

	for _, c := range node.chunks {
		if polylineIntersectsBox(c.points, viewport) {
			*out = append(*out, c)
		}
	}

	if node.hasChildren() {
		for i := range node.children {
			t.collectChunks(&node.children[i], viewport, out)
		}
	}
}

// simplifyAndClip simplifies c's points at tolerance (memoized by
// route/track/segment/level/chunk identity) and splits the result into
// viewport-visible runs.
func (t *Tree) simplifyAndClip(c rawChunk, level int, tolerance float64, viewport r2.Box) []SegmentPart {
	key := simplificationKey{
		routeID:      c.route.ID(),
		trackIndex:   c.trackIndex,
		segmentIndex: c.segmentIndex,
		level:        level,
		chunkID:      chunkIdentity(c),
	}

	kept, ok := t.memo.get(key)
	if !ok {
		kept = simplifyVW(c.points, tolerance)
		t.memo.put(key, kept)
	}

	simplifiedPoints := make([]r2.Vec, len(kept))
	simplifiedIndices := make([]int, len(kept))
	for i, localIdx := range kept {
		simplifiedPoints[i] = c.points[localIdx]
		simplifiedIndices[i] = c.mapIndex(localIdx)
	}

	runs := clipIndicesToViewportRuns(simplifiedPoints, simplifiedIndices, viewport)

	parts := make([]SegmentPart, 0, len(runs))
	for _, run := range runs {
		parts = append(parts, SegmentPart{
			Route:        c.route,
			TrackIndex:   c.trackIndex,
			SegmentIndex: c.segmentIndex,
			Indices:      run,
		})
	}
	return parts
}

// chunkIdentity derives a stable hash of a chunk's position within its
// segment (its first and last original index and its point count),
// distinguishing sibling chunks of the same segment scattered across
// different nodes, including siblings that share a boundary point. A
// chunk without an index mapping covers its whole segment and gets 0.
func chunkIdentity(c rawChunk) uint64 {
	if c.originalIndices == nil || len(c.points) == 0 {
		return 0
	}
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range [3]int{c.mapIndex(0), c.mapIndex(len(c.points) - 1), len(c.points)} {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}
