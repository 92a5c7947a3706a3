package quadtree

import (
	"container/heap"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// simplifyVW runs Visvalingam-Whyatt line simplification over points and
// returns the indices (into points, ascending) of the points to keep at
// the given area tolerance. Endpoints are always preserved. Inputs of
// two points or fewer are returned unchanged, matching the reference
// implementation's identity contract for degenerate polylines.
//
// No third-party library in the available stack implements polyline
// simplification in Go, so this is a direct container/heap-based port
// of the effective-area algorithm the reference implementation gets
// from the geo crate's SimplifyVwIdx.
func simplifyVW(points []r2.Vec, tolerance float64) []int {
	n := len(points)
	if n <= 2 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	nodes := make([]*vwNode, n)
	for i := range points {
		nodes[i] = &vwNode{index: i, prev: i - 1, next: i + 1}
	}
	nodes[0].alive = true
	nodes[n-1].alive = true
	for i := 1; i < n-1; i++ {
		nodes[i].alive = true
		nodes[i].area = triangleArea(points[i-1], points[i], points[i+1])
	}

	pq := make(vwQueue, 0, n-2)
	for i := 1; i < n-1; i++ {
		heap.Push(&pq, nodes[i])
	}

	minArea := 0.0
	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(*vwNode)
		if !cur.alive || cur.stale {
			continue
		}
		if cur.area < minArea {
			cur.area = minArea // effective area never decreases
		} else {
			minArea = cur.area
		}
		if cur.area >= tolerance {
			// Leave it un-removed; everything left in the queue has
			// area >= tolerance from here on since the heap is a min-heap.
			// At tolerance 0 this never removes anything, matching the
			// "simplify at tolerance 0 keeps every point" contract.
			break
		}

		cur.alive = false
		prev := nodes[cur.prev]
		next := nodes[cur.next]
		prev.next = cur.next
		next.prev = cur.prev

		if prev.index != 0 {
			prev.stale = true
			updated := &vwNode{
				index: prev.index, prev: prev.prev, next: prev.next,
				alive: true, area: triangleArea(points[prev.prev], points[prev.index], points[next.index]),
			}
			nodes[prev.index] = updated
			heap.Push(&pq, updated)
		}
		if next.index != n-1 {
			next.stale = true
			updated := &vwNode{
				index: next.index, prev: next.prev, next: next.next,
				alive: true, area: triangleArea(points[prev.index], points[next.index], points[nodes[next.next].index]),
			}
			nodes[next.index] = updated
			heap.Push(&pq, updated)
		}
	}

	var kept []int
	for i := 0; i < n; i++ {
		if nodes[i].alive {
			kept = append(kept, i)
		}
	}
	return kept
}

func triangleArea(a, b, c r2.Vec) float64 {
	return math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2.0
}

// vwNode is one candidate-for-removal point in the simplification's
// doubly linked list, tracked by index into the original point slice.
// stale marks a node replaced by a fresher copy still sitting in the
// heap (lazy deletion, avoiding a heap.Fix on every neighbor update).
type vwNode struct {
	index      int
	prev, next int
	area       float64
	alive      bool
	stale      bool
}

type vwQueue []*vwNode

func (q vwQueue) Len() int            { return len(q) }
func (q vwQueue) Less(i, j int) bool  { return q[i].area < q[j].area }
func (q vwQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *vwQueue) Push(x interface{}) { *q = append(*q, x.(*vwNode)) }
func (q *vwQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
