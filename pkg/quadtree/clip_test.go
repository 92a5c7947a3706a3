package quadtree

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestClipIndicesToViewportRunsFullyVisible(t *testing.T) {
	viewport := box(0, 0, 10, 10)
	pts := []r2.Vec{{X: 1, Y: 1}, {X: 5, Y: 5}, {X: 9, Y: 9}}
	idx := []int{0, 1, 2}
	runs := clipIndicesToViewportRuns(pts, idx, viewport)
	if len(runs) != 1 || len(runs[0]) != 3 {
		t.Fatalf("expected single full run, got %v", runs)
	}
}

func TestClipIndicesToViewportRunsSplitByExit(t *testing.T) {
	viewport := box(0, 0, 10, 10)
	// A real excursion: two points (1, 2) genuinely bridge the exit and
	// re-entry (their edges to the inside neighbors cross the
	// viewport), but the point in between (idx 2) sits far away on a
	// completely disjoint side and neither of its edges touch the
	// viewport at all, so it must NOT be kept, splitting the run.
	pts := []r2.Vec{
		{X: 1, Y: 1},   // inside
		{X: 15, Y: 8},  // outside, edge from inside neighbor crosses
		{X: 50, Y: 50}, // outside, disjoint from viewport on both edges
		{X: 15, Y: -8}, // outside, edge to inside neighbor crosses
		{X: 1, Y: 2},   // inside
	}
	idx := []int{0, 1, 2, 3, 4}
	runs := clipIndicesToViewportRuns(pts, idx, viewport)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs for a genuine exit/re-entry, got %v", runs)
	}
	if len(runs[0]) != 2 || runs[0][0] != 0 || runs[0][1] != 1 {
		t.Errorf("expected first run [0 1], got %v", runs[0])
	}
	if len(runs[1]) != 2 || runs[1][0] != 3 || runs[1][1] != 4 {
		t.Errorf("expected second run [3 4], got %v", runs[1])
	}
}

func TestClipIndicesToViewportRunsPassThroughBothOutside(t *testing.T) {
	viewport := box(0, 0, 10, 10)
	// Both points are outside the viewport, but the segment connecting
	// them crosses straight through it: per spec this is still a
	// 2-point run, not zero runs.
	pts := []r2.Vec{
		{X: -5, Y: 5},
		{X: 15, Y: 5},
	}
	idx := []int{7, 8}
	runs := clipIndicesToViewportRuns(pts, idx, viewport)
	if len(runs) != 1 || len(runs[0]) != 2 {
		t.Fatalf("expected a single 2-point pass-through run, got %v", runs)
	}
	if runs[0][0] != 7 || runs[0][1] != 8 {
		t.Errorf("expected run [7 8], got %v", runs[0])
	}
}

func TestClipIndicesToViewportRunsNoSpuriousBridge(t *testing.T) {
	viewport := box(0, 0, 10, 10)
	// Two points both outside viewport, on opposite sides, whose
	// connecting edge does NOT cross the viewport (both far below it).
	pts := []r2.Vec{
		{X: -100, Y: -100},
		{X: -90, Y: -100},
	}
	idx := []int{0, 1}
	runs := clipIndicesToViewportRuns(pts, idx, viewport)
	if len(runs) != 0 {
		t.Errorf("expected no runs when nothing is visible or crosses viewport, got %v", runs)
	}
}

func TestClipIndicesToViewportRunsAnchorsEdgeCrossing(t *testing.T) {
	viewport := box(0, 0, 10, 10)
	pts := []r2.Vec{
		{X: -5, Y: 5}, // outside, but edge to next crosses viewport
		{X: 5, Y: 5},  // inside
	}
	idx := []int{0, 1}
	runs := clipIndicesToViewportRuns(pts, idx, viewport)
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %v", runs)
	}
	if len(runs[0]) != 2 || runs[0][0] != 0 {
		t.Errorf("expected run to include anchor point 0, got %v", runs[0])
	}
}
