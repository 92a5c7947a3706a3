package quadtree

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestSimplifyVWPreservesEndpoints(t *testing.T) {
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0.01}, {X: 2, Y: -0.01}, {X: 3, Y: 0.02}, {X: 10, Y: 10}}
	kept := simplifyVW(pts, 1000)
	if len(kept) < 2 {
		t.Fatalf("expected at least endpoints, got %v", kept)
	}
	if kept[0] != 0 {
		t.Errorf("expected first index 0, got %d", kept[0])
	}
	if kept[len(kept)-1] != len(pts)-1 {
		t.Errorf("expected last index %d, got %d", len(pts)-1, kept[len(kept)-1])
	}
}

func TestSimplifyVWSmallToleranceCollapsesColinearPoints(t *testing.T) {
	// A straight line with points exactly colinear: all interior points
	// have zero area, so any positive tolerance removes them all.
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}
	kept := simplifyVW(pts, 0.001)
	if len(kept) != 2 {
		t.Errorf("expected colinear points to collapse to 2, got %v", kept)
	}
}

func TestSimplifyVWLiteralZeroToleranceIsIdentity(t *testing.T) {
	// Even colinear (zero-area) interior points must survive at
	// tolerance exactly 0: a point is only removed when its area is
	// strictly less than tolerance, and no area is ever negative.
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 5}, {X: 4, Y: -5}}
	kept := simplifyVW(pts, 0.0)
	if len(kept) != len(pts) {
		t.Fatalf("expected all %d indices kept at tolerance 0, got %v", len(pts), kept)
	}
	for i, idx := range kept {
		if idx != i {
			t.Fatalf("expected identity index order at tolerance 0, got %v", kept)
		}
	}
}

func TestSimplifyVWTwoPointsIdentity(t *testing.T) {
	pts := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}}
	kept := simplifyVW(pts, 1e9)
	if len(kept) != 2 || kept[0] != 0 || kept[1] != 1 {
		t.Errorf("expected identity for 2-point input, got %v", kept)
	}
}

func TestSimplifyVWSinglePointIdentity(t *testing.T) {
	pts := []r2.Vec{{X: 0, Y: 0}}
	kept := simplifyVW(pts, 1e9)
	if len(kept) != 1 || kept[0] != 0 {
		t.Errorf("expected identity for 1-point input, got %v", kept)
	}
}

func TestSimplifyVWIndicesAscending(t *testing.T) {
	pts := make([]r2.Vec, 0, 50)
	for i := 0; i < 50; i++ {
		pts = append(pts, r2.Vec{X: float64(i), Y: float64(i % 3)})
	}
	kept := simplifyVW(pts, 0.1)
	for i := 1; i < len(kept); i++ {
		if kept[i] <= kept[i-1] {
			t.Fatalf("expected strictly ascending indices, got %v", kept)
		}
	}
}

func TestSimplifyVWIdempotentOnSimplifiedOutput(t *testing.T) {
	pts := make([]r2.Vec, 0, 30)
	for i := 0; i < 30; i++ {
		pts = append(pts, r2.Vec{X: float64(i), Y: float64((i * i) % 7)})
	}
	tolerance := 2.0
	first := simplifyVW(pts, tolerance)
	reduced := make([]r2.Vec, len(first))
	for i, idx := range first {
		reduced[i] = pts[idx]
	}
	second := simplifyVW(reduced, tolerance)
	for i := range second {
		if second[i] != i {
			t.Fatalf("expected re-simplification of already-simplified points to be identity, got %v", second)
		}
	}
}
