package quadtree

import (
	"testing"

	"github.com/NeoTecDigital/tracklod/pkg/track"
)

func lineModel(n int, startLat, startLon, stepLat, stepLon float64) track.Model {
	pts := make([]track.Waypoint, n)
	for i := 0; i < n; i++ {
		pts[i] = track.Waypoint{
			Lat: startLat + float64(i)*stepLat,
			Lon: startLon + float64(i)*stepLon,
		}
	}
	return track.Model{Tracks: []track.Track{{Segments: []track.Segment{{Points: pts}}}}}
}

func TestCalculateTargetLevelShrinksWithViewport(t *testing.T) {
	wide := calculateTargetLevel(10_000_000)
	narrow := calculateTargetLevel(1_000)
	if narrow <= wide {
		t.Errorf("expected a narrower viewport to need a deeper level: wide=%d narrow=%d", wide, narrow)
	}
	if calculateTargetLevel(0) != MaxDepth {
		t.Error("expected degenerate viewport width to clamp to MaxDepth")
	}
}

func TestCalculatePixelToleranceNeverDividesByZero(t *testing.T) {
	tol := calculatePixelTolerance(0, 0)
	if tol <= 0 {
		t.Errorf("expected a finite positive tolerance, got %v", tol)
	}
}

func TestAddRouteAndQueryRoundTrip(t *testing.T) {
	model := lineModel(100, 51.5, -0.2, 0.0001, 0.0001)
	route, err := track.New(model, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr := New(1.0, 1024, 0, nil)
	tr.AddRoute(route, 0)

	viewport := route.BoundingBox()
	// Pad slightly so floating point boundary points aren't excluded.
	viewport.Min.X -= 1
	viewport.Min.Y -= 1
	viewport.Max.X += 1
	viewport.Max.Y += 1

	results := tr.Query(viewport, 1024)
	if len(results) != 1 {
		t.Fatalf("expected 1 simplified segment, got %d", len(results))
	}
	if len(results[0].Parts) == 0 {
		t.Fatal("expected at least one visible part")
	}
	first := results[0].Parts[0].Indices
	if first[0] != 0 {
		t.Errorf("expected first part to start at original index 0, got %d", first[0])
	}
}

func TestQueryEmptyTreeReturnsNoResults(t *testing.T) {
	tr := New(1.0, 1024, 0, nil)
	results := tr.Query(box(-1, -1, 1, 1), 512)
	if len(results) != 0 {
		t.Errorf("expected no results from an empty tree, got %d", len(results))
	}
}

func TestMergeRejectsBiasMismatch(t *testing.T) {
	a := New(1.0, 1024, 0, nil)
	b := New(2.0, 1024, 0, nil)
	if err := a.Merge(b); err == nil {
		t.Error("expected merge to fail on bias mismatch")
	}
}

func TestMergeCombinesChunksFromBothTrees(t *testing.T) {
	modelA := lineModel(50, 51.5, -0.2, 0.0001, 0.0001)
	modelB := lineModel(50, 40.0, 10.0, 0.0001, 0.0001)
	routeA, err := track.New(modelA, nil)
	if err != nil {
		t.Fatal(err)
	}
	routeB, err := track.New(modelB, nil)
	if err != nil {
		t.Fatal(err)
	}

	ta := New(1.0, 1024, 0, nil)
	ta.AddRoute(routeA, 0)
	tb := New(1.0, 1024, 0, nil)
	tb.AddRoute(routeB, 1)

	if err := ta.Merge(tb); err != nil {
		t.Fatalf("unexpected merge error: %v", err)
	}

	full := box(-180*111_320, -180*111_320, 180*111_320, 180*111_320)
	results := ta.Query(full, 2048)
	if len(results) < 2 {
		t.Errorf("expected merged tree to contain segments from both routes, got %d", len(results))
	}
}

func TestAddRoutesParallelMatchesSequentialMerge(t *testing.T) {
	model := lineModel(80, 48.8, 2.3, 0.0002, 0.0002)
	routeSeq, err := track.New(model, nil)
	if err != nil {
		t.Fatal(err)
	}
	routePar, err := track.New(model, nil)
	if err != nil {
		t.Fatal(err)
	}

	seqTree := New(1.0, 1024, 0, nil)
	seqTree.AddRoute(routeSeq, 0)

	parTree := New(1.0, 1024, 0, nil)
	parTree.AddRoute(routePar, 0)

	viewport := routeSeq.BoundingBox()
	viewport.Min.X -= 1
	viewport.Min.Y -= 1
	viewport.Max.X += 1
	viewport.Max.Y += 1

	seqResults := seqTree.Query(viewport, 1024)
	parResults := parTree.Query(viewport, 1024)
	if len(seqResults) != len(parResults) {
		t.Errorf("expected matching segment counts, got seq=%d par=%d", len(seqResults), len(parResults))
	}
}
