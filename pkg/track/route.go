// Package track owns the immutable Route container: a parsed track model
// plus precomputed aggregates (Mercator bounding box, point count, total
// haversine distance) computed once at construction time.
package track

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/NeoTecDigital/tracklod/pkg/geo"
)

// ErrEmptyRoute is returned when the supplied track model has no points
// at all.
var ErrEmptyRoute = errors.New("track: empty route")

// InvalidGeometryError is returned when a track model has points but none
// of them fall within the valid Web Mercator domain.
type InvalidGeometryError struct {
	Msg string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("track: invalid geometry: %s", e.Msg)
}

var routeIDSeq int64

// Route is an immutable, shared-ownership container for one parsed track
// plus its precomputed aggregates. Once constructed, a Route is never
// mutated; many quadtree chunks and simplified segments may hold a
// pointer to the same Route concurrently without locking.
type Route struct {
	id     int64
	model  Model
	bbox   r2.Box
	points int
	dist   float64
}

// New builds a Route from a parsed track model. It fails with
// ErrEmptyRoute if the model has no points whatsoever, or with
// *InvalidGeometryError if every point present falls outside the valid
// Web Mercator domain. Out-of-domain points are otherwise skipped with a
// logged warning and break the running haversine distance chain so no
// phantom edge is ever summed across a skipped point.
func New(model Model, logger *zap.Logger) (*Route, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	totalPoints := 0
	totalDistance := 0.0
	foundValid := false
	sawAnyPoint := false

	for _, tr := range model.Tracks {
		for _, seg := range tr.Segments {
			totalPoints += len(seg.Points)
			if len(seg.Points) > 0 {
				sawAnyPoint = true
			}

			var prev *Waypoint
			for i := range seg.Points {
				wp := &seg.Points[i]
				p := geo.ToMercator(wp.Lat, wp.Lon)

				if !geo.IsValidMercator(p) {
					logger.Warn("skipping point outside Web Mercator bounds",
						zap.Float64("lat", wp.Lat), zap.Float64("lon", wp.Lon))
					prev = nil // break the distance chain across the skip
					continue
				}

				if p.X < minX {
					minX = p.X
				}
				if p.Y < minY {
					minY = p.Y
				}
				if p.X > maxX {
					maxX = p.X
				}
				if p.Y > maxY {
					maxY = p.Y
				}
				foundValid = true

				if prev != nil {
					totalDistance += geo.HaversineMeters(prev.Lat, prev.Lon, wp.Lat, wp.Lon)
				}
				prev = wp
			}
		}
	}

	if !sawAnyPoint {
		return nil, ErrEmptyRoute
	}
	if !foundValid {
		return nil, &InvalidGeometryError{Msg: "no valid points in route"}
	}

	return &Route{
		id:     atomic.AddInt64(&routeIDSeq, 1),
		model:  model,
		bbox:   r2.Box{Min: r2.Vec{X: minX, Y: minY}, Max: r2.Vec{X: maxX, Y: maxY}},
		points: totalPoints,
		dist:   totalDistance,
	}, nil
}

// ID is a stable per-Route integer identity, minted at construction, used
// by the quadtree's simplification memo in place of a pointer-address key
// (Go pointers make perfectly fine map keys directly, but a minted ID
// keeps the memo key comparable and loggable independent of GC behavior).
func (r *Route) ID() int64 { return r.id }

// BoundingBox returns the Mercator bounding box covering all in-range
// points of the route.
func (r *Route) BoundingBox() r2.Box { return r.bbox }

// TotalPoints returns the aggregate point count across all tracks and
// segments, O(1).
func (r *Route) TotalPoints() int { return r.points }

// TotalDistance returns the aggregate haversine distance in meters, O(1).
func (r *Route) TotalDistance() float64 { return r.dist }

// Tracks exposes the underlying read-only track model.
func (r *Route) Tracks() []Track { return r.model.Tracks }

// Waypoint looks up a single waypoint by (track, segment, point) index,
// O(1). The second return value is false if any index is out of range.
func (r *Route) Waypoint(trackIndex, segmentIndex, pointIndex int) (Waypoint, bool) {
	if trackIndex < 0 || trackIndex >= len(r.model.Tracks) {
		return Waypoint{}, false
	}
	segs := r.model.Tracks[trackIndex].Segments
	if segmentIndex < 0 || segmentIndex >= len(segs) {
		return Waypoint{}, false
	}
	pts := segs[segmentIndex].Points
	if pointIndex < 0 || pointIndex >= len(pts) {
		return Waypoint{}, false
	}
	return pts[pointIndex], true
}

// SegmentLen returns the number of points in the given (track, segment),
// or 0 if out of range.
func (r *Route) SegmentLen(trackIndex, segmentIndex int) int {
	if trackIndex < 0 || trackIndex >= len(r.model.Tracks) {
		return 0
	}
	segs := r.model.Tracks[trackIndex].Segments
	if segmentIndex < 0 || segmentIndex >= len(segs) {
		return 0
	}
	return len(segs[segmentIndex].Points)
}
