package quadtree

import (
	"github.com/NeoTecDigital/tracklod/pkg/track"
)

// SegmentPart is one contiguous run of a track segment returned by a
// query, together with the simplified point indices (into the route's
// original waypoint slice for that track/segment) chosen at the query's
// level of detail.
type SegmentPart struct {
	Route        *track.Route
	TrackIndex   int
	SegmentIndex int

	// Indices are the original-point indices selected by simplification,
	// in ascending order, always including this part's first and last
	// original index.
	Indices []int
}

// SimplifiedSegment groups every SegmentPart produced for one original
// track segment by a single query, in the order the parts occur along
// the segment (by first index). Each stored chunk of the segment that
// the viewport touches contributes its own parts, so a segment split
// across several quadtree nodes yields several parts, which may share
// boundary points, even if it never leaves the viewport. Within one
// chunk, each exit from and re-entry into the viewport starts a new part.
type SimplifiedSegment struct {
	Route        *track.Route
	TrackIndex   int
	SegmentIndex int
	Parts        []SegmentPart
}

// PrevPoint returns the waypoint immediately preceding this part's first
// index within the original segment, if any.
func (p *SegmentPart) PrevPoint() (track.Waypoint, bool) {
	if len(p.Indices) == 0 {
		return track.Waypoint{}, false
	}
	first := p.Indices[0]
	if first <= 0 {
		return track.Waypoint{}, false
	}
	return p.Route.Waypoint(p.TrackIndex, p.SegmentIndex, first-1)
}

// NextPoint returns the waypoint immediately following this part's last
// index within the original segment, if any.
func (p *SegmentPart) NextPoint() (track.Waypoint, bool) {
	if len(p.Indices) == 0 {
		return track.Waypoint{}, false
	}
	last := p.Indices[len(p.Indices)-1]
	segLen := p.Route.SegmentLen(p.TrackIndex, p.SegmentIndex)
	if last+1 >= segLen {
		return track.Waypoint{}, false
	}
	return p.Route.Waypoint(p.TrackIndex, p.SegmentIndex, last+1)
}

// SimplifiedPoints resolves this part's indices into waypoints.
func (p *SegmentPart) SimplifiedPoints() []track.Waypoint {
	out := make([]track.Waypoint, 0, len(p.Indices))
	for _, i := range p.Indices {
		wp, ok := p.Route.Waypoint(p.TrackIndex, p.SegmentIndex, i)
		if ok {
			out = append(out, wp)
		}
	}
	return out
}

// PointsWithContext returns SimplifiedPoints bracketed by PrevPoint and
// NextPoint when present, so a renderer can draw a continuous line up
// to the viewport edge instead of stopping abruptly at the clip
// boundary.
func (p *SegmentPart) PointsWithContext() []track.Waypoint {
	var out []track.Waypoint
	if prev, ok := p.PrevPoint(); ok {
		out = append(out, prev)
	}
	out = append(out, p.SimplifiedPoints()...)
	if next, ok := p.NextPoint(); ok {
		out = append(out, next)
	}
	return out
}

// FullPoints returns every original waypoint of the underlying segment,
// ignoring simplification and the part's own Indices, from the route
// this part belongs to. Useful when a caller wants to drop to full
// resolution for one visible part (e.g. the user has paused panning).
func (p *SegmentPart) FullPoints() []track.Waypoint {
	segLen := p.Route.SegmentLen(p.TrackIndex, p.SegmentIndex)
	out := make([]track.Waypoint, 0, segLen)
	for i := 0; i < segLen; i++ {
		wp, ok := p.Route.Waypoint(p.TrackIndex, p.SegmentIndex, i)
		if ok {
			out = append(out, wp)
		}
	}
	return out
}
