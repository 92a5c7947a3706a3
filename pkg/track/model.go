package track

import "time"

// Waypoint is a single recorded point delivered by the track parser
// collaborator: WGS84 longitude/latitude in degrees, plus optional
// elevation and timestamp.
type Waypoint struct {
	Lon       float64
	Lat       float64
	Elevation *float64
	Time      *time.Time
}

// Segment is an ordered list of waypoints with no implied gaps.
type Segment struct {
	Points []Waypoint
}

// Track is an ordered list of segments.
type Track struct {
	Segments []Segment
}

// Model is the read-only track model handed to Route by the upstream
// parser collaborator (out of scope for this module).
type Model struct {
	Tracks []Track
}
