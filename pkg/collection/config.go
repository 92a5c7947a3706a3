package collection

// Config configures a Collection's quadtree: the simplification bias,
// the nominal viewport width (in pixels) used to size target LOD
// levels, and the simplification memo's capacity.
type Config struct {
	// Bias scales Visvalingam-Whyatt tolerance; larger values give a
	// smaller tolerance and so keep more detail at a given zoom level.
	Bias float64
	// ReferenceViewportWidthPx is the nominal on-screen viewport width,
	// in pixels, that one quadtree node at a query's target depth is
	// taken to span; with Bias it fixes the tolerance for each depth.
	ReferenceViewportWidthPx float64
	// MemoCapacity bounds the number of memoized simplification results
	// kept per quadtree. Zero selects the package default.
	MemoCapacity int
	// MaxPointsPerNode is reserved for a future per-node point cap; it
	// is never read by pkg/quadtree today.
	MaxPointsPerNode int
}

// DefaultConfig returns sensible defaults: a bias of 1.0, a reference
// viewport of 1024px, and the package-default memo capacity.
func DefaultConfig() Config {
	return Config{
		Bias:                     1.0,
		ReferenceViewportWidthPx: 1024,
		MemoCapacity:             0,
	}
}
