// Package collection owns RouteCollection-equivalent aggregation: many
// Routes sharing one master quadtree.Tree, with O(1) cached summary
// statistics kept current as routes are added.
package collection

import (
	"fmt"
	"math"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/NeoTecDigital/tracklod/internal/ingest"
	"github.com/NeoTecDigital/tracklod/pkg/geo"
	"github.com/NeoTecDigital/tracklod/pkg/quadtree"
	"github.com/NeoTecDigital/tracklod/pkg/track"
)

// Info is a point-in-time snapshot of a Collection's cached aggregate
// statistics.
type Info struct {
	RouteCount    int
	TotalPoints   int
	TotalDistance float64

	HasBounds     bool
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Collection holds a set of Routes and the master quadtree.Tree indexing
// all of them. Routes are added one at a time (AddRoute) or in bulk via
// a fork-join parallel build (AddRoutesParallel); stats are updated
// incrementally on every successful add rather than recomputed from
// scratch.
type Collection struct {
	mu     sync.RWMutex
	cfg    Config
	logger *zap.Logger

	routes []*track.Route
	tree   *quadtree.Tree

	stats cachedStats
}

type cachedStats struct {
	totalPoints   int
	totalDistance float64
	bbox          r2.Box
	hasBounds     bool
}

// New builds an empty Collection from cfg.
func New(cfg Config, logger *zap.Logger) *Collection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection{
		cfg:    cfg,
		logger: logger,
		tree:   quadtree.New(cfg.Bias, cfg.ReferenceViewportWidthPx, cfg.MemoCapacity, logger),
	}
}

// AddRoute parses model into a Route, indexes it into the master tree,
// and updates cached stats. It returns the new Route's index within the
// collection.
func (c *Collection) AddRoute(model track.Model) (int, error) {
	route, err := track.New(model, c.logger)
	if err != nil {
		return 0, fmt.Errorf("collection: add route: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := len(c.routes)
	c.routes = append(c.routes, route)
	c.tree.AddRoute(route, idx)
	c.applyStatsLocked(route)
	return idx, nil
}

// Parser is the external collaborator responsible for turning a file on
// disk into a track.Model; concrete implementations (GPX, FIT, etc.) are
// out of scope for this module.
type Parser interface {
	Parse(path string) (track.Model, error)
}

// LoadFromFiles parses every path with parser and adds the resulting
// models to the collection via AddRoutesParallel. A file that fails to
// parse is skipped and its error folded into the returned error
// alongside any AddRoutesParallel failures.
func (c *Collection) LoadFromFiles(paths []string, parser Parser) ([]int, error) {
	models := make([]track.Model, 0, len(paths))
	var parseErr error
	for _, p := range paths {
		model, err := parser.Parse(p)
		if err != nil {
			parseErr = multierr.Append(parseErr, fmt.Errorf("collection: parse %s: %w", p, err))
			continue
		}
		models = append(models, model)
	}

	indices, addErr := c.AddRoutesParallel(models)
	return indices, multierr.Append(parseErr, addErr)
}

// AddRoutesParallel parses and indexes every model concurrently (one
// Route + one standalone quadtree.Tree built per model, in parallel),
// then merges the per-route trees into the master tree strictly
// sequentially. Models that fail to parse are skipped and their errors
// folded into the returned error; indices reported in the returned
// route-index slice correspond to successfully added routes only.
func (c *Collection) AddRoutesParallel(models []track.Model) ([]int, error) {
	params := ingest.TreeParams{
		Bias:                     c.cfg.Bias,
		ReferenceViewportWidthPx: c.cfg.ReferenceViewportWidthPx,
		MemoCapacity:             c.cfg.MemoCapacity,
	}
	pairs, buildErr := ingest.BuildParallel(models, params, c.logger)

	c.mu.Lock()
	defer c.mu.Unlock()

	indices := make([]int, 0, len(pairs))
	for _, p := range pairs {
		idx := len(c.routes)
		c.routes = append(c.routes, p.Route)
		if err := c.tree.Merge(p.Tree); err != nil {
			c.logger.Error("failed to merge route tree into collection", zap.Error(err), zap.Int("routeIndex", idx))
			continue
		}
		c.applyStatsLocked(p.Route)
		indices = append(indices, idx)
	}
	return indices, buildErr
}

func (c *Collection) applyStatsLocked(route *track.Route) {
	c.stats.totalPoints += route.TotalPoints()
	c.stats.totalDistance += route.TotalDistance()

	bbox := route.BoundingBox()
	if !c.stats.hasBounds {
		c.stats.bbox = bbox
		c.stats.hasBounds = true
		return
	}
	c.stats.bbox.Min.X = math.Min(c.stats.bbox.Min.X, bbox.Min.X)
	c.stats.bbox.Min.Y = math.Min(c.stats.bbox.Min.Y, bbox.Min.Y)
	c.stats.bbox.Max.X = math.Max(c.stats.bbox.Max.X, bbox.Max.X)
	c.stats.bbox.Max.Y = math.Max(c.stats.bbox.Max.Y, bbox.Max.Y)
}

// rebuildStats recomputes cached stats from scratch by scanning every
// route; used only to verify applyStatsLocked's incremental bookkeeping
// stays consistent, never on the hot path.
func (c *Collection) rebuildStats() cachedStats {
	var s cachedStats
	for _, r := range c.routes {
		s.totalPoints += r.TotalPoints()
		s.totalDistance += r.TotalDistance()
		bbox := r.BoundingBox()
		if !s.hasBounds {
			s.bbox = bbox
			s.hasBounds = true
			continue
		}
		s.bbox.Min.X = math.Min(s.bbox.Min.X, bbox.Min.X)
		s.bbox.Min.Y = math.Min(s.bbox.Min.Y, bbox.Min.Y)
		s.bbox.Max.X = math.Max(s.bbox.Max.X, bbox.Max.X)
		s.bbox.Max.Y = math.Max(s.bbox.Max.Y, bbox.Max.Y)
	}
	return s
}

// RouteCount returns the number of routes currently held, O(1).
func (c *Collection) RouteCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.routes)
}

// TotalPoints returns the aggregate point count across all routes, O(1).
func (c *Collection) TotalPoints() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.totalPoints
}

// TotalDistance returns the aggregate haversine distance in meters
// across all routes, O(1).
func (c *Collection) TotalDistance() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.totalDistance
}

// IsEmpty reports whether the collection holds zero routes.
func (c *Collection) IsEmpty() bool {
	return c.RouteCount() == 0
}

// Route returns the route at index, or nil if out of range.
func (c *Collection) Route(index int) *track.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.routes) {
		return nil
	}
	return c.routes[index]
}

// Routes returns a snapshot slice of every route currently held.
func (c *Collection) Routes() []*track.Route {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*track.Route, len(c.routes))
	copy(out, c.routes)
	return out
}

// BoundingBoxWGS84 returns the WGS84 bounding box covering every route in
// the collection. The second return value is false if the collection is
// empty.
func (c *Collection) BoundingBoxWGS84() (minLat, minLon, maxLat, maxLon float64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.stats.hasBounds {
		return 0, 0, 0, 0, false
	}
	swLat, swLon := geo.ToWGS84(c.stats.bbox.Min)
	neLat, neLon := geo.ToWGS84(c.stats.bbox.Max)
	return swLat, swLon, neLat, neLon, true
}

// CenterWGS84 returns the WGS84 centroid of the collection's bounding
// box. The second return value is false if the collection is empty.
func (c *Collection) CenterWGS84() (lat, lon float64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.stats.hasBounds {
		return 0, 0, false
	}
	center := r2.Vec{
		X: (c.stats.bbox.Min.X + c.stats.bbox.Max.X) / 2,
		Y: (c.stats.bbox.Min.Y + c.stats.bbox.Max.Y) / 2,
	}
	lat, lon = geo.ToWGS84(center)
	return lat, lon, true
}

// GetInfo returns a snapshot of the collection's cached summary
// statistics.
func (c *Collection) GetInfo() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := Info{
		RouteCount:    len(c.routes),
		TotalPoints:   c.stats.totalPoints,
		TotalDistance: c.stats.totalDistance,
		HasBounds:     c.stats.hasBounds,
	}
	if c.stats.hasBounds {
		info.MinLat, info.MinLon = geo.ToWGS84(c.stats.bbox.Min)
		info.MaxLat, info.MaxLon = geo.ToWGS84(c.stats.bbox.Max)
	}
	return info
}

// QueryVisible returns the simplified, viewport-clipped segments visible
// within viewport (Web Mercator meters), at the detail level that the
// viewport's width and the configured Bias and ReferenceViewportWidthPx
// imply. viewportWidthPx is passed to quadtree.Tree.Query, which does
// not use it.
func (c *Collection) QueryVisible(viewport r2.Box, viewportWidthPx float64) []quadtree.SimplifiedSegment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Query(viewport, viewportWidthPx)
}

// Clear discards every route and resets the master tree and cached
// stats to empty.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = nil
	c.stats = cachedStats{}
	c.tree = quadtree.New(c.cfg.Bias, c.cfg.ReferenceViewportWidthPx, c.cfg.MemoCapacity, c.logger)
}
