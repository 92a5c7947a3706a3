// Package ingest implements the fork-join worker pool behind
// collection.AddRoutesParallel: each input track model is parsed into a
// Route and built into its own standalone quadtree.Tree concurrently,
// bounded by GOMAXPROCS; the resulting (Route, Tree) pairs come back in
// input order so the caller can merge them into a master tree
// sequentially, which is the only part of ingest that must not run
// concurrently.
package ingest

import (
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/NeoTecDigital/tracklod/pkg/quadtree"
	"github.com/NeoTecDigital/tracklod/pkg/track"
)

// Pair is one successfully built route and the standalone tree holding
// its chunked geometry, ready to be merged into a master tree.
type Pair struct {
	Route *track.Route
	Tree  *quadtree.Tree
}

// TreeParams carries the quadtree configuration each per-route Tree must
// share in order to be mergeable into a common master tree afterward.
type TreeParams struct {
	Bias                     float64
	ReferenceViewportWidthPx float64
	MemoCapacity             int
}

// BuildParallel parses and indexes every model concurrently, one
// goroutine per worker slot up to runtime.GOMAXPROCS(0), and returns the
// resulting pairs in the same order as models. A model that fails to
// become a valid Route is dropped from the result and its error is
// folded into the returned multierr; the routeIndex recorded in each
// pair's Tree chunks is the model's position in the input slice.
func BuildParallel(models []track.Model, params TreeParams, logger *zap.Logger) ([]Pair, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	n := len(models)
	pairs := make([]*Pair, n)
	errs := make([]error, n)

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			route, err := track.New(models[i], logger)
			if err != nil {
				errs[i] = err
				continue
			}

			tree := quadtree.New(params.Bias, params.ReferenceViewportWidthPx, params.MemoCapacity, logger)
			tree.AddRoute(route, i)
			pairs[i] = &Pair{Route: route, Tree: tree}
		}
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go worker()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var combined error
	out := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			combined = multierr.Append(combined, errs[i])
			continue
		}
		out = append(out, *pairs[i])
	}
	return out, combined
}
