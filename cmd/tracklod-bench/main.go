// tracklod-bench measures query latency against a synthetic route
// collection across a range of zoom levels, under concurrent load.
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/NeoTecDigital/tracklod/pkg/collection"
	"github.com/NeoTecDigital/tracklod/pkg/geo"
	"github.com/NeoTecDigital/tracklod/pkg/track"
)

const (
	// TargetP95Latency is the per-query latency this benchmark checks
	// the collection against, over queries at random zoom levels.
	TargetP95Latency = 5 * time.Millisecond

	NumRoutes         = 100
	PointsPerRoute    = 2000
	TestQueries       = 10000
	ConcurrentWorkers = 20
)

type BenchmarkResult struct {
	AverageLatency    time.Duration
	P50Latency        time.Duration
	P90Latency        time.Duration
	P95Latency        time.Duration
	P99Latency        time.Duration
	QueriesPerSecond  float64
	MemoHitRate       float64
	TargetAchieved    bool
}

func main() {
	log.Printf("Starting tracklod query benchmark")
	log.Printf("Target: p95 <= %v over random zoom levels", TargetP95Latency)

	coll := buildTestCollection(NumRoutes, PointsPerRoute)

	warmup(coll)

	result := runBenchmark(coll)
	displayResults(result)

	if result.TargetAchieved {
		log.Printf("target achieved")
		os.Exit(0)
	}
	log.Printf("target not achieved")
	os.Exit(1)
}

func buildTestCollection(numRoutes, pointsPerRoute int) *collection.Collection {
	coll := collection.New(collection.DefaultConfig(), nil)

	models := make([]track.Model, numRoutes)
	for i := 0; i < numRoutes; i++ {
		baseLat := -60.0 + rand.Float64()*120.0
		baseLon := -170.0 + rand.Float64()*340.0
		pts := make([]track.Waypoint, pointsPerRoute)
		for j := 0; j < pointsPerRoute; j++ {
			pts[j] = track.Waypoint{
				Lat: baseLat + math.Sin(float64(j)*0.01)*0.05,
				Lon: baseLon + float64(j)*0.0005,
			}
		}
		models[i] = track.Model{Tracks: []track.Track{{Segments: []track.Segment{{Points: pts}}}}}
	}

	if _, err := coll.AddRoutesParallel(models); err != nil {
		log.Printf("some routes failed to ingest: %v", err)
	}
	return coll
}

func warmup(coll *collection.Collection) {
	log.Printf("warming up simplification memo...")
	for i := 0; i < 200; i++ {
		coll.QueryVisible(randomViewport(), 1024)
	}
}

func randomViewport() r2.Box {
	width := 1000.0 + rand.Float64()*geo.EarthMercatorMax
	cx := (rand.Float64()*2 - 1) * geo.EarthMercatorMax
	cy := (rand.Float64()*2 - 1) * geo.EarthMercatorMax
	half := width / 2
	return r2.Box{
		Min: r2.Vec{X: cx - half, Y: cy - half},
		Max: r2.Vec{X: cx + half, Y: cy + half},
	}
}

func runBenchmark(coll *collection.Collection) *BenchmarkResult {
	log.Printf("running query benchmark...")

	var latencies []time.Duration
	var mu sync.Mutex
	var wg sync.WaitGroup

	queriesPerWorker := TestQueries / ConcurrentWorkers
	start := time.Now()

	for w := 0; w < ConcurrentWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, queriesPerWorker)
			for i := 0; i < queriesPerWorker; i++ {
				viewport := randomViewport()
				qStart := time.Now()
				coll.QueryVisible(viewport, 1024)
				local = append(local, time.Since(qStart))
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	elapsed := time.Since(start).Seconds()

	avg := averageLatency(latencies)
	p50, p90, p95, p99 := percentiles(latencies)
	qps := float64(len(latencies)) / elapsed

	return &BenchmarkResult{
		AverageLatency:   avg,
		P50Latency:       p50,
		P90Latency:       p90,
		P95Latency:       p95,
		P99Latency:       p99,
		QueriesPerSecond: qps,
		TargetAchieved:   p95 <= TargetP95Latency,
	}
}

func averageLatency(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	return total / time.Duration(len(latencies))
}

func percentiles(latencies []time.Duration) (p50, p90, p95, p99 time.Duration) {
	if len(latencies) == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	for i := 0; i < len(sorted)-1; i++ {
		for j := 0; j < len(sorted)-i-1; j++ {
			if sorted[j] > sorted[j+1] {
				sorted[j], sorted[j+1] = sorted[j+1], sorted[j]
			}
		}
	}
	n := len(sorted)
	p50 = sorted[int(float64(n)*0.50)]
	p90 = sorted[int(float64(n)*0.90)]
	p95 = sorted[int(float64(n)*0.95)]
	p99 = sorted[min(int(float64(n)*0.99), n-1)]
	return p50, p90, p95, p99
}

func displayResults(r *BenchmarkResult) {
	fmt.Println()
	fmt.Println("TRACKLOD QUERY BENCHMARK RESULTS")
	fmt.Printf("  Average Latency:   %v\n", r.AverageLatency)
	fmt.Printf("  P50 Latency:       %v\n", r.P50Latency)
	fmt.Printf("  P90 Latency:       %v\n", r.P90Latency)
	fmt.Printf("  P95 Latency:       %v\n", r.P95Latency)
	fmt.Printf("  P99 Latency:       %v\n", r.P99Latency)
	fmt.Printf("  Queries/Second:    %.0f\n", r.QueriesPerSecond)
	fmt.Printf("  Target p95:        %v\n", TargetP95Latency)
	if r.TargetAchieved {
		fmt.Println("  Status:            SUCCESS")
	} else {
		fmt.Println("  Status:            MISS")
	}
}
