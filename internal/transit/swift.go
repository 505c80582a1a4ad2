// Package transit implements the swift transit flux model: precomputed
// grazing-parameter weight tables over a projected-distance grid convert an
// arbitrary limb-darkening profile into the mean intensity blocked by the
// planet, with an exact geometric branch for large planets and a
// small-planet approximation below a configurable radius-ratio threshold.
package transit

import (
	"fmt"
	"runtime"
	"sync"
)

// Config holds the resolution and evaluation parameters of a SwiftModel.
type Config struct {
	// ZCut is the projected distance below which the z grid uses uniform
	// spacing; beyond it points are spaced uniformly in mu.
	ZCut float64
	// NIn and NEdge are the interior and near-limb z-grid point counts.
	NIn   int
	NEdge int
	// NG is the grazing-parameter resolution of the weight tables.
	NG int
	// NK is the radius-ratio resolution of the precomputed 3D weight
	// table. Zero disables precomputation (on-the-fly tables only).
	NK int
	// KLims bounds the radius-ratio axis of the precomputed table.
	KLims [2]float64
	// SmallPlanetLimit is the radius ratio below which the small-planet
	// approximation replaces the exact geometric branch.
	SmallPlanetLimit float64
	// Parallel selects the data-parallel evaluation drivers.
	Parallel bool
	// Workers caps the parallel worker count; 0 means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the model defaults. The resolutions are sized so
// that weight-table interpolation error stays below typical photometric
// noise while keeping the precomputed table small.
func DefaultConfig() Config {
	return Config{
		ZCut:             0.7,
		NIn:              100,
		NEdge:            50,
		NG:               50,
		NK:               256,
		KLims:            [2]float64{0.005, 0.5},
		SmallPlanetLimit: 0.05,
		Parallel:         true,
	}
}

// SwiftModel evaluates transit flux series. The z grid and the optional
// radius-ratio-resolved weight table are built once at construction and
// read-only afterwards; evaluations share no mutable state, so the same
// model may be used concurrently.
type SwiftModel struct {
	cfg   Config
	grid  ZGrid
	table *WeightTable3D

	// Observation context set via SetData.
	times    []float64 // concatenated mid-exposure times
	lcids    []int     // light-curve id per point
	pbids    []int     // passband id per light curve
	nsamples []int     // supersampling factor per light curve
	exptimes []float64 // exposure time per light curve
	npb      int
	nlc      int
}

// NewSwiftModel builds a model from cfg, constructing the z grid and, when
// cfg.NK > 0, the precomputed radius-ratio weight table.
func NewSwiftModel(cfg Config) *SwiftModel {
	m := &SwiftModel{cfg: cfg, grid: NewZGrid(cfg.ZCut, cfg.NIn, cfg.NEdge)}
	if cfg.NK > 0 {
		t := NewWeightTable3D(cfg.NK, cfg.KLims[0], cfg.KLims[1], m.grid.Edges, cfg.NG)
		m.table = &t
	}
	return m
}

// Config returns the model configuration.
func (m *SwiftModel) Config() Config { return m.cfg }

// Grid returns the model's z grid.
func (m *SwiftModel) Grid() ZGrid { return m.grid }

// NPoints returns the number of observation points set via SetData.
func (m *SwiftModel) NPoints() int { return len(m.times) }

// SetData installs the observation context: concatenated times, the
// per-point light-curve index map, the per-curve passband ids, supersampling
// factors and exposure times, and the passband count. All per-curve arrays
// must have one entry per light curve and every index must be in range.
func (m *SwiftModel) SetData(times []float64, lcids, pbids, nsamples []int, exptimes []float64, npb int) error {
	if len(times) != len(lcids) {
		return fmt.Errorf("%w: %d times vs %d light curve ids", ErrDataShape, len(times), len(lcids))
	}
	nlc := len(pbids)
	if len(nsamples) != nlc || len(exptimes) != nlc {
		return fmt.Errorf("%w: %d passband ids vs %d nsamples vs %d exptimes",
			ErrDataShape, nlc, len(nsamples), len(exptimes))
	}
	for j, ilc := range lcids {
		if ilc < 0 || ilc >= nlc {
			return fmt.Errorf("%w: light curve id %d at point %d outside [0,%d)", ErrDataShape, ilc, j, nlc)
		}
	}
	for i, ipb := range pbids {
		if ipb < 0 || ipb >= npb {
			return fmt.Errorf("%w: passband id %d for light curve %d outside [0,%d)", ErrDataShape, ipb, i, npb)
		}
	}
	m.times = times
	m.lcids = lcids
	m.pbids = pbids
	m.nsamples = nsamples
	m.exptimes = exptimes
	m.npb = npb
	m.nlc = nlc
	return nil
}

// workers resolves the parallel worker count.
func (m *SwiftModel) workers() int {
	if m.cfg.Workers > 0 {
		return m.cfg.Workers
	}
	return defaultWorkers()
}

func defaultWorkers() int { return runtime.GOMAXPROCS(0) }

// parallelFor runs fn over [0,n) partitioned across the configured worker
// count. Each index is visited by exactly one goroutine and fn must only
// write state owned by its index, so no synchronisation beyond the final
// wait is needed.
func parallelFor(n, workers int, fn func(i int)) {
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}
