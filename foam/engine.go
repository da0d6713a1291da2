// Package foam implements a cellular importance sampler in the spirit of
// the FOAM algorithm: an exploration phase recursively splits the unit
// hypercube into cells that track the integral and spread of a density,
// and a generation phase draws points cell-by-cell with accept/reject
// against the cell ceiling. The Generator type binds a density over real
// observable ranges to the engine.
package foam

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Zeff020/root"
)

// Density is a non-negative function over a point. The engine samples it
// on the unit hypercube; Generator rescales observable space into it.
type Density func(point []float64) float64

// Config tunes the exploration and generation phases. Zero values pick
// the defaults.
type Config struct {
	// Cells is the target number of foam cells (default 256)
	Cells int
	// Probes is the number of Monte Carlo probes per cell during
	// exploration (default 200)
	Probes int
	// Workers bounds the parallelism of the exploration phase
	// (default GOMAXPROCS)
	Workers int
	// Seed seeds the exploration RNG; generation uses caller-supplied
	// RNGs
	Seed int64
}

func (c Config) withDefaults() Config {
	if c.Cells <= 0 {
		c.Cells = 256
	}
	if c.Probes <= 0 {
		c.Probes = 200
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// cell is one box of the foam. Coordinates are in the unit hypercube.
type cell struct {
	lo, hi []float64

	// exploration estimates
	integral float64 // mean * volume
	maxVal   float64
	// spread drives the split priority: the absolute mean difference
	// between the two halves of the best axis, times the volume
	spread   float64
	bestAxis int
}

func (c *cell) volume() float64 {
	v := 1.0
	for a := range c.lo {
		v *= c.hi[a] - c.lo[a]
	}
	return v
}

// Engine is the cellular sampler over the unit hypercube. Build explores
// the density; Generate draws points distributed according to it.
type Engine struct {
	dim     int
	density Density
	cfg     Config

	cells []*cell
	// cumulative rejection envelope (cell ceiling times volume) per
	// cell, filled by Build for cell selection
	cumulative []float64
	envelope   float64
	total      float64
	built      bool
}

// NewEngine creates a sampler for a density over the dim-dimensional unit
// hypercube.
func NewEngine(dim int, density Density, cfg Config) (*Engine, error) {
	if dim <= 0 {
		return nil, root.NewConfigError("foam.NewEngine",
			fmt.Sprintf("dimension must be positive, got %d", dim), nil)
	}
	if density == nil {
		return nil, root.NewConfigError("foam.NewEngine", "density must not be nil", nil)
	}
	return &Engine{dim: dim, density: density, cfg: cfg.withDefaults()}, nil
}

// Build runs the exploration phase: starting from the whole unit cube,
// the cell with the largest spread is bisected along its most uneven axis
// until the target cell count is reached. Probing of freshly split cells
// runs in parallel.
func (e *Engine) Build(ctx context.Context) error {
	rng := rand.New(rand.NewSource(e.cfg.Seed))

	lo := make([]float64, e.dim)
	hi := make([]float64, e.dim)
	for a := range hi {
		hi[a] = 1
	}
	c := &cell{lo: lo, hi: hi}
	e.probe(c, rng.Int63())
	e.cells = []*cell{c}

	for len(e.cells) < e.cfg.Cells {
		if err := ctx.Err(); err != nil {
			return err
		}

		worst := -1
		for i, c := range e.cells {
			if c.spread <= 0 {
				continue
			}
			if worst < 0 || c.spread > e.cells[worst].spread {
				worst = i
			}
		}
		if worst < 0 {
			// Density is flat everywhere we can see; no split helps.
			break
		}

		left, right := splitCell(e.cells[worst])
		e.cells[worst] = left
		e.cells = append(e.cells, right)

		// Probe both children concurrently.
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Workers)
		for _, child := range []*cell{left, right} {
			child := child
			seed := rng.Int63()
			g.Go(func() error {
				e.probe(child, seed)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	e.cumulative = make([]float64, len(e.cells))
	e.total = 0
	e.envelope = 0
	for i, c := range e.cells {
		e.total += c.integral
		// The 10% headroom absorbs maxima the probes missed
		e.envelope += c.maxVal * 1.1 * c.volume()
		e.cumulative[i] = e.envelope
	}
	if e.total <= 0 || math.IsNaN(e.total) {
		return root.NewNumericalError("Engine.Build",
			fmt.Sprintf("density integral estimate is %g; cannot sample", e.total), nil)
	}
	e.built = true
	return nil
}

// probe estimates mean, maximum and per-axis unevenness of the density in
// a cell from uniform Monte Carlo samples.
func (e *Engine) probe(c *cell, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	point := make([]float64, e.dim)

	// Per-axis half sums for the split heuristic
	loSum := make([]float64, e.dim)
	hiSum := make([]float64, e.dim)
	loCount := make([]int, e.dim)

	var sum, maxVal float64
	for i := 0; i < e.cfg.Probes; i++ {
		for a := 0; a < e.dim; a++ {
			point[a] = c.lo[a] + rng.Float64()*(c.hi[a]-c.lo[a])
		}
		v := e.density(point)
		if v < 0 || math.IsNaN(v) {
			// Negative or undefined densities cannot be sampled; treat
			// as zero so the integral estimate stays meaningful.
			v = 0
		}
		sum += v
		if v > maxVal {
			maxVal = v
		}
		for a := 0; a < e.dim; a++ {
			if point[a] < (c.lo[a]+c.hi[a])/2 {
				loSum[a] += v
				loCount[a]++
			} else {
				hiSum[a] += v
			}
		}
	}

	vol := c.volume()
	c.integral = sum / float64(e.cfg.Probes) * vol
	c.maxVal = maxVal

	c.spread = 0
	c.bestAxis = 0
	for a := 0; a < e.dim; a++ {
		nLo := loCount[a]
		nHi := e.cfg.Probes - nLo
		if nLo == 0 || nHi == 0 {
			continue
		}
		diff := math.Abs(loSum[a]/float64(nLo)-hiSum[a]/float64(nHi)) * vol
		if diff > c.spread {
			c.spread = diff
			c.bestAxis = a
		}
	}
}

// splitCell bisects a cell along its most uneven axis
func splitCell(c *cell) (*cell, *cell) {
	a := c.bestAxis
	mid := (c.lo[a] + c.hi[a]) / 2

	left := &cell{lo: append([]float64(nil), c.lo...), hi: append([]float64(nil), c.hi...)}
	right := &cell{lo: append([]float64(nil), c.lo...), hi: append([]float64(nil), c.hi...)}
	left.hi[a] = mid
	right.lo[a] = mid
	return left, right
}

// Cells returns the number of foam cells after Build
func (e *Engine) Cells() int {
	return len(e.cells)
}

// Integral returns the Monte Carlo estimate of the density integral over
// the unit hypercube. Only valid after Build.
func (e *Engine) Integral() float64 {
	return e.total
}

// Generate draws one point distributed according to the density: a cell
// is selected proportionally to its rejection envelope (ceiling times
// volume), a point is drawn uniformly inside it, and accept/reject runs
// against the cell ceiling. Densities exceeding the ceiling are accepted
// outright, which slightly underweights regions the exploration probes
// missed; more Probes tighten the bound. Generate only reads engine
// state, so concurrent calls with independent RNGs are safe.
func (e *Engine) Generate(rng *rand.Rand) ([]float64, error) {
	if !e.built {
		return nil, root.NewConfigError("Engine.Generate", "engine is not built", nil)
	}

	for {
		// Cell selection by cumulative envelope
		target := rng.Float64() * e.envelope
		idx := 0
		for idx < len(e.cumulative)-1 && e.cumulative[idx] < target {
			idx++
		}
		c := e.cells[idx]

		ceiling := c.maxVal * 1.1
		if ceiling <= 0 {
			continue
		}

		point := make([]float64, e.dim)
		for a := 0; a < e.dim; a++ {
			point[a] = c.lo[a] + rng.Float64()*(c.hi[a]-c.lo[a])
		}
		if rng.Float64()*ceiling <= e.density(point) {
			return point, nil
		}
	}
}
