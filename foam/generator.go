package foam

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Zeff020/root"
)

// Observable is one generated variable with its allowed range
type Observable struct {
	Name     string
	Min, Max float64
}

// Generator binds a density over real observable ranges to a foam engine:
// observable space is mapped onto the unit hypercube for exploration, and
// generated unit points are mapped back. It is the numeric-sampling
// adapter used when a density advertises no direct generator.
type Generator struct {
	engine *Engine
	obs    []Observable
	xmin   []float64
	rng    *rand.Rand
	// vec is the transfer buffer for mapped points
	vec []float64
}

// NewGenerator explores the density over the given observables and
// returns a ready generator. The density receives points in observable
// coordinates.
func NewGenerator(ctx context.Context, density Density, obs []Observable, cfg Config) (*Generator, error) {
	if len(obs) == 0 {
		return nil, root.NewConfigError("foam.NewGenerator", "no observables to generate", nil)
	}
	xmin := make([]float64, len(obs))
	span := make([]float64, len(obs))
	for i, o := range obs {
		if o.Max <= o.Min {
			return nil, root.NewConfigError("foam.NewGenerator",
				fmt.Sprintf("observable %q has empty range [%g, %g]", o.Name, o.Min, o.Max), nil)
		}
		xmin[i] = o.Min
		span[i] = o.Max - o.Min
	}

	unitDensity := func(u []float64) float64 {
		x := make([]float64, len(u))
		for i := range u {
			x[i] = xmin[i] + u[i]*span[i]
		}
		return density(x)
	}

	engine, err := NewEngine(len(obs), unitDensity, cfg)
	if err != nil {
		return nil, err
	}
	if err := engine.Build(ctx); err != nil {
		return nil, err
	}

	return &Generator{
		engine: engine,
		obs:    append([]Observable(nil), obs...),
		xmin:   xmin,
		rng:    rand.New(rand.NewSource(cfg.withDefaults().Seed + 1)),
		vec:    make([]float64, len(obs)),
	}, nil
}

// Engine exposes the underlying foam engine
func (g *Generator) Engine() *Engine {
	return g.engine
}

// CanSampleConditional reports whether conditional observables are
// supported. They are not.
func (g *Generator) CanSampleConditional() bool { return false }

// CanSampleCategories reports whether category observables are supported.
// They are not.
func (g *Generator) CanSampleCategories() bool { return false }

// GenerateEvent draws one event in observable coordinates. remaining is
// the number of events the caller still wants; it is accepted for
// interface compatibility and does not influence the draw. The returned
// slice is reused across calls.
func (g *Generator) GenerateEvent(remaining int) ([]float64, error) {
	_ = remaining

	point, err := g.engine.Generate(g.rng)
	if err != nil {
		return nil, err
	}
	for i := range point {
		g.vec[i] = g.xmin[i] + point[i]*(g.obs[i].Max-g.obs[i].Min)
	}
	return g.vec, nil
}
