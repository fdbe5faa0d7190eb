// Package fixedpoint locates zeros of the flow field inside a bounded
// region of coupling space: a deterministic grid of seeds (plus any
// caller-supplied ones) refined by Newton's method with the analytic
// Jacobian, then merged and sorted.
package fixedpoint

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/san-kum/rgflow/internal/flow"
	"golang.org/x/sync/errgroup"
)

// A Newton iterate wandering this far from the origin is treated as
// divergent and its seed dropped.
const escapeRadius = 1e9

// Slack when checking whether a refined point still lies inside the
// search cuboid; Newton legitimately lands a hair outside a face.
const boundsSlack = 1e-9

// Config bounds and tunes one search. Tol accepts a candidate by
// residual norm; MergeTol deduplicates nearby candidates and is a
// separate knob on purpose.
type Config struct {
	Min      flow.Coupling // cuboid lower corner
	Max      flow.Coupling // cuboid upper corner
	Spacing  float64       // grid seed spacing along each axis
	Seeds    []flow.Coupling
	MaxIter  int
	Tol      float64
	MergeTol float64
}

func (cfg Config) validate() error {
	if !cfg.Min.IsValid() || !cfg.Max.IsValid() {
		return fmt.Errorf("search bounds: %w", flow.ErrInvalidInput)
	}
	for i := range cfg.Min {
		if cfg.Min[i] > cfg.Max[i] {
			return fmt.Errorf("bounds inverted on %s: %w", flow.Names[i], flow.ErrBadConfig)
		}
	}
	if cfg.Spacing <= 0 {
		return fmt.Errorf("grid spacing must be positive, got %g: %w", cfg.Spacing, flow.ErrBadConfig)
	}
	if cfg.MaxIter <= 0 {
		return fmt.Errorf("iteration budget must be positive, got %d: %w", cfg.MaxIter, flow.ErrBadConfig)
	}
	if cfg.Tol <= 0 || cfg.MergeTol <= 0 {
		return fmt.Errorf("tolerances must be positive: %w", flow.ErrBadConfig)
	}
	for _, s := range cfg.Seeds {
		if !s.IsValid() {
			return fmt.Errorf("seed %v: %w", s, flow.ErrInvalidInput)
		}
	}
	return nil
}

type Finder struct {
	field *flow.Field
}

func New(field *flow.Field) *Finder {
	return &Finder{field: field}
}

// Search refines every seed in parallel, then merges and sorts after
// the join. Seeds that fail to converge are dropped silently; a search
// that finds nothing returns an empty list, not an error. Two searches
// with identical inputs return identical lists.
func (f *Finder) Search(ctx context.Context, cfg Config) ([]flow.FixedPoint, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	seeds := gridSeeds(cfg)
	seeds = append(seeds, cfg.Seeds...)

	candidates := make([]*flow.FixedPoint, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if fp, ok := f.refine(seed, cfg); ok {
				candidates[i] = &fp
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := merge(candidates, cfg.MergeTol)

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Point.Less(merged[j].Point)
	})

	return merged, nil
}

// gridSeeds enumerates the seed lattice in a fixed axis order. Counts
// are derived once per axis so float drift cannot change the lattice
// between runs.
func gridSeeds(cfg Config) []flow.Coupling {
	var counts [3]int
	for i := range counts {
		counts[i] = int(math.Floor((cfg.Max[i]-cfg.Min[i])/cfg.Spacing+1e-9)) + 1
	}

	seeds := make([]flow.Coupling, 0, counts[0]*counts[1]*counts[2])
	for i := 0; i < counts[0]; i++ {
		for j := 0; j < counts[1]; j++ {
			for k := 0; k < counts[2]; k++ {
				seeds = append(seeds, flow.Coupling{
					cfg.Min[0] + float64(i)*cfg.Spacing,
					cfg.Min[1] + float64(j)*cfg.Spacing,
					cfg.Min[2] + float64(k)*cfg.Spacing,
				})
			}
		}
	}
	return seeds
}

// refine runs undamped Newton iteration from seed. Any failure mode
// (singular Jacobian, divergent iterate, exhausted budget, landing
// outside the cuboid) drops the seed; other seeds are independent.
func (f *Finder) refine(seed flow.Coupling, cfg Config) (flow.FixedPoint, bool) {
	x := seed
	for it := 0; it <= cfg.MaxIter; it++ {
		if !x.IsValid() || x.Norm() > escapeRadius {
			return flow.FixedPoint{}, false
		}

		fx := f.field.Derive(x)
		if !fx.IsValid() {
			return flow.FixedPoint{}, false
		}

		if res := fx.Norm(); res <= cfg.Tol {
			if !inside(x, cfg) {
				return flow.FixedPoint{}, false
			}
			return flow.FixedPoint{Point: x, Residual: res, Seed: seed}, true
		}
		if it == cfg.MaxIter {
			break
		}

		dx, ok := f.field.Jacobian(x).Solve(fx)
		if !ok {
			return flow.FixedPoint{}, false
		}
		x = x.Sub(dx)
	}
	return flow.FixedPoint{}, false
}

func inside(x flow.Coupling, cfg Config) bool {
	for i := range x {
		if x[i] < cfg.Min[i]-boundsSlack || x[i] > cfg.Max[i]+boundsSlack {
			return false
		}
	}
	return true
}

// merge deduplicates candidates in seed order, keeping the lowest
// residual of each cluster. Seed order is fixed before the parallel
// phase, so the outcome does not depend on goroutine scheduling.
func merge(candidates []*flow.FixedPoint, mergeTol float64) []flow.FixedPoint {
	merged := make([]flow.FixedPoint, 0, 8)
	for _, cand := range candidates {
		if cand == nil {
			continue
		}
		dup := false
		for i := range merged {
			if cand.Point.Sub(merged[i].Point).Norm() < mergeTol {
				if cand.Residual < merged[i].Residual {
					merged[i].Residual = cand.Residual
					merged[i].Point = cand.Point
					merged[i].Seed = cand.Seed
				}
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, *cand)
		}
	}
	return merged
}
