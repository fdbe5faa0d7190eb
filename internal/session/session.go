// Package session orchestrates the flow core: it owns the model
// parameters and exposes trajectory integration, fixed-point search and
// stability classification over them. Sessions share no mutable state;
// independent sessions may run fully in parallel.
package session

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/rgflow/internal/fixedpoint"
	"github.com/san-kum/rgflow/internal/flow"
	"github.com/san-kum/rgflow/internal/integrators"
	"github.com/san-kum/rgflow/internal/stability"
	"golang.org/x/sync/errgroup"
)

// IntegrateConfig carries everything one integration run needs. All
// tolerances are explicit; defaults live in the config package, never
// here.
type IntegrateConfig struct {
	MuStart  float64 // scale interval start, > 0
	MuEnd    float64 // scale interval end, > 0; may be below MuStart for reverse runs
	Tol      float64 // local truncation-error tolerance
	MinStep  float64 // step floor in ln(mu); going below it unconverged is ErrStiffness
	MaxStep  float64 // optional step ceiling in ln(mu); 0 means none
	InitStep float64 // optional initial step in ln(mu); 0 derives one from the interval
	BlowUp   float64 // component magnitude at which the flow counts as diverged
	MaxSteps int     // accepted-step budget; exhaustion truncates, it does not error
}

func (cfg IntegrateConfig) validate() error {
	if cfg.MuStart <= 0 || cfg.MuEnd <= 0 {
		return fmt.Errorf("scale bounds must be positive, got [%g, %g]: %w", cfg.MuStart, cfg.MuEnd, flow.ErrBadConfig)
	}
	if cfg.MuStart == cfg.MuEnd {
		return fmt.Errorf("empty scale interval at mu=%g: %w", cfg.MuStart, flow.ErrBadConfig)
	}
	if cfg.Tol <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g: %w", cfg.Tol, flow.ErrBadConfig)
	}
	if cfg.MinStep <= 0 {
		return fmt.Errorf("step floor must be positive, got %g: %w", cfg.MinStep, flow.ErrBadConfig)
	}
	if cfg.BlowUp <= 0 {
		return fmt.Errorf("blow-up threshold must be positive, got %g: %w", cfg.BlowUp, flow.ErrBadConfig)
	}
	if cfg.MaxSteps <= 0 {
		return fmt.Errorf("step budget must be positive, got %d: %w", cfg.MaxSteps, flow.ErrBadConfig)
	}
	return nil
}

// Session composes the flow field with an adaptive integrator, the
// fixed-point finder and the stability classifier.
type Session struct {
	field  *flow.Field
	rk     *integrators.RK45
	finder *fixedpoint.Finder
}

func New(p flow.Params) (*Session, error) {
	field, err := flow.NewField(p)
	if err != nil {
		return nil, err
	}
	return &Session{
		field:  field,
		rk:     integrators.NewRK45(),
		finder: fixedpoint.New(field),
	}, nil
}

func (s *Session) Field() *flow.Field  { return s.field }
func (s *Session) Params() flow.Params { return s.field.Params() }

// Integrate advances x0 across [MuStart, MuEnd] with adaptive RK45
// steps. Divergence and budget exhaustion truncate the trajectory and
// are reported in it, not returned as errors. A stiff region returns
// the trajectory prefix together with an error wrapping
// flow.ErrStiffness; context cancellation likewise returns the prefix
// with ctx.Err(). The run is deterministic: identical inputs produce
// bit-identical trajectories.
func (s *Session) Integrate(ctx context.Context, x0 flow.Coupling, cfg IntegrateConfig) (*flow.Trajectory, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if !x0.IsValid() {
		return nil, fmt.Errorf("initial coupling %v: %w", x0, flow.ErrInvalidInput)
	}

	s0 := math.Log(cfg.MuStart)
	s1 := math.Log(cfg.MuEnd)
	dir := 1.0
	if s1 < s0 {
		dir = -1.0
	}

	h := cfg.InitStep
	if h <= 0 {
		h = math.Abs(s1-s0) / 256
	}
	if cfg.MaxStep > 0 {
		h = math.Min(h, cfg.MaxStep)
	}
	h *= dir

	traj := &flow.Trajectory{
		Samples: make([]flow.Sample, 0, cfg.MaxSteps/4+2),
		Reason:  flow.StopCompleted,
	}

	x := x0
	sc := s0
	traj.Samples = append(traj.Samples, flow.Sample{Mu: cfg.MuStart, Point: x})

	for (s1-sc)*dir > 0 {
		select {
		case <-ctx.Done():
			traj.Truncated = true
			traj.Reason = flow.StopCanceled
			return traj, ctx.Err()
		default:
		}

		if traj.Steps >= cfg.MaxSteps {
			traj.Truncated = true
			traj.Reason = flow.StopStepBudget
			return traj, nil
		}

		// Do not overshoot the end of the interval.
		final := false
		if (sc+h-s1)*dir > 0 {
			h = s1 - sc
			final = true
		}

		next, errRatio, hNext := s.rk.StepTrial(s.field, x, h, cfg.Tol)

		if errRatio > 1 {
			traj.Rejected++
			h = hNext
			if math.Abs(h) < cfg.MinStep {
				return traj, &flow.StepError{
					Step:    traj.Steps,
					Mu:      math.Exp(sc),
					Wrapped: flow.ErrStiffness,
				}
			}
			continue
		}

		sc += h
		if final {
			sc = s1
		}
		x = next
		traj.Steps++

		if !x.IsValid() {
			// Last finite sample is already recorded.
			traj.Truncated = true
			traj.Reason = flow.StopDiverged
			return traj, nil
		}

		traj.Samples = append(traj.Samples, flow.Sample{Mu: math.Exp(sc), Point: x})

		if x.MaxAbs() > cfg.BlowUp {
			traj.Truncated = true
			traj.Reason = flow.StopDiverged
			return traj, nil
		}

		h = hNext
		if cfg.MaxStep > 0 && math.Abs(h) > cfg.MaxStep {
			h = cfg.MaxStep * dir
		}
		if math.Abs(h) < cfg.MinStep {
			h = cfg.MinStep * dir
		}
	}

	return traj, nil
}

// IntegrateBatch integrates several initial points under one config.
// Runs are independent: one diverging or stiff trajectory never aborts
// the batch. Errors come back per slot, aligned with the input order.
func (s *Session) IntegrateBatch(ctx context.Context, points []flow.Coupling, cfg IntegrateConfig) ([]*flow.Trajectory, []error) {
	trajs := make([]*flow.Trajectory, len(points))
	errs := make([]error, len(points))

	g := new(errgroup.Group)
	g.SetLimit(4)
	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			trajs[i], errs[i] = s.Integrate(ctx, p, cfg)
			return nil
		})
	}
	g.Wait()

	return trajs, errs
}

// FindFixedPoints searches the configured cuboid for zeros of the field.
func (s *Session) FindFixedPoints(ctx context.Context, cfg fixedpoint.Config) ([]flow.FixedPoint, error) {
	return s.finder.Search(ctx, cfg)
}

// Classify computes a stability report for one fixed point. Reports are
// derived on demand and never cached.
func (s *Session) Classify(fp flow.FixedPoint, eps float64) stability.Report {
	return stability.Classify(s.field, fp, eps)
}

// ClassifyAll reports on every fixed point in order.
func (s *Session) ClassifyAll(fps []flow.FixedPoint, eps float64) []stability.Report {
	reports := make([]stability.Report, len(fps))
	for i, fp := range fps {
		reports[i] = stability.Classify(s.field, fp, eps)
	}
	return reports
}
