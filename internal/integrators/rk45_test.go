package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/rgflow/internal/flow"
)

// Purely linear flow: each coupling decays as exp(-s), exact solution
// available for accuracy checks.
func linearField(t *testing.T) *flow.Field {
	t.Helper()
	f, err := flow.NewField(flow.Params{A: -1, D: 1, SA: -1})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return f
}

func TestRK45_StepAccuracy(t *testing.T) {
	r := NewRK45()
	f := linearField(t)
	x0 := flow.Coupling{1, 1, 1}

	next, errRatio, _ := r.StepTrial(f, x0, 0.1, 1e-6)

	if errRatio > 1 {
		t.Fatalf("step rejected unexpectedly, errRatio=%v", errRatio)
	}

	exact := math.Exp(-0.1)
	for i := range next {
		if math.Abs(next[i]-exact) > 1e-8 {
			t.Errorf("component %d: got %v, want %v", i, next[i], exact)
		}
	}
}

func TestRK45_ManySteps(t *testing.T) {
	r := NewRK45()
	f := linearField(t)

	x := flow.Coupling{1, 1, 1}
	h := 0.001
	for i := 0; i < 1000; i++ {
		x, _, _ = r.StepTrial(f, x, h, 1e-9)
	}

	exact := math.Exp(-1)
	for i := range x {
		if math.Abs(x[i]-exact) > 1e-9 {
			t.Errorf("component %d after s=1: got %v, want %v", i, x[i], exact)
		}
	}
}

func TestRK45_NegativeStep(t *testing.T) {
	r := NewRK45()
	f := linearField(t)

	next, _, hNext := r.StepTrial(f, flow.Coupling{1, 1, 1}, -0.1, 1e-8)

	exact := math.Exp(0.1)
	for i := range next {
		if math.Abs(next[i]-exact) > 1e-8 {
			t.Errorf("component %d: got %v, want %v", i, next[i], exact)
		}
	}
	if hNext >= 0 {
		t.Errorf("suggested step lost its sign: %v", hNext)
	}
}

func TestRK45_RejectsCoarseStep(t *testing.T) {
	r := NewRK45()
	// Strongly nonlinear flow so a huge step cannot meet a tight tolerance.
	f, err := flow.NewField(flow.Params{A: 1, B: 1, C: 1, D: 1, SA: 1, SB: 1})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	_, errRatio, hNext := r.StepTrial(f, flow.Coupling{0.5, 0.5, 0.5}, 2.0, 1e-12)

	if errRatio <= 1 {
		t.Fatalf("expected rejection, errRatio=%v", errRatio)
	}
	if math.Abs(hNext) >= 2.0 {
		t.Errorf("rejected step not shrunk: hNext=%v", hNext)
	}
}

func TestRK45_BoundedGrowth(t *testing.T) {
	r := NewRK45()
	f := linearField(t)

	h := 0.001
	_, _, hNext := r.StepTrial(f, flow.Coupling{1, 1, 1}, h, 1e-3)

	if hNext > h*r.maxScale+1e-15 {
		t.Errorf("growth unbounded: h=%v -> %v", h, hNext)
	}
}

func TestRK45_Deterministic(t *testing.T) {
	f := linearField(t)

	run := func() flow.Coupling {
		r := NewRK45()
		x := flow.Coupling{0.9, -0.4, 0.2}
		h := 0.01
		for i := 0; i < 500; i++ {
			x, _, h = r.StepTrial(f, x, h, 1e-8)
		}
		return x
	}

	if a, b := run(), run(); a != b {
		t.Errorf("identical runs differ: %v vs %v", a, b)
	}
}

func TestRK4_Step(t *testing.T) {
	r := NewRK4()
	f := linearField(t)

	x := flow.Coupling{1, 1, 1}
	for i := 0; i < 100; i++ {
		x = r.Step(f, x, 0.01)
	}

	exact := math.Exp(-1)
	for i := range x {
		if math.Abs(x[i]-exact) > 1e-8 {
			t.Errorf("component %d: got %v, want %v", i, x[i], exact)
		}
	}
}
