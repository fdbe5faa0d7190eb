package flow

import (
	"errors"
	"math"
	"testing"
)

var testParams = Params{A: 1, B: 2, E: 3, C: 4, D: 5, F: 6, SA: 7, SB: 8, SC: 9}

func TestFieldEvaluate(t *testing.T) {
	f, err := NewField(testParams)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	// Hand-computed from the polynomial form.
	got, err := f.Evaluate(Coupling{0.5, -1, 2})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := Coupling{-5.75, 15, -22.5}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFieldEvaluateDeterministic(t *testing.T) {
	f, _ := NewField(testParams)
	c := Coupling{0.3, -0.7, 1.9}

	first, _ := f.Evaluate(c)
	for i := 0; i < 10; i++ {
		again, _ := f.Evaluate(c)
		if again != first {
			t.Fatalf("Evaluate not deterministic: %v vs %v", again, first)
		}
	}
}

func TestFieldEvaluateInvalidInput(t *testing.T) {
	f, _ := NewField(testParams)

	bad := []Coupling{
		{math.NaN(), 0, 0},
		{0, math.Inf(1), 0},
		{0, 0, math.Inf(-1)},
	}
	for _, c := range bad {
		if _, err := f.Evaluate(c); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Evaluate(%v): want ErrInvalidInput, got %v", c, err)
		}
	}
}

func TestNewFieldInvalidParams(t *testing.T) {
	p := testParams
	p.E = math.NaN()
	if _, err := NewField(p); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("want ErrInvalidInput for NaN coefficient, got %v", err)
	}
}

func TestFieldJacobianAnalytic(t *testing.T) {
	f, _ := NewField(testParams)

	got := f.Jacobian(Coupling{0.5, -1, 2})
	want := Matrix{
		{-0.5, 6, -3},
		{12, -13, 3},
		{-9, 4.5, -25},
	}
	for i := range got {
		for j := range got[i] {
			if math.Abs(got[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("J[%d][%d]: got %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

// The analytic Jacobian must agree with central differences of Derive
// to O(h^2) across a grid of points.
func TestFieldJacobianMatchesFiniteDifference(t *testing.T) {
	f, _ := NewField(testParams)
	const h = 1e-6

	grid := []float64{-1.5, -0.4, 0, 0.7, 1.3}
	for _, k := range grid {
		for _, b := range grid {
			for _, a := range grid {
				c := Coupling{k, b, a}
				jac := f.Jacobian(c)

				for j := 0; j < 3; j++ {
					cp, cm := c, c
					cp[j] += h
					cm[j] -= h
					dp := f.Derive(cp)
					dm := f.Derive(cm)

					for i := 0; i < 3; i++ {
						fd := (dp[i] - dm[i]) / (2 * h)
						if math.Abs(jac[i][j]-fd) > 1e-5 {
							t.Fatalf("at %v: J[%d][%d]=%v, finite diff %v", c, i, j, jac[i][j], fd)
						}
					}
				}
			}
		}
	}
}

func TestCouplingLess(t *testing.T) {
	cases := []struct {
		a, b Coupling
		want bool
	}{
		{Coupling{0, 0, 0}, Coupling{1, 0, 0}, true},
		{Coupling{1, 0, 0}, Coupling{0, 9, 9}, false},
		{Coupling{1, 2, 3}, Coupling{1, 2, 3}, false},
		{Coupling{1, 2, 3}, Coupling{1, 2, 4}, true},
		{Coupling{1, 3, 0}, Coupling{1, 2, 9}, false},
	}
	for _, tc := range cases {
		if got := tc.a.Less(tc.b); got != tc.want {
			t.Errorf("%v.Less(%v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCouplingNorm(t *testing.T) {
	c := Coupling{3, 4, 12}
	if got := c.Norm(); math.Abs(got-13) > 1e-12 {
		t.Errorf("Norm = %v, want 13", got)
	}
}
