package stability

import (
	"math"
	"testing"

	"github.com/san-kum/rgflow/internal/flow"
)

func mustField(t *testing.T, p flow.Params) *flow.Field {
	t.Helper()
	f, err := flow.NewField(p)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return f
}

func eigClose(got [3]complex128, want [3]complex128, tol float64) bool {
	for i := range got {
		if math.Abs(real(got[i])-real(want[i])) > tol ||
			math.Abs(imag(got[i])-imag(want[i])) > tol {
			return false
		}
	}
	return true
}

// The reference scenario: decoupled system, origin. The Jacobian there
// is diag(A, -D, a) = diag(1, -1, 1), so the eigenvalue set is
// {1, -1, 1} and the mixed signs make it a saddle.
func TestClassifyDecoupledOrigin(t *testing.T) {
	field := mustField(t, flow.Params{A: 1, B: 1, C: 1, D: 1, SA: 1, SB: 1})

	fp := flow.FixedPoint{Point: flow.Coupling{0, 0, 0}}
	report := Classify(field, fp, 1e-6)

	want := [3]complex128{-1, 1, 1} // sorted by real part
	if !eigClose(report.Eigenvalues, want, 1e-8) {
		t.Errorf("eigenvalues = %v, want %v", report.Eigenvalues, want)
	}
	if report.Label != Saddle {
		t.Errorf("label = %q, want saddle", report.Label)
	}
}

func TestClassifyStableNode(t *testing.T) {
	field := mustField(t, flow.Params{A: -1, D: 1, SA: -1})

	report := Classify(field, flow.FixedPoint{}, 1e-6)

	want := [3]complex128{-1, -1, -1}
	if !eigClose(report.Eigenvalues, want, 1e-8) {
		t.Errorf("eigenvalues = %v, want %v", report.Eigenvalues, want)
	}
	if report.Label != Stable {
		t.Errorf("label = %q, want stable", report.Label)
	}
}

func TestClassifyUnstableNode(t *testing.T) {
	field := mustField(t, flow.Params{A: 2, D: -1, SA: 3})

	report := Classify(field, flow.FixedPoint{}, 1e-6)

	if report.Label != Unstable {
		t.Errorf("label = %q, want unstable", report.Label)
	}
}

func TestClassifyMarginal(t *testing.T) {
	// A = 0 puts one eigenvalue exactly on the imaginary axis.
	field := mustField(t, flow.Params{A: 0, D: 1, SA: -1})

	report := Classify(field, flow.FixedPoint{}, 1e-6)

	if report.Label != Marginal {
		t.Errorf("label = %q, want marginal", report.Label)
	}
}

func TestLabelThreshold(t *testing.T) {
	eps := 1e-6
	cases := []struct {
		eig  [3]complex128
		want Label
	}{
		{[3]complex128{-1, -2, -3}, Stable},
		{[3]complex128{1, 2, 3}, Unstable},
		{[3]complex128{-1, 2, 3}, Saddle},
		{[3]complex128{complex(5e-7, 0), -1, 1}, Marginal},
		{[3]complex128{complex(-5e-7, 0), -1, -2}, Marginal},
		{[3]complex128{complex(0, 4), complex(0, -4), -1}, Marginal},
		{[3]complex128{complex(-2e-6, 3), complex(-2e-6, -3), -1}, Stable},
	}
	for i, tc := range cases {
		if got := label(tc.eig, eps); got != tc.want {
			t.Errorf("case %d: label = %q, want %q", i, got, tc.want)
		}
	}
}

func TestEigenvaluesComplexPair(t *testing.T) {
	// Rotation block plus a stretch: eigenvalues i, -i, 2.
	m := flow.Matrix{
		{0, -1, 0},
		{1, 0, 0},
		{0, 0, 2},
	}
	got := Eigenvalues(m)

	want := [3]complex128{complex(0, -1), complex(0, 1), 2}
	if !eigClose(got, want, 1e-9) {
		t.Errorf("eigenvalues = %v, want %v", got, want)
	}
}

func TestEigenvaluesTripleRoot(t *testing.T) {
	m := flow.Matrix{
		{2, 0, 0},
		{0, 2, 0},
		{0, 0, 2},
	}
	got := Eigenvalues(m)

	want := [3]complex128{2, 2, 2}
	if !eigClose(got, want, 1e-9) {
		t.Errorf("eigenvalues = %v, want %v", got, want)
	}
}

func TestEigenvaluesGeneric(t *testing.T) {
	// Companion matrix of (x-1)(x-2)(x-3) = x^3 - 6x^2 + 11x - 6.
	m := flow.Matrix{
		{0, 0, 6},
		{1, 0, -11},
		{0, 1, 6},
	}
	got := Eigenvalues(m)

	want := [3]complex128{1, 2, 3}
	if !eigClose(got, want, 1e-8) {
		t.Errorf("eigenvalues = %v, want %v", got, want)
	}
}

func TestEigenvaluesDeterministic(t *testing.T) {
	m := flow.Matrix{
		{0.3, -1.2, 0.5},
		{0.9, 0.1, -0.4},
		{-0.2, 0.8, -0.6},
	}
	first := Eigenvalues(m)
	for i := 0; i < 10; i++ {
		if Eigenvalues(m) != first {
			t.Fatal("Eigenvalues not deterministic")
		}
	}
}
