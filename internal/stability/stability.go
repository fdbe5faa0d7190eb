// Package stability classifies fixed points of the flow by the
// eigenvalues of the Jacobian there. The 3x3 eigenproblem is solved in
// closed form through the characteristic cubic, so the classification
// is deterministic and free of iteration artifacts.
package stability

import (
	"math/cmplx"
	"sort"

	"github.com/san-kum/rgflow/internal/flow"
)

// Label is the linear-stability class of a fixed point.
type Label string

const (
	Stable   Label = "stable"   // all eigenvalue real parts < -eps
	Unstable Label = "unstable" // all real parts > +eps
	Saddle   Label = "saddle"   // real parts on both sides
	Marginal Label = "marginal" // some real part within [-eps, +eps]; linearization inconclusive
)

// Report pairs a fixed point with its Jacobian eigenvalues and label.
// Reports are derived values, computed on demand and never cached.
type Report struct {
	Point       flow.FixedPoint
	Eigenvalues [3]complex128
	Label       Label
}

// Classify evaluates the Jacobian at fp and labels it. eps is the
// numerical-noise threshold around zero: finite-precision eigenvalues
// of a truly marginal mode are never exactly zero, so a real part
// inside [-eps, +eps] means "indeterminate", not "stable side".
func Classify(field *flow.Field, fp flow.FixedPoint, eps float64) Report {
	eig := Eigenvalues(field.Jacobian(fp.Point))
	return Report{
		Point:       fp,
		Eigenvalues: eig,
		Label:       label(eig, eps),
	}
}

func label(eig [3]complex128, eps float64) Label {
	pos, neg := 0, 0
	for _, e := range eig {
		re := real(e)
		switch {
		case re > eps:
			pos++
		case re < -eps:
			neg++
		default:
			return Marginal
		}
	}
	switch {
	case neg == 3:
		return Stable
	case pos == 3:
		return Unstable
	default:
		return Saddle
	}
}

// Eigenvalues returns the three roots of the characteristic polynomial
// of m, sorted by real part then imaginary part for deterministic
// output. Complex pairs come out conjugate up to rounding.
func Eigenvalues(m flow.Matrix) [3]complex128 {
	// lambda^3 + p2*lambda^2 + p1*lambda + p0
	p2 := -m.Trace()
	p1 := m.MinorSum()
	p0 := -m.Det()

	roots := solveCubic(p2, p1, p0)

	sort.Slice(roots[:], func(i, j int) bool {
		if real(roots[i]) != real(roots[j]) {
			return real(roots[i]) < real(roots[j])
		}
		return imag(roots[i]) < imag(roots[j])
	})

	return roots
}

// solveCubic returns the roots of x^3 + a*x^2 + b*x + c via Cardano's
// method over the complex plane.
func solveCubic(a, b, c float64) [3]complex128 {
	// Depressed form t^3 + p*t + q with x = t - a/3.
	p := b - a*a/3
	q := 2*a*a*a/27 - a*b/3 + c

	shift := complex(-a/3, 0)

	disc := cmplx.Sqrt(complex(q*q/4+p*p*p/27, 0))

	// Pick the cube-root argument of larger magnitude to avoid
	// cancellation when the discriminant nearly equals q/2.
	w := complex(-q/2, 0) + disc
	if alt := complex(-q/2, 0) - disc; cmplx.Abs(alt) > cmplx.Abs(w) {
		w = alt
	}

	if cmplx.Abs(w) == 0 {
		// p and q both vanish: triple root.
		return [3]complex128{shift, shift, shift}
	}

	u := cmplx.Pow(w, complex(1.0/3.0, 0))
	omega := complex(-0.5, 0.8660254037844386) // primitive cube root of unity

	var roots [3]complex128
	zeta := u
	for k := 0; k < 3; k++ {
		roots[k] = zeta - complex(p, 0)/(3*zeta) + shift
		zeta *= omega
	}
	return roots
}
