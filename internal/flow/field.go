package flow

import "fmt"

// Field evaluates the right-hand side of the flow equations
//
//	mu dkappa/dmu = A*kappa - B*kappa^3 + E*beta*alpha
//	mu dbeta/dmu  = C*beta^2 - D*beta + F*kappa*alpha
//	mu dalpha/dmu = a*alpha - b*alpha^2 + c*kappa*beta
//
// and their analytic Jacobian. The independent variable is ln(mu).
type Field struct {
	p Params
}

func NewField(p Params) (*Field, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("flow coefficients: %w", ErrInvalidInput)
	}
	return &Field{p: p}, nil
}

func (f *Field) Params() Params { return f.p }

// Evaluate returns the flow derivatives at c. It is the checked variant
// of Derive and fails on non-finite input.
func (f *Field) Evaluate(c Coupling) (Coupling, error) {
	if !c.IsValid() {
		return Coupling{}, fmt.Errorf("coupling %v: %w", c, ErrInvalidInput)
	}
	return f.Derive(c), nil
}

// Derive returns the flow derivatives at c without input validation.
// Callers on hot paths (integrators, Newton loops) validate once up
// front and watch for overflow on the output instead.
func (f *Field) Derive(c Coupling) Coupling {
	k, b, a := c[Kappa], c[BetaCog], c[AlphaEnt]
	p := f.p
	return Coupling{
		p.A*k - p.B*k*k*k + p.E*b*a,
		p.C*b*b - p.D*b + p.F*k*a,
		p.SA*a - p.SB*a*a + p.SC*k*b,
	}
}

// Jacobian returns the closed-form partials of Derive at c. Analytic on
// purpose: the stability classification downstream must not inherit a
// finite-difference step error.
func (f *Field) Jacobian(c Coupling) Matrix {
	k, b, a := c[Kappa], c[BetaCog], c[AlphaEnt]
	p := f.p
	return Matrix{
		{p.A - 3*p.B*k*k, p.E * a, p.E * b},
		{p.F * a, 2*p.C*b - p.D, p.F * k},
		{p.SC * b, p.SC * k, p.SA - 2*p.SB*a},
	}
}
