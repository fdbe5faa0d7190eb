package integrators

import "github.com/san-kum/rgflow/internal/flow"

// RK4 is the classic fixed-step 4th order scheme. The live viewer uses
// it for cheap constant-rate stepping; trajectory integration goes
// through RK45.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(f *flow.Field, x flow.Coupling, h float64) flow.Coupling {
	k1 := f.Derive(x)

	var scratch flow.Coupling
	for i := range x {
		scratch[i] = x[i] + h*0.5*k1[i]
	}
	k2 := f.Derive(scratch)

	for i := range x {
		scratch[i] = x[i] + h*0.5*k2[i]
	}
	k3 := f.Derive(scratch)

	for i := range x {
		scratch[i] = x[i] + h*k3[i]
	}
	k4 := f.Derive(scratch)

	var result flow.Coupling
	h6 := h / 6.0
	for i := range x {
		result[i] = x[i] + h6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}

	return result
}
