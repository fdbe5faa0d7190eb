package integrators

import (
	"math"

	"github.com/san-kum/rgflow/internal/flow"
)

// Dormand-Prince coefficients (RK45). The flow is autonomous, so the
// node abscissae are not needed, only the stage and output weights.
var (
	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is an embedded 4th/5th order Runge-Kutta step with a local
// truncation-error estimate. The flow is autonomous, so steps carry no
// explicit scale argument; h is the (signed) increment in ln(mu).
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 2.0,
	}
}

// StepTrial advances one trial step of size h and estimates its error
// against tol. It returns the candidate point, the scaled error ratio
// (the step is acceptable when errRatio <= 1), and the suggested next
// step size. h may be negative for reverse flow runs; the suggestion
// keeps its sign.
func (r *RK45) StepTrial(f *flow.Field, x flow.Coupling, h, tol float64) (flow.Coupling, float64, float64) {
	k1 := f.Derive(x)

	var x2 flow.Coupling
	for i := range x {
		x2[i] = x[i] + h*b21*k1[i]
	}
	k2 := f.Derive(x2)

	var x3 flow.Coupling
	for i := range x {
		x3[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3 := f.Derive(x3)

	var x4 flow.Coupling
	for i := range x {
		x4[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := f.Derive(x4)

	var x5 flow.Coupling
	for i := range x {
		x5[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := f.Derive(x5)

	var x6 flow.Coupling
	for i := range x {
		x6[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := f.Derive(x6)

	var xNew flow.Coupling
	for i := range x {
		xNew[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := f.Derive(xNew)

	errMax := 0.0
	for i := range x {
		errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(x[i]) + math.Abs(h*k1[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	errRatio := errMax / tol

	var hNext float64
	if errRatio > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		hNext = h * scale
	} else {
		if errRatio > 0 {
			scale := math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			hNext = h * scale
		} else {
			hNext = h * r.maxScale
		}
	}

	return xNew, errRatio, hNext
}
