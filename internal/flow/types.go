package flow

import "math"

// Indices into a Coupling vector.
const (
	Kappa = iota
	BetaCog
	AlphaEnt
)

// Names of the coupling components, indexed by Kappa, BetaCog, AlphaEnt.
var Names = [3]string{"kappa", "beta_cog", "alpha_ent"}

// Coupling is the ordered triple (kappa, beta_cog, alpha_ent).
type Coupling [3]float64

func (c Coupling) IsValid() bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (c Coupling) Norm() float64 {
	sum := 0.0
	for _, v := range c {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (c Coupling) Add(other Coupling) Coupling {
	for i := range c {
		c[i] += other[i]
	}
	return c
}

func (c Coupling) Sub(other Coupling) Coupling {
	for i := range c {
		c[i] -= other[i]
	}
	return c
}

func (c Coupling) Scale(factor float64) Coupling {
	for i := range c {
		c[i] *= factor
	}
	return c
}

// MaxAbs returns the largest component magnitude.
func (c Coupling) MaxAbs() float64 {
	m := 0.0
	for _, v := range c {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

// Less orders couplings lexicographically by component.
func (c Coupling) Less(other Coupling) bool {
	for i := range c {
		if c[i] != other[i] {
			return c[i] < other[i]
		}
	}
	return false
}

// Params holds the nine flow coefficients. The mapping to the flow
// equations is
//
//	mu dkappa/dmu    = A*kappa - B*kappa^3 + E*beta*alpha
//	mu dbeta/dmu     = C*beta^2 - D*beta + F*kappa*alpha
//	mu dalpha/dmu    = a*alpha - b*alpha^2 + c*kappa*beta
//
// where SA, SB, SC are the lowercase a, b, c coefficients of the
// alpha_ent equation. No canonical values exist for any coefficient;
// they are always caller-supplied.
type Params struct {
	A  float64 `json:"A" yaml:"A"`
	B  float64 `json:"B" yaml:"B"`
	E  float64 `json:"E" yaml:"E"`
	C  float64 `json:"C" yaml:"C"`
	D  float64 `json:"D" yaml:"D"`
	F  float64 `json:"F" yaml:"F"`
	SA float64 `json:"a" yaml:"a"`
	SB float64 `json:"b" yaml:"b"`
	SC float64 `json:"c" yaml:"c"`
}

func (p Params) IsValid() bool {
	for _, v := range [...]float64{p.A, p.B, p.E, p.C, p.D, p.F, p.SA, p.SB, p.SC} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sample is one trajectory point: the couplings at scale Mu.
type Sample struct {
	Mu    float64
	Point Coupling
}

// Stop reasons recorded on a Trajectory.
const (
	StopCompleted  = "completed"
	StopDiverged   = "diverged"
	StopStepBudget = "step-budget"
	StopStiff      = "stiff"
	StopCanceled   = "canceled"
)

// Trajectory is an ordered sequence of samples, monotone in scale
// (increasing for forward runs, decreasing for reverse runs). Truncated
// marks runs that halted before reaching the end of the scale interval;
// Reason says why. A diverged flow is a reportable outcome, not an error.
type Trajectory struct {
	Samples   []Sample
	Truncated bool
	Reason    string
	Steps     int // accepted steps
	Rejected  int // rejected trial steps
}

// Last returns the final sample. Valid only for non-empty trajectories.
func (t *Trajectory) Last() Sample {
	return t.Samples[len(t.Samples)-1]
}

// FixedPoint is a zero of the flow field. Residual is the field norm at
// which the point was accepted; Seed records which seed converged to it.
type FixedPoint struct {
	Point    Coupling
	Residual float64
	Seed     Coupling
}
