// Package flow provides the core primitives for the renormalization-group
// flow of the three coupling constants (kappa, beta_cog, alpha_ent).
//
// The package defines the fundamental types shared by every other package:
//
//   - [Coupling]: the ordered coupling triple
//   - [Params]: the nine flow coefficients
//   - [Field]: analytic evaluator of the flow equations and their Jacobian
//   - [Trajectory]: a sampled flow run across the scale parameter
//   - [FixedPoint]: a zero of the field together with its residual
//
// # Example
//
//	f, _ := flow.NewField(params)
//	d, _ := f.Evaluate(flow.Coupling{0.5, 0.1, 0.1})
//	j := f.Jacobian(flow.Coupling{0.5, 0.1, 0.1})
//
// # Thread Safety
//
// Field is immutable after construction and safe for concurrent use.
// Trajectory and FixedPoint values are owned by the caller once returned.
package flow
