package flow

import "math"

// Matrix is a 3x3 real matrix in row-major order.
type Matrix [3][3]float64

func (m Matrix) Trace() float64 {
	return m[0][0] + m[1][1] + m[2][2]
}

func (m Matrix) Det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// MinorSum is the sum of the three principal 2x2 minors, the second
// invariant of the characteristic polynomial.
func (m Matrix) MinorSum() float64 {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0] +
		m[0][0]*m[2][2] - m[0][2]*m[2][0] +
		m[1][1]*m[2][2] - m[1][2]*m[2][1]
}

const pivotTiny = 1e-14

// Solve solves m*x = b by Gaussian elimination with partial pivoting.
// The second return is false when the matrix is numerically singular.
func (m Matrix) Solve(b Coupling) (Coupling, bool) {
	a := m
	x := b

	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < pivotTiny {
			return Coupling{}, false
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			x[pivot], x[col] = x[col], x[pivot]
		}

		for row := col + 1; row < 3; row++ {
			factor := a[row][col] / a[col][col]
			for j := col; j < 3; j++ {
				a[row][j] -= factor * a[col][j]
			}
			x[row] -= factor * x[col]
		}
	}

	for row := 2; row >= 0; row-- {
		sum := x[row]
		for j := row + 1; j < 3; j++ {
			sum -= a[row][j] * x[j]
		}
		x[row] = sum / a[row][row]
	}

	return x, true
}
