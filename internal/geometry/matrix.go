package geometry

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularMatrix is returned when a 3x3 system has no unique solution.
var ErrSingularMatrix = errors.New("singular matrix")

// Matrix3x3 is a row-major 3x3 matrix.
type Matrix3x3 [9]float64

// Identity3x3 returns the identity matrix.
func Identity3x3() Matrix3x3 {
	return Matrix3x3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// NewMatrix3x3FromColumns builds a matrix whose columns are a, b and c.
func NewMatrix3x3FromColumns(a, b, c Vector3D) Matrix3x3 {
	return Matrix3x3{
		a.X, b.X, c.X,
		a.Y, b.Y, c.Y,
		a.Z, b.Z, c.Z,
	}
}

// At returns the element at row i, column j.
func (m Matrix3x3) At(i, j int) float64 { return m[i*3+j] }

// Det returns the determinant.
func (m Matrix3x3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Transpose returns the transposed matrix.
func (m Matrix3x3) Transpose() Matrix3x3 {
	return Matrix3x3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// MulVec returns m·v.
func (m Matrix3x3) MulVec(v Vector3D) Vector3D {
	return Vector3D{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Inverse returns m⁻¹. Singular or numerically ill-conditioned matrices yield
// ErrSingularMatrix.
func (m Matrix3x3) Inverse() (Matrix3x3, error) {
	a := mat.NewDense(3, 3, m[:])
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return Matrix3x3{}, fmt.Errorf("invert %v: %w", m, ErrSingularMatrix)
	}
	var out Matrix3x3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i*3+j] = inv.At(i, j)
		}
	}
	return out, nil
}

// Solve returns x such that m·x = b.
func (m Matrix3x3) Solve(b Vector3D) (Vector3D, error) {
	inv, err := m.Inverse()
	if err != nil {
		return Vector3D{}, err
	}
	return inv.MulVec(b), nil
}
