package linalg

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RotationX returns the 3x3 rotation matrix for an angle about the X axis.
func RotationX(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// RotationY returns the 3x3 rotation matrix for an angle about the Y axis.
func RotationY(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// RotationZ returns the 3x3 rotation matrix for an angle about the Z axis.
func RotationZ(theta float64) *mat.Dense {
	s, c := math.Sincos(theta)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// RotationEuler composes the rotation matrix R = Rz(kappa) Ry(phi) Rx(omega)
// from the three Euler angles.
func RotationEuler(omega, phi, kappa float64) *mat.Dense {
	var rzy, r mat.Dense
	rzy.Mul(RotationZ(kappa), RotationY(phi))
	r.Mul(&rzy, RotationX(omega))
	return &r
}
