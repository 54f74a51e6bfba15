// Package linalg provides the numeric kernels shared by the geometry and
// transform packages: SVD-backed least squares, small-matrix determinants
// and inverses, and planar/spatial vector operations.
package linalg

import "math"

// Eps is the double precision machine epsilon.
const Eps = 2.220446049250313e-16

// Module returns the Euclidean norm of the planar vector (x, y).
func Module(x, y float64) float64 {
	return math.Hypot(x, y)
}

// Module3 returns the Euclidean norm of the spatial vector (x, y, z).
func Module3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// Dot returns the dot product of two planar vectors.
func Dot(x1, y1, x2, y2 float64) float64 {
	return x1*x2 + y1*y2
}

// Cross2 returns the z component of the cross product of two planar
// vectors. Its sign gives the turn direction from (x1,y1) to (x2,y2).
func Cross2(x1, y1, x2, y2 float64) float64 {
	return x1*y2 - y1*x2
}

// Cross3 returns the cross product of two spatial vectors.
func Cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// AngleOX returns the angle between the vector (x, y) and the X axis,
// in (-π, π].
func AngleOX(x, y float64) float64 {
	return math.Atan2(y, x)
}

// AngleOY returns the angle between the vector (x, y) and the Y axis,
// in (-π, π].
func AngleOY(x, y float64) float64 {
	return math.Atan2(x, y)
}

// Azimut returns the angle from the Y axis (north) to the vector (x, y),
// normalized to [0, 2π).
func Azimut(x, y float64) float64 {
	az := math.Atan2(x, y)
	if az < 0 {
		az += 2 * math.Pi
	}
	return az
}
