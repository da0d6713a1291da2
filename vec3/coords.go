// Package vec3 provides displacement vectors in three dimensions over
// interchangeable coordinate representations: Cartesian (x, y, z), polar
// (r, theta, phi) and cylindrical-eta (rho, eta, phi). Any representation
// converts to any other, and the vector operations (dot, cross, addition,
// scaling) mix representations freely, converting through Cartesian form.
package vec3

import (
	"math"
)

// Float constrains the scalar type of a coordinate system
type Float interface {
	~float32 | ~float64
}

// System is the contract a coordinate representation fulfils: it can
// report its Cartesian components and construct itself from them. The C
// parameter is the implementing type itself.
type System[T Float, C any] interface {
	// XYZ returns the Cartesian components
	XYZ() (x, y, z T)
	// FromXYZ builds a value of this representation from Cartesian
	// components
	FromXYZ(x, y, z T) C
}

// Cartesian3D stores x, y, z
type Cartesian3D[T Float] struct {
	X, Y, Z T
}

// XYZ returns the Cartesian components
func (c Cartesian3D[T]) XYZ() (T, T, T) { return c.X, c.Y, c.Z }

// FromXYZ builds Cartesian coordinates; the identity representation
func (Cartesian3D[T]) FromXYZ(x, y, z T) Cartesian3D[T] {
	return Cartesian3D[T]{X: x, Y: y, Z: z}
}

// Mag2 returns the squared magnitude
func (c Cartesian3D[T]) Mag2() T { return c.X*c.X + c.Y*c.Y + c.Z*c.Z }

// Perp2 returns the squared transverse component
func (c Cartesian3D[T]) Perp2() T { return c.X*c.X + c.Y*c.Y }

// Polar3D stores r, theta (polar angle from the z axis) and phi
// (azimuth)
type Polar3D[T Float] struct {
	R, Theta, Phi T
}

// XYZ returns the Cartesian components
func (p Polar3D[T]) XYZ() (T, T, T) {
	st, ct := math.Sincos(float64(p.Theta))
	sp, cp := math.Sincos(float64(p.Phi))
	r := float64(p.R)
	return T(r * st * cp), T(r * st * sp), T(r * ct)
}

// FromXYZ builds polar coordinates from Cartesian components
func (Polar3D[T]) FromXYZ(x, y, z T) Polar3D[T] {
	fx, fy, fz := float64(x), float64(y), float64(z)
	r := math.Sqrt(fx*fx + fy*fy + fz*fz)
	var theta, phi float64
	if r > 0 {
		theta = math.Acos(fz / r)
	}
	if fx != 0 || fy != 0 {
		phi = math.Atan2(fy, fx)
	}
	return Polar3D[T]{R: T(r), Theta: T(theta), Phi: T(phi)}
}

// Mag2 returns the squared magnitude
func (p Polar3D[T]) Mag2() T { return p.R * p.R }

// CylindricalEta3D stores rho (transverse radius), eta (pseudorapidity)
// and phi (azimuth)
type CylindricalEta3D[T Float] struct {
	Rho, Eta, Phi T
}

// XYZ returns the Cartesian components
func (c CylindricalEta3D[T]) XYZ() (T, T, T) {
	sp, cp := math.Sincos(float64(c.Phi))
	rho := float64(c.Rho)
	z := rho * math.Sinh(float64(c.Eta))
	return T(rho * cp), T(rho * sp), T(z)
}

// FromXYZ builds cylindrical-eta coordinates from Cartesian components
func (CylindricalEta3D[T]) FromXYZ(x, y, z T) CylindricalEta3D[T] {
	fx, fy, fz := float64(x), float64(y), float64(z)
	rho := math.Sqrt(fx*fx + fy*fy)
	var eta, phi float64
	if rho > 0 {
		eta = math.Asinh(fz / rho)
	} else if fz != 0 {
		// On the beam axis eta diverges; keep the sign and saturate.
		eta = math.Copysign(math.Inf(1), fz)
	}
	if fx != 0 || fy != 0 {
		phi = math.Atan2(fy, fx)
	}
	return CylindricalEta3D[T]{Rho: T(rho), Eta: T(eta), Phi: T(phi)}
}

// Perp2 returns the squared transverse component
func (c CylindricalEta3D[T]) Perp2() T { return c.Rho * c.Rho }
