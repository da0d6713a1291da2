package vec3

import (
	"fmt"
	"math"
)

// Vector is a displacement vector whose components live in the
// coordinate representation C. The zero value is the origin.
type Vector[T Float, C System[T, C]] struct {
	Coords C
}

// New builds a vector in representation C from Cartesian components
func New[T Float, C System[T, C]](x, y, z T) Vector[T, C] {
	var c C
	return Vector[T, C]{Coords: c.FromXYZ(x, y, z)}
}

// X returns the Cartesian x component
func (v Vector[T, C]) X() T { x, _, _ := v.Coords.XYZ(); return x }

// Y returns the Cartesian y component
func (v Vector[T, C]) Y() T { _, y, _ := v.Coords.XYZ(); return y }

// Z returns the Cartesian z component
func (v Vector[T, C]) Z() T { _, _, z := v.Coords.XYZ(); return z }

// R returns the magnitude
func (v Vector[T, C]) R() T {
	x, y, z := v.Coords.XYZ()
	return T(math.Sqrt(float64(x*x + y*y + z*z)))
}

// Rho returns the transverse radius
func (v Vector[T, C]) Rho() T {
	x, y, _ := v.Coords.XYZ()
	return T(math.Sqrt(float64(x*x + y*y)))
}

// Theta returns the polar angle measured from the z axis
func (v Vector[T, C]) Theta() T {
	x, y, z := v.Coords.XYZ()
	r := math.Sqrt(float64(x*x + y*y + z*z))
	if r == 0 {
		return 0
	}
	return T(math.Acos(float64(z) / r))
}

// Phi returns the azimuthal angle in (-pi, pi]
func (v Vector[T, C]) Phi() T {
	x, y, _ := v.Coords.XYZ()
	if x == 0 && y == 0 {
		return 0
	}
	return T(math.Atan2(float64(y), float64(x)))
}

// Eta returns the pseudorapidity. On the beam axis the result is signed
// infinity, or zero for the origin.
func (v Vector[T, C]) Eta() T {
	x, y, z := v.Coords.XYZ()
	rho := math.Sqrt(float64(x*x + y*y))
	if rho == 0 {
		if z == 0 {
			return 0
		}
		return T(math.Copysign(math.Inf(1), float64(z)))
	}
	return T(math.Asinh(float64(z) / rho))
}

// Mag2 returns the squared magnitude
func (v Vector[T, C]) Mag2() T {
	x, y, z := v.Coords.XYZ()
	return x*x + y*y + z*z
}

// Scale returns the vector multiplied by a scalar
func (v Vector[T, C]) Scale(s T) Vector[T, C] {
	x, y, z := v.Coords.XYZ()
	return New[T, C](x*s, y*s, z*s)
}

// Neg returns the negated vector
func (v Vector[T, C]) Neg() Vector[T, C] {
	return v.Scale(-1)
}

// Unit returns the vector scaled to unit magnitude. The origin is
// returned unchanged.
func (v Vector[T, C]) Unit() Vector[T, C] {
	r := v.R()
	if r == 0 {
		return v
	}
	return v.Scale(1 / r)
}

// String formats the vector by its Cartesian components
func (v Vector[T, C]) String() string {
	x, y, z := v.Coords.XYZ()
	return fmt.Sprintf("(%v, %v, %v)", x, y, z)
}

// Convert re-expresses a vector in another coordinate representation.
// The Cartesian components are preserved up to rounding in the target
// representation.
func Convert[T Float, C2 System[T, C2], C1 System[T, C1]](v Vector[T, C1]) Vector[T, C2] {
	x, y, z := v.Coords.XYZ()
	return New[T, C2](x, y, z)
}

// Add returns a + b in a's representation. The operands may use
// different representations.
func Add[T Float, C1 System[T, C1], C2 System[T, C2]](a Vector[T, C1], b Vector[T, C2]) Vector[T, C1] {
	ax, ay, az := a.Coords.XYZ()
	bx, by, bz := b.Coords.XYZ()
	return New[T, C1](ax+bx, ay+by, az+bz)
}

// Sub returns a - b in a's representation
func Sub[T Float, C1 System[T, C1], C2 System[T, C2]](a Vector[T, C1], b Vector[T, C2]) Vector[T, C1] {
	ax, ay, az := a.Coords.XYZ()
	bx, by, bz := b.Coords.XYZ()
	return New[T, C1](ax-bx, ay-by, az-bz)
}

// Dot returns the scalar product of two vectors in any representations
func Dot[T Float, C1 System[T, C1], C2 System[T, C2]](a Vector[T, C1], b Vector[T, C2]) T {
	ax, ay, az := a.Coords.XYZ()
	bx, by, bz := b.Coords.XYZ()
	return ax*bx + ay*by + az*bz
}

// Cross returns the vector product a x b in a's representation
func Cross[T Float, C1 System[T, C1], C2 System[T, C2]](a Vector[T, C1], b Vector[T, C2]) Vector[T, C1] {
	ax, ay, az := a.Coords.XYZ()
	bx, by, bz := b.Coords.XYZ()
	return New[T, C1](ay*bz-az*by, az*bx-ax*bz, ax*by-ay*bx)
}
