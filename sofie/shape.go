package sofie

import (
	"strconv"
	"strings"
)

// Shape is a tensor shape in row-major order. For the convolution family
// the layout convention is [batch, channels, spatial...].
type Shape []int

// Rank returns the number of dimensions
func (s Shape) Rank() int {
	return len(s)
}

// Size returns the total element count
func (s Shape) Size() int {
	size := 1
	for _, d := range s {
		size *= d
	}
	return size
}

// Spatial returns the spatial dimensions, i.e. everything past batch and
// channel. Only meaningful for rank >= 3.
func (s Shape) Spatial() Shape {
	if len(s) < 2 {
		return nil
	}
	return s[2:]
}

// Clone returns an independent copy
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	c := make(Shape, len(s))
	copy(c, s)
	return c
}

// Equal reports whether two shapes have identical dimensions
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i, d := range s {
		if d != o[i] {
			return false
		}
	}
	return true
}

// Valid reports whether every dimension is strictly positive
func (s Shape) Valid() bool {
	if len(s) == 0 {
		return false
	}
	for _, d := range s {
		if d <= 0 {
			return false
		}
	}
	return true
}

// String formats the shape as (d0,d1,...)
func (s Shape) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, d := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(d))
	}
	b.WriteByte(')')
	return b.String()
}

// prod multiplies an int slice; used for spatial and kernel volumes
func prod(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}
