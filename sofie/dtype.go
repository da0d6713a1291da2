package sofie

import (
	"fmt"
)

// DType identifies the element type of a tensor
type DType int

const (
	// DTypeUnknown is the zero value; tensors must be declared with a
	// concrete type
	DTypeUnknown DType = iota
	// DTypeFloat32 is the only type the generated kernels operate on
	DTypeFloat32
	// DTypeFloat64 is accepted in declarations but not by ConvTranspose
	DTypeFloat64
	// DTypeInt64 appears in shape tensors only
	DTypeInt64
)

// String returns the Go spelling of the element type
func (d DType) String() string {
	switch d {
	case DTypeFloat32:
		return "float32"
	case DTypeFloat64:
		return "float64"
	case DTypeInt64:
		return "int64"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the type is a floating-point type
func (d DType) IsFloat() bool {
	return d == DTypeFloat32 || d == DTypeFloat64
}

// ParseDType converts a textual type name as found in model descriptions
func ParseDType(s string) (DType, error) {
	switch s {
	case "float32", "float":
		return DTypeFloat32, nil
	case "float64", "double":
		return DTypeFloat64, nil
	case "int64":
		return DTypeInt64, nil
	default:
		return DTypeUnknown, fmt.Errorf("unknown dtype %q", s)
	}
}
