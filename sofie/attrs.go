package sofie

import (
	"fmt"
)

// AutoPad selects the padding convention when explicit pads are absent
type AutoPad int

const (
	// AutoPadNotSet means padding comes from the Pads attribute (default
	// zero on every side)
	AutoPadNotSet AutoPad = iota
	// AutoPadSameUpper derives padding so the output spatial size equals
	// input*stride, putting the extra cell after when the total is odd
	AutoPadSameUpper
	// AutoPadSameLower is like SameUpper but puts the extra cell before
	AutoPadSameLower
	// AutoPadValid applies no padding
	AutoPadValid
)

// String returns the ONNX spelling of the mode
func (p AutoPad) String() string {
	switch p {
	case AutoPadSameUpper:
		return "SAME_UPPER"
	case AutoPadSameLower:
		return "SAME_LOWER"
	case AutoPadValid:
		return "VALID"
	default:
		return "NOTSET"
	}
}

// ParseAutoPad converts the ONNX spelling of the padding mode
func ParseAutoPad(s string) (AutoPad, error) {
	switch s {
	case "", "NOTSET":
		return AutoPadNotSet, nil
	case "SAME_UPPER":
		return AutoPadSameUpper, nil
	case "SAME_LOWER":
		return AutoPadSameLower, nil
	case "VALID":
		return AutoPadValid, nil
	default:
		return AutoPadNotSet, fmt.Errorf("unknown auto_pad mode %q", s)
	}
}

// ConvTransposeAttrs holds the declarative attribute record of a transposed
// convolution. Zero values mean "not specified" and resolve to the
// defaults: stride 1, dilation 1, no output padding, one group, kernel
// shape taken from the weight tensor.
type ConvTransposeAttrs struct {
	AutoPad       AutoPad
	Dilations     []int
	Group         int
	KernelShape   []int
	OutputPadding []int
	// OutputShape, when set, forces the spatial output size; padding is
	// derived from it
	OutputShape []int
	// Pads is [begin_0..begin_{d-1}, end_0..end_{d-1}]
	Pads    []int
	Strides []int
}

// normalized returns a copy with every vector expanded to the given spatial
// rank, or an error when an explicitly-set vector has the wrong length or
// an out-of-range value.
func (a ConvTransposeAttrs) normalized(spatialRank int) (ConvTransposeAttrs, error) {
	out := a

	fill := func(v []int, def, want int, name string) ([]int, error) {
		if v == nil {
			f := make([]int, want)
			for i := range f {
				f[i] = def
			}
			return f, nil
		}
		if len(v) != want {
			return nil, fmt.Errorf("%s has %d entries, want %d", name, len(v), want)
		}
		return append([]int(nil), v...), nil
	}

	var err error
	if out.Strides, err = fill(a.Strides, 1, spatialRank, "strides"); err != nil {
		return out, err
	}
	if out.Dilations, err = fill(a.Dilations, 1, spatialRank, "dilations"); err != nil {
		return out, err
	}
	if out.OutputPadding, err = fill(a.OutputPadding, 0, spatialRank, "output_padding"); err != nil {
		return out, err
	}
	if a.Pads != nil {
		if len(a.Pads) != 2*spatialRank {
			return out, fmt.Errorf("pads has %d entries, want %d", len(a.Pads), 2*spatialRank)
		}
		if a.AutoPad != AutoPadNotSet {
			return out, fmt.Errorf("pads and auto_pad %s are mutually exclusive", a.AutoPad)
		}
		out.Pads = append([]int(nil), a.Pads...)
	}
	if a.OutputShape != nil && len(a.OutputShape) != spatialRank {
		return out, fmt.Errorf("output_shape has %d entries, want %d", len(a.OutputShape), spatialRank)
	}

	if out.Group == 0 {
		out.Group = 1
	}
	if out.Group < 0 {
		return out, fmt.Errorf("group must be positive, got %d", out.Group)
	}
	for i := 0; i < spatialRank; i++ {
		if out.Strides[i] <= 0 {
			return out, fmt.Errorf("strides[%d] must be positive, got %d", i, out.Strides[i])
		}
		if out.Dilations[i] <= 0 {
			return out, fmt.Errorf("dilations[%d] must be positive, got %d", i, out.Dilations[i])
		}
		if out.OutputPadding[i] < 0 || out.OutputPadding[i] >= out.Strides[i] {
			return out, fmt.Errorf("output_padding[%d] = %d must be in [0, stride)", i, out.OutputPadding[i])
		}
	}
	for i, p := range out.Pads {
		if p < 0 {
			return out, fmt.Errorf("pads[%d] must be non-negative, got %d", i, p)
		}
	}
	return out, nil
}
