package sofie

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Zeff020/root"
)

// convGeometry is the fully resolved per-axis geometry of one transposed
// convolution: every default filled in, auto padding derived and coerced to
// a single symmetric value per axis.
type convGeometry struct {
	dtype DType

	batch       int
	inChannels  int
	outChannels int
	group       int

	inSpatial  []int
	outSpatial []int
	kernel     []int
	strides    []int
	dilations  []int
	// pads holds one symmetric value per spatial axis. Asymmetric derived
	// padding has already been averaged here.
	pads []int

	// padCoerced marks axes whose derived padding was asymmetric and got
	// averaged
	padCoerced []int
}

func (g *convGeometry) spatialRank() int { return len(g.inSpatial) }

func (g *convGeometry) outputShape() Shape {
	s := make(Shape, 0, 2+len(g.outSpatial))
	s = append(s, g.batch, g.outChannels)
	s = append(s, g.outSpatial...)
	return s
}

// resolveConvTransposeGeometry derives the complete geometry from the input
// and weight shapes plus the attribute record. It is a pure function; the
// returned padCoerced axes are the caller's cue to emit a diagnostic.
func resolveConvTransposeGeometry(x, w Shape, attrs ConvTransposeAttrs, dtype DType) (*convGeometry, error) {
	const op = "ConvTranspose"

	if !dtype.IsFloat() {
		return nil, root.ErrNonFloat
	}
	if dtype != DTypeFloat32 {
		// The lowering, the compute kernels and the emitted code are all
		// float32; declaring wider tensors must fail here rather than
		// generate wrongly-typed buffers.
		return nil, root.NewConfigError(op,
			fmt.Sprintf("%s tensors are not supported, the lowering is float32 only", dtype), nil)
	}
	if x.Rank() < 3 || x.Rank() > 5 {
		return nil, root.NewShapeError(op,
			fmt.Sprintf("input rank %d outside the supported range [3,5]", x.Rank()),
			root.ErrUnsupportedRank)
	}
	if w.Rank() != x.Rank() {
		return nil, root.NewShapeError(op,
			fmt.Sprintf("weight rank %d does not match input rank %d", w.Rank(), x.Rank()), nil)
	}
	if !x.Valid() || !w.Valid() {
		return nil, root.NewShapeError(op, "tensor dimensions must be positive", nil)
	}

	spatialRank := x.Rank() - 2
	attrs, err := attrs.normalized(spatialRank)
	if err != nil {
		return nil, root.NewConfigError(op, "bad attributes", err)
	}

	inCh := x[1]
	if w[0] != inCh {
		return nil, root.NewShapeError(op,
			fmt.Sprintf("weight expects %d input channels, input has %d", w[0], inCh), nil)
	}
	if inCh%attrs.Group != 0 {
		return nil, root.NewConfigError(op,
			fmt.Sprintf("group %d does not divide input channels %d", attrs.Group, inCh),
			root.ErrBadGroup)
	}
	outCh := w[1] * attrs.Group

	kernel := attrs.KernelShape
	if kernel == nil {
		kernel = append([]int(nil), w.Spatial()...)
	} else {
		if len(kernel) != spatialRank {
			return nil, root.NewConfigError(op,
				fmt.Sprintf("kernel_shape has %d entries, want %d", len(kernel), spatialRank), nil)
		}
		if !Shape(kernel).Equal(w.Spatial()) {
			return nil, root.NewShapeError(op,
				fmt.Sprintf("kernel_shape %v disagrees with weight spatial dims %v", kernel, []int(w.Spatial())), nil)
		}
	}

	g := &convGeometry{
		dtype:       dtype,
		batch:       x[0],
		inChannels:  inCh,
		outChannels: outCh,
		group:       attrs.Group,
		inSpatial:   append([]int(nil), x.Spatial()...),
		kernel:      kernel,
		strides:     attrs.Strides,
		dilations:   attrs.Dilations,
		outSpatial:  make([]int, spatialRank),
		pads:        make([]int, spatialRank),
	}

	for a := 0; a < spatialRank; a++ {
		in := g.inSpatial[a]
		stride := g.strides[a]
		effK := (g.kernel[a]-1)*g.dilations[a] + 1
		full := stride*(in-1) + attrs.OutputPadding[a] + effK

		var begin, end, out int
		switch {
		case attrs.OutputShape != nil:
			out = attrs.OutputShape[a]
			total := full - out
			if total < 0 {
				return nil, root.NewConfigError(op,
					fmt.Sprintf("output_shape[%d] = %d exceeds the maximum reachable size %d", a, out, full), nil)
			}
			begin, end = splitPad(total, attrs.AutoPad)
		case attrs.AutoPad == AutoPadSameUpper || attrs.AutoPad == AutoPadSameLower:
			out = in * stride
			total := full - out
			if total < 0 {
				total = 0
			}
			begin, end = splitPad(total, attrs.AutoPad)
		default:
			// NOTSET with explicit or zero pads, or VALID
			if attrs.Pads != nil {
				begin = attrs.Pads[a]
				end = attrs.Pads[a+spatialRank]
			}
			out = full - begin - end
		}

		if out <= 0 {
			return nil, root.NewShapeError(op,
				fmt.Sprintf("derived output size %d on axis %d is not positive", out, a), nil)
		}

		g.outSpatial[a] = out
		if begin != end {
			// Downstream code only carries one pad value per axis. Average
			// the two sides and record the narrowing.
			g.pads[a] = (begin + end) / 2
			g.padCoerced = append(g.padCoerced, a)
		} else {
			g.pads[a] = begin
		}
	}

	return g, nil
}

// splitPad distributes a total padding amount over the two sides of an
// axis. SameLower puts the extra cell before; every other mode puts it
// after.
func splitPad(total int, mode AutoPad) (begin, end int) {
	if mode == AutoPadSameLower {
		end = total / 2
		return total - end, end
	}
	begin = total / 2
	return begin, total - begin
}

// ConvTranspose is the transposed-convolution operator: it upsamples the
// spatial dimensions of X by scattering stride-spaced copies of the kernel,
// lowered to one GEMM plus a col2im scatter per (batch, group).
type ConvTranspose struct {
	// XName, WName, BName name the input, weight and optional bias
	// tensors; YName names the produced output tensor
	XName, WName, BName, YName string

	Attrs ConvTransposeAttrs

	// resolved by Initialize
	geom *convGeometry
	plan *Plan
}

// NewConvTranspose builds the operator. bias may be empty.
func NewConvTranspose(x, w, bias, y string, attrs ConvTransposeAttrs) *ConvTranspose {
	return &ConvTranspose{XName: x, WName: w, BName: bias, YName: y, Attrs: attrs}
}

// OpType returns the operator type name
func (op *ConvTranspose) OpType() string { return "ConvTranspose" }

// Inputs returns the referenced input tensor names
func (op *ConvTranspose) Inputs() []string {
	in := []string{op.XName, op.WName}
	if op.BName != "" {
		in = append(in, op.BName)
	}
	return in
}

// Outputs returns the produced tensor names
func (op *ConvTranspose) Outputs() []string { return []string{op.YName} }

// ShapeInference maps the input shape list [X, W(, B)] to the output shape
// list [Y]. Pure: identical inputs always yield identical outputs.
func (op *ConvTranspose) ShapeInference(inputs []Shape) ([]Shape, error) {
	if len(inputs) < 2 {
		return nil, root.NewShapeError("ConvTranspose",
			fmt.Sprintf("need input and weight shapes, got %d shapes", len(inputs)), nil)
	}
	g, err := resolveConvTransposeGeometry(inputs[0], inputs[1], op.Attrs, DTypeFloat32)
	if err != nil {
		return nil, err
	}
	if len(inputs) >= 3 {
		if b := inputs[2]; b.Rank() != 1 || b[0] != g.outChannels {
			return nil, root.NewShapeError("ConvTranspose",
				fmt.Sprintf("bias shape %s does not match %d output channels", b, g.outChannels), nil)
		}
	}
	return []Shape{g.outputShape()}, nil
}

// Initialize resolves the operator against the enclosing model: every
// referenced tensor must already be declared, the geometry is derived, the
// lowering plan is built, and the output tensor is registered. Asymmetric
// derived padding is reported through the model logger and coerced to its
// average.
func (op *ConvTranspose) Initialize(m *Model) error {
	x, err := m.Tensor(op.XName)
	if err != nil {
		return err
	}
	w, err := m.Tensor(op.WName)
	if err != nil {
		return err
	}
	if x.DType != w.DType {
		return root.NewConfigError("ConvTranspose",
			fmt.Sprintf("input is %s but weight is %s", x.DType, w.DType), nil)
	}

	g, err := resolveConvTransposeGeometry(x.Shape, w.Shape, op.Attrs, x.DType)
	if err != nil {
		return err
	}
	for _, axis := range g.padCoerced {
		m.logger.Warn("asymmetric padding is not representable; averaging the two sides",
			zap.String("op", op.OpType()),
			zap.String("output", op.YName),
			zap.Int("axis", axis),
			zap.Int("pad", g.pads[axis]))
	}

	if op.BName != "" {
		b, err := m.Tensor(op.BName)
		if err != nil {
			return err
		}
		if b.Shape.Rank() != 1 || b.Shape[0] != g.outChannels {
			return root.NewShapeError("ConvTranspose",
				fmt.Sprintf("bias shape %s does not match %d output channels", b.Shape, g.outChannels), nil)
		}
	}

	op.geom = g
	op.plan = BuildPlan(g, op.BName != "")
	return m.registerIntermediate(op.YName, x.DType, g.outputShape())
}

// Plan returns the lowering plan. Only valid after Initialize.
func (op *ConvTranspose) Plan() *Plan { return op.plan }

// OutputShape returns the inferred output shape. Only valid after
// Initialize.
func (op *ConvTranspose) OutputShape() Shape {
	if op.geom == nil {
		return nil
	}
	return op.geom.outputShape()
}
