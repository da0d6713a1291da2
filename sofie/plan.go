package sofie

// StepKind discriminates the lowering steps of a Plan
type StepKind int

const (
	// StepMatMul multiplies the transposed group weight matrix with the
	// group input slice, producing the column matrix
	StepMatMul StepKind = iota
	// StepScatter accumulates the column matrix into the output tensor
	// (the im2col dual: gather becomes scatter-add)
	StepScatter
	// StepBias broadcasts the bias vector over the output spatial cells
	StepBias
)

// String names the step kind
func (k StepKind) String() string {
	switch k {
	case StepMatMul:
		return "MatMul"
	case StepScatter:
		return "Scatter"
	case StepBias:
		return "Bias"
	default:
		return "Unknown"
	}
}

// Step is one unit of work in a Plan. Offsets index the flattened float32
// buffers of the involved tensors.
type Step struct {
	Kind StepKind

	// Batch and Group identify the slice this step works on. Group is -1
	// for bias steps, which cover all channels of a batch entry.
	Batch int
	Group int

	// XOffset is the start of the group input slice (MatMul steps)
	XOffset int
	// WOffset is the start of the group weight block (MatMul steps)
	WOffset int
	// YOffset is the start of the written output region (Scatter and Bias
	// steps)
	YOffset int
}

// Plan is the intermediate representation of one transposed convolution:
// the fully resolved geometry plus the ordered gather/multiply/scatter
// steps that implement it. A Plan is a pure value; building it emits no
// code and touches no tensor data, so planning is unit-testable on its own
// and both the renderer and the native executor consume the same Plan.
type Plan struct {
	DType DType

	Batch       int
	Group       int
	InChannels  int
	OutChannels int

	InSpatial  []int
	OutSpatial []int
	Kernel     []int
	Strides    []int
	Dilations  []int
	// Pads holds the single symmetric padding value per spatial axis
	Pads []int

	// Derived sizes
	KernelVolume int // product of kernel dims
	InVolume     int // per-channel input spatial size
	OutVolume    int // per-channel output spatial size

	// Per-group GEMM dimensions: col[M x N] = W_g^T[M x K] * X_g[K x N]
	GemmM, GemmN, GemmK int

	HasBias bool

	Steps []Step
}

// OutputShape returns the full output tensor shape of the plan
func (p *Plan) OutputShape() Shape {
	s := make(Shape, 0, 2+len(p.OutSpatial))
	s = append(s, p.Batch, p.OutChannels)
	s = append(s, p.OutSpatial...)
	return s
}

// ColBufferSize returns the scratch element count needed for the column
// matrix of one (batch, group) slice
func (p *Plan) ColBufferSize() int {
	return p.GemmM * p.GemmN
}

// BuildPlan lowers a resolved geometry to the step sequence. For every
// batch entry: one MatMul and one Scatter per group, then a Bias step when
// a bias tensor is present.
func BuildPlan(g *convGeometry, hasBias bool) *Plan {
	inChPerGroup := g.inChannels / g.group
	outChPerGroup := g.outChannels / g.group
	kernelVol := prod(g.kernel)
	inVol := prod(g.inSpatial)
	outVol := prod(g.outSpatial)

	p := &Plan{
		DType:        g.dtype,
		Batch:        g.batch,
		Group:        g.group,
		InChannels:   g.inChannels,
		OutChannels:  g.outChannels,
		InSpatial:    append([]int(nil), g.inSpatial...),
		OutSpatial:   append([]int(nil), g.outSpatial...),
		Kernel:       append([]int(nil), g.kernel...),
		Strides:      append([]int(nil), g.strides...),
		Dilations:    append([]int(nil), g.dilations...),
		Pads:         append([]int(nil), g.pads...),
		KernelVolume: kernelVol,
		InVolume:     inVol,
		OutVolume:    outVol,
		GemmM:        outChPerGroup * kernelVol,
		GemmN:        inVol,
		GemmK:        inChPerGroup,
		HasBias:      hasBias,
	}

	for n := 0; n < g.batch; n++ {
		for grp := 0; grp < g.group; grp++ {
			xOff := (n*g.inChannels + grp*inChPerGroup) * inVol
			wOff := grp * inChPerGroup * outChPerGroup * kernelVol
			yOff := (n*g.outChannels + grp*outChPerGroup) * outVol
			p.Steps = append(p.Steps,
				Step{Kind: StepMatMul, Batch: n, Group: grp, XOffset: xOff, WOffset: wOff},
				Step{Kind: StepScatter, Batch: n, Group: grp, YOffset: yOff},
			)
		}
		if hasBias {
			p.Steps = append(p.Steps, Step{
				Kind:    StepBias,
				Batch:   n,
				Group:   -1,
				YOffset: n * g.outChannels * outVol,
			})
		}
	}
	return p
}
