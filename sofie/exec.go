package sofie

import (
	"fmt"

	"github.com/Zeff020/root"
	"github.com/Zeff020/root/compute"
)

// Execute runs the plan natively on float32 buffers, without any generated
// code: the same steps the renderer prints are interpreted against the
// compute kernels. bias may be nil when the plan has no bias step.
func (p *Plan) Execute(x, w, bias []float32) ([]float32, error) {
	const op = "Plan.Execute"

	if want := p.Batch * p.InChannels * p.InVolume; len(x) < want {
		return nil, root.NewShapeError(op,
			fmt.Sprintf("input buffer has %d elements, want %d", len(x), want), nil)
	}
	if want := p.InChannels * (p.OutChannels / p.Group) * p.KernelVolume; len(w) < want {
		return nil, root.NewShapeError(op,
			fmt.Sprintf("weight buffer has %d elements, want %d", len(w), want), nil)
	}
	if p.HasBias && len(bias) < p.OutChannels {
		return nil, root.NewShapeError(op,
			fmt.Sprintf("bias buffer has %d elements, want %d", len(bias), p.OutChannels), nil)
	}

	y := make([]float32, p.Batch*p.OutChannels*p.OutVolume)
	col := make([]float32, p.ColBufferSize())

	for _, s := range p.Steps {
		switch s.Kind {
		case StepMatMul:
			compute.Sgemm(compute.Trans, compute.NoTrans,
				p.GemmM, p.GemmN, p.GemmK, 1,
				w[s.WOffset:], p.GemmM,
				x[s.XOffset:], p.GemmN,
				0, col, p.GemmN)
		case StepScatter:
			p.scatter(col, y[s.YOffset:])
		case StepBias:
			for c := 0; c < p.OutChannels; c++ {
				compute.Saxpy(p.OutVolume, 1, bias[c:c+1], 0,
					y[s.YOffset+c*p.OutVolume:], 1)
			}
		default:
			return nil, root.NewCodegenError(op, fmt.Sprintf("unknown step kind %v", s.Kind), nil)
		}
	}
	return y, nil
}

// scatter accumulates one (batch, group) column matrix into the output
// slice: col[m*KV+k, i] is added at the spatial cell o = i*stride - pad +
// k*dilation, skipping out-of-range targets. This is the col2im dual of
// the im2col gather.
func (p *Plan) scatter(col, out []float32) {
	d := len(p.InSpatial)
	outChPG := p.OutChannels / p.Group

	k := make([]int, d)
	in := make([]int, d)
	o := make([]int, d)

	for m := 0; m < outChPG; m++ {
		for a := range k {
			k[a] = 0
		}
		for kIdx := 0; kIdx < p.KernelVolume; kIdx++ {
			row := (m*p.KernelVolume + kIdx) * p.GemmN

			for a := range in {
				in[a] = 0
			}
			for iIdx := 0; iIdx < p.InVolume; iIdx++ {
				ok := true
				for a := 0; a < d; a++ {
					o[a] = in[a]*p.Strides[a] - p.Pads[a] + k[a]*p.Dilations[a]
					if o[a] < 0 || o[a] >= p.OutSpatial[a] {
						ok = false
						break
					}
				}
				if ok {
					oIdx := 0
					for a := 0; a < d; a++ {
						oIdx = oIdx*p.OutSpatial[a] + o[a]
					}
					out[m*p.OutVolume+oIdx] += col[row+iIdx]
				}
				odometer(in, p.InSpatial)
			}
			odometer(k, p.Kernel)
		}
	}
}

// odometer advances a row-major multi-index by one position
func odometer(idx, dims []int) {
	for a := len(idx) - 1; a >= 0; a-- {
		idx[a]++
		if idx[a] < dims[a] {
			return
		}
		idx[a] = 0
	}
}
