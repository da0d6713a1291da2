package sofie

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zeff020/root/compute"
)

// convTranspose2DRef is an independent direct implementation: every input
// cell scatters a kernel-shaped patch into the output.
func convTranspose2DRef(x, w, bias []float32, batch, inCh, outChPG, group int,
	inH, inW, kH, kW, sH, sW, pH, pW, dH, dW int) []float32 {

	inChPG := inCh / group
	outCh := outChPG * group
	outH := sH*(inH-1) + (kH-1)*dH + 1 - 2*pH
	outW := sW*(inW-1) + (kW-1)*dW + 1 - 2*pW
	y := make([]float32, batch*outCh*outH*outW)

	for n := 0; n < batch; n++ {
		for g := 0; g < group; g++ {
			for cg := 0; cg < inChPG; cg++ {
				c := g*inChPG + cg
				for m := 0; m < outChPG; m++ {
					oc := g*outChPG + m
					for ih := 0; ih < inH; ih++ {
						for iw := 0; iw < inW; iw++ {
							xv := x[((n*inCh+c)*inH+ih)*inW+iw]
							for kh := 0; kh < kH; kh++ {
								for kw := 0; kw < kW; kw++ {
									oh := ih*sH - pH + kh*dH
									ow := iw*sW - pW + kw*dW
									if oh < 0 || oh >= outH || ow < 0 || ow >= outW {
										continue
									}
									wv := w[((c*outChPG+m)*kH+kh)*kW+kw]
									y[((n*outCh+oc)*outH+oh)*outW+ow] += xv * wv
								}
							}
						}
					}
				}
			}
		}
		if bias != nil {
			for oc := 0; oc < outCh; oc++ {
				for i := 0; i < outH*outW; i++ {
					y[(n*outCh+oc)*outH*outW+i] += bias[oc]
				}
			}
		}
	}
	return y
}

func planFor(t *testing.T, x, w Shape, attrs ConvTransposeAttrs, hasBias bool) *Plan {
	t.Helper()
	g, err := resolveConvTransposeGeometry(x, w, attrs, DTypeFloat32)
	require.NoError(t, err)
	return BuildPlan(g, hasBias)
}

func TestExecuteKnown1D(t *testing.T) {
	// x = [1 2], kernel of ones, length 3: scatter gives [1 3 3 2]
	p := planFor(t, Shape{1, 1, 2}, Shape{1, 1, 3}, ConvTransposeAttrs{}, false)
	y, err := p.Execute([]float32{1, 2}, []float32{1, 1, 1}, nil)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 3, 3, 2}, y)
}

func TestExecuteKnown2D(t *testing.T) {
	x := []float32{1, 2, 3, 4}
	w := []float32{1, 1, 1, 1}

	// stride 1: overlapping 2x2 patches
	p := planFor(t, Shape{1, 1, 2, 2}, Shape{1, 1, 2, 2}, ConvTransposeAttrs{}, false)
	y, err := p.Execute(x, w, nil)
	require.NoError(t, err)
	require.Equal(t, []float32{
		1, 3, 2,
		4, 10, 6,
		3, 7, 4,
	}, y)

	// stride 2: disjoint patches
	p = planFor(t, Shape{1, 1, 2, 2}, Shape{1, 1, 2, 2}, ConvTransposeAttrs{Strides: []int{2, 2}}, false)
	y, err = p.Execute(x, w, nil)
	require.NoError(t, err)
	require.Equal(t, []float32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, y)
}

func TestExecuteAgainstReference2D(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	cases := []struct {
		name                   string
		batch, inCh, outChPG   int
		group                  int
		inH, inW, kH, kW       int
		sH, sW, pH, pW, dH, dW int
		bias                   bool
	}{
		{"Plain", 1, 3, 2, 1, 8, 8, 3, 3, 1, 1, 0, 0, 1, 1, false},
		{"Stride2", 2, 2, 3, 1, 5, 6, 3, 3, 2, 2, 0, 0, 1, 1, true},
		{"Padded", 1, 2, 2, 1, 6, 6, 3, 3, 1, 1, 1, 1, 1, 1, false},
		{"Dilated", 1, 1, 2, 1, 7, 7, 3, 3, 1, 1, 0, 0, 2, 2, true},
		{"Grouped", 1, 4, 3, 2, 5, 5, 3, 3, 2, 2, 1, 1, 1, 1, true},
		{"Everything", 2, 6, 2, 3, 4, 5, 2, 3, 2, 3, 1, 0, 2, 1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outCh := tc.outChPG * tc.group
			x := make([]float32, tc.batch*tc.inCh*tc.inH*tc.inW)
			w := make([]float32, tc.inCh*tc.outChPG*tc.kH*tc.kW)
			for i := range x {
				x[i] = rng.Float32()*2 - 1
			}
			for i := range w {
				w[i] = rng.Float32()*2 - 1
			}
			var bias []float32
			if tc.bias {
				bias = make([]float32, outCh)
				for i := range bias {
					bias[i] = rng.Float32()
				}
			}

			attrs := ConvTransposeAttrs{
				Group:     tc.group,
				Strides:   []int{tc.sH, tc.sW},
				Dilations: []int{tc.dH, tc.dW},
				Pads:      []int{tc.pH, tc.pW, tc.pH, tc.pW},
			}
			p := planFor(t,
				Shape{tc.batch, tc.inCh, tc.inH, tc.inW},
				Shape{tc.inCh, tc.outChPG, tc.kH, tc.kW},
				attrs, tc.bias)

			got, err := p.Execute(x, w, bias)
			require.NoError(t, err)

			want := convTranspose2DRef(x, w, bias, tc.batch, tc.inCh, tc.outChPG, tc.group,
				tc.inH, tc.inW, tc.kH, tc.kW, tc.sH, tc.sW, tc.pH, tc.pW, tc.dH, tc.dW)

			res := compute.VerifyFloat32Array(want, got, compute.RelaxedTolerance())
			if res.NumErrors != 0 {
				t.Errorf("executor disagrees with reference: %s", res)
			}
		})
	}
}

func TestExecute3D(t *testing.T) {
	// Volume of ones through a kernel of ones counts the overlapping
	// patches; total output mass must be inVolume * kernelVolume.
	p := planFor(t, Shape{1, 1, 3, 3, 3}, Shape{1, 1, 2, 2, 2}, ConvTransposeAttrs{}, false)
	x := make([]float32, 27)
	for i := range x {
		x[i] = 1
	}
	w := make([]float32, 8)
	for i := range w {
		w[i] = 1
	}
	y, err := p.Execute(x, w, nil)
	require.NoError(t, err)
	require.Len(t, y, 4*4*4)

	var sum float32
	for _, v := range y {
		sum += v
	}
	require.InDelta(t, 27*8, sum, 1e-3)
}

func TestExecuteBufferChecks(t *testing.T) {
	p := planFor(t, Shape{1, 1, 2, 2}, Shape{1, 1, 2, 2}, ConvTransposeAttrs{}, true)

	_, err := p.Execute([]float32{1}, make([]float32, 4), make([]float32, 1))
	require.Error(t, err)

	_, err = p.Execute(make([]float32, 4), []float32{1}, make([]float32, 1))
	require.Error(t, err)

	_, err = p.Execute(make([]float32, 4), make([]float32, 4), nil)
	require.Error(t, err)
}
