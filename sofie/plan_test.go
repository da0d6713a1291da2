package sofie

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func mustGeometry(t *testing.T, x, w Shape, attrs ConvTransposeAttrs) *convGeometry {
	t.Helper()
	g, err := resolveConvTransposeGeometry(x, w, attrs, DTypeFloat32)
	require.NoError(t, err)
	return g
}

func TestBuildPlanSingleGroup(t *testing.T) {
	g := mustGeometry(t, Shape{1, 3, 8, 8}, Shape{3, 2, 3, 3}, ConvTransposeAttrs{})
	p := BuildPlan(g, false)

	require.Equal(t, Shape{1, 2, 10, 10}, p.OutputShape())
	require.Equal(t, 9, p.KernelVolume)
	require.Equal(t, 64, p.InVolume)
	require.Equal(t, 100, p.OutVolume)

	// col[18 x 64] = W^T[18 x 3] * X[3 x 64]
	require.Equal(t, 18, p.GemmM)
	require.Equal(t, 64, p.GemmN)
	require.Equal(t, 3, p.GemmK)
	require.Equal(t, 18*64, p.ColBufferSize())

	want := []Step{
		{Kind: StepMatMul, Batch: 0, Group: 0},
		{Kind: StepScatter, Batch: 0, Group: 0},
	}
	if diff := cmp.Diff(want, p.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPlanGroupsAndBias(t *testing.T) {
	g := mustGeometry(t, Shape{2, 4, 5, 5}, Shape{4, 3, 3, 3}, ConvTransposeAttrs{Group: 2})
	p := BuildPlan(g, true)

	require.Equal(t, Shape{2, 6, 7, 7}, p.OutputShape())
	// per-group GEMM: M = 3*9, K = 2
	require.Equal(t, 27, p.GemmM)
	require.Equal(t, 2, p.GemmK)

	inVol, outVol := 25, 49
	want := []Step{
		{Kind: StepMatMul, Batch: 0, Group: 0, XOffset: 0, WOffset: 0},
		{Kind: StepScatter, Batch: 0, Group: 0, YOffset: 0},
		{Kind: StepMatMul, Batch: 0, Group: 1, XOffset: 2 * inVol, WOffset: 2 * 27},
		{Kind: StepScatter, Batch: 0, Group: 1, YOffset: 3 * outVol},
		{Kind: StepBias, Batch: 0, Group: -1, YOffset: 0},
		{Kind: StepMatMul, Batch: 1, Group: 0, XOffset: 4 * inVol, WOffset: 0},
		{Kind: StepScatter, Batch: 1, Group: 0, YOffset: 6 * outVol},
		{Kind: StepMatMul, Batch: 1, Group: 1, XOffset: 6 * inVol, WOffset: 2 * 27},
		{Kind: StepScatter, Batch: 1, Group: 1, YOffset: 9 * outVol},
		{Kind: StepBias, Batch: 1, Group: -1, YOffset: 6 * outVol},
	}
	if diff := cmp.Diff(want, p.Steps); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPlanIsPure(t *testing.T) {
	g := mustGeometry(t, Shape{1, 2, 4, 4}, Shape{2, 2, 3, 3}, ConvTransposeAttrs{Strides: []int{2, 2}})
	p1 := BuildPlan(g, false)
	p2 := BuildPlan(g, false)
	if diff := cmp.Diff(p1, p2); diff != "" {
		t.Errorf("plans differ across identical builds:\n%s", diff)
	}
}
