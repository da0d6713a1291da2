package sofie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelYAML = `
name: upsample
package: generated
inputs:
  - name: X
    dtype: float32
    shape: [1, 3, 8, 8]
initializers:
  - name: W
    dtype: float32
    shape: [3, 2, 3, 3]
  - name: B
    dtype: float32
    shape: [2]
operators:
  - type: ConvTranspose
    inputs: [X, W, B]
    output: Y
    attrs:
      strides: [1, 1]
`

func TestParseModelDesc(t *testing.T) {
	d, err := ParseModelDesc([]byte(testModelYAML))
	require.NoError(t, err)
	assert.Equal(t, "upsample", d.Name)
	assert.Equal(t, "generated", d.Package)
	require.Len(t, d.Inputs, 1)
	require.Len(t, d.Initializers, 2)
	require.Len(t, d.Operators, 1)
	assert.Equal(t, []int{1, 1}, d.Operators[0].Attrs.Strides)
}

func TestModelDescBuildAndGenerate(t *testing.T) {
	d, err := ParseModelDesc([]byte(testModelYAML))
	require.NoError(t, err)

	m, err := d.Build()
	require.NoError(t, err)
	require.NoError(t, m.Initialize())

	y, err := m.Tensor("Y")
	require.NoError(t, err)
	assert.Equal(t, Shape{1, 2, 10, 10}, y.Shape)

	code, err := m.Generate()
	require.NoError(t, err)
	assert.Contains(t, code, "package generated")
	assert.Contains(t, code, "func UpsampleForward(")
}

func TestParseModelDescErrors(t *testing.T) {
	_, err := ParseModelDesc([]byte("::notyaml"))
	require.Error(t, err)

	_, err = ParseModelDesc([]byte("package: p\n"))
	require.Error(t, err) // missing name
}

func TestModelDescBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"UnsupportedOperator",
			"name: m\noperators:\n  - type: Conv\n    inputs: [X, W]\n    output: Y\n",
		},
		{
			"TooFewInputs",
			"name: m\noperators:\n  - type: ConvTranspose\n    inputs: [X]\n    output: Y\n",
		},
		{
			"BadDType",
			"name: m\ninputs:\n  - name: X\n    dtype: complex\n    shape: [1, 1, 4]\n",
		},
		{
			"BadAutoPad",
			"name: m\noperators:\n  - type: ConvTranspose\n    inputs: [X, W]\n    output: Y\n    attrs:\n      auto_pad: SOMETIMES\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseModelDesc([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = d.Build()
			require.Error(t, err)
		})
	}
}
