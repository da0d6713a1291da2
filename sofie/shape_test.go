package sofie

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeHelpers(t *testing.T) {
	s := Shape{1, 3, 8, 8}
	assert.Equal(t, 4, s.Rank())
	assert.Equal(t, 192, s.Size())
	assert.Equal(t, Shape{8, 8}, s.Spatial())
	assert.Equal(t, "(1,3,8,8)", s.String())
	assert.True(t, s.Valid())

	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 1, s[0])

	assert.True(t, s.Equal(Shape{1, 3, 8, 8}))
	assert.False(t, s.Equal(Shape{1, 3, 8}))
	assert.False(t, s.Equal(Shape{1, 3, 8, 9}))

	assert.False(t, Shape{}.Valid())
	assert.False(t, Shape{1, 0, 4}.Valid())
}

func TestParseDType(t *testing.T) {
	for in, want := range map[string]DType{
		"float32": DTypeFloat32,
		"float":   DTypeFloat32,
		"float64": DTypeFloat64,
		"double":  DTypeFloat64,
		"int64":   DTypeInt64,
	} {
		got, err := ParseDType(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDType("bfloat16")
	assert.Error(t, err)
}

func TestParseAutoPad(t *testing.T) {
	for in, want := range map[string]AutoPad{
		"":           AutoPadNotSet,
		"NOTSET":     AutoPadNotSet,
		"SAME_UPPER": AutoPadSameUpper,
		"SAME_LOWER": AutoPadSameLower,
		"VALID":      AutoPadValid,
	} {
		got, err := ParseAutoPad(in)
		assert.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAutoPad("same_upper")
	assert.Error(t, err)
}
