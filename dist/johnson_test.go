package dist

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeff020/root"
)

func newTestJohnson(t *testing.T) *Johnson {
	t.Helper()
	j, err := NewJohnson(0, 2, 0.5, 1.5, math.Inf(-1), Range{-100, 100})
	require.NoError(t, err)
	return j
}

func TestNewJohnsonValidatesParameters(t *testing.T) {
	_, err := NewJohnson(0, 0, 0, 1, 0, Range{-1, 1})
	require.Error(t, err)
	assert.True(t, root.IsConfigError(err))

	_, err = NewJohnson(0, 1, 0, -2, 0, Range{-1, 1})
	require.Error(t, err)
	assert.True(t, root.IsConfigError(err))

	_, err = NewJohnson(0, 1, 0, 1, 0, Range{1, -1})
	require.Error(t, err)
}

func TestEvaluateNonNegative(t *testing.T) {
	j := newTestJohnson(t)
	for x := -50.0; x <= 50.0; x += 0.25 {
		if v := j.Evaluate(x); v < 0 {
			t.Fatalf("Evaluate(%g) = %g, want >= 0", x, v)
		}
	}
}

func TestEvaluateBelowThresholdIsZero(t *testing.T) {
	j, err := NewJohnson(1, 2, 0.5, 1.5, 0, Range{-100, 100})
	require.NoError(t, err)

	// threshold = 0, mass = -1 -> exactly 0
	assert.Equal(t, 0.0, j.Evaluate(-1))
	assert.Equal(t, 0.0, j.Evaluate(-1e10))
	assert.Greater(t, j.Evaluate(1), 0.0)
}

func TestFullLineIntegralIsOne(t *testing.T) {
	j := newTestJohnson(t)
	integral, err := j.AnalyticalIntegral(IntMass, Range{-1e300, 1e300})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, integral, 1e-10)
}

func TestIntegralMatchesNumericQuadrature(t *testing.T) {
	j := newTestJohnson(t)

	cases := []Range{{-5, 5}, {-20, 0}, {0, 3}, {-1, 1}}
	for _, r := range cases {
		analytic, err := j.AnalyticalIntegral(IntMass, r)
		require.NoError(t, err)

		// Trapezoidal quadrature of the density
		const n = 200000
		h := (r.Max - r.Min) / n
		sum := 0.5 * (j.Evaluate(r.Min) + j.Evaluate(r.Max))
		for i := 1; i < n; i++ {
			sum += j.Evaluate(r.Min + float64(i)*h)
		}
		numeric := sum * h

		assert.InDeltaf(t, numeric, analytic, 1e-6, "range [%g, %g]", r.Min, r.Max)
	}
}

func TestIntegralAdditivity(t *testing.T) {
	j := newTestJohnson(t)
	whole, err := j.AnalyticalIntegral(IntMass, Range{-10, 10})
	require.NoError(t, err)
	left, err := j.AnalyticalIntegral(IntMass, Range{-10, 2})
	require.NoError(t, err)
	right, err := j.AnalyticalIntegral(IntMass, Range{2, 10})
	require.NoError(t, err)
	assert.InDelta(t, whole, left+right, 1e-12)
}

func TestAnalyticalIntegralCodes(t *testing.T) {
	j := newTestJohnson(t)
	for _, v := range []string{"mass", "mu", "lambda", "gamma", "delta"} {
		code, ok := j.AnalyticalIntegralCode(v)
		assert.True(t, ok, v)
		assert.NotEqual(t, IntNone, code, v)
	}
	_, ok := j.AnalyticalIntegralCode("sigma")
	assert.False(t, ok)

	_, err := j.AnalyticalIntegral(IntNone, Range{0, 1})
	require.Error(t, err)
}

func TestParameterIntegralsArePositive(t *testing.T) {
	j := newTestJohnson(t)
	j.SetMass(1.5)
	for _, code := range []IntegralCode{IntMu, IntGamma, IntDelta} {
		v, err := j.AnalyticalIntegral(code, Range{0.5, 2.5})
		require.NoError(t, err)
		assert.Greater(t, v, 0.0, "code %d", code)
	}
}

func TestGeneratorAdvertisement(t *testing.T) {
	j := newTestJohnson(t)
	assert.Equal(t, 1, j.GeneratorCode("mass"))
	assert.Equal(t, 0, j.GeneratorCode("mu"))
}

func TestGenerateEventRespectsConstraints(t *testing.T) {
	j, err := NewJohnson(0, 2, 0.5, 1.5, 0.25, Range{-10, 10})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 5000; i++ {
		require.NoError(t, j.GenerateEvent(1, rng))
		m := j.Mass()
		if m < 0.25 || m > 10 {
			t.Fatalf("generated mass %g outside [threshold, max]", m)
		}
	}
}

func TestGenerateEventUnsupportedCode(t *testing.T) {
	j := newTestJohnson(t)
	err := j.GenerateEvent(2, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, root.IsNotImplementedError(err))
}

func TestGeneratedSampleMatchesDensity(t *testing.T) {
	// Compare the empirical CDF of generated events at a few probe points
	// with the analytic integral.
	j := newTestJohnson(t)
	rng := rand.New(rand.NewSource(99))

	const n = 200000
	samples := make([]float64, n)
	for i := range samples {
		require.NoError(t, j.GenerateEvent(1, rng))
		samples[i] = j.Mass()
	}

	for _, probe := range []float64{-3, -1, 0, 1, 3} {
		count := 0
		for _, s := range samples {
			if s <= probe {
				count++
			}
		}
		empirical := float64(count) / n

		analytic, err := j.AnalyticalIntegral(IntMass, Range{-100, probe})
		require.NoError(t, err)
		// The range clips almost nothing for these parameters, so the
		// normalization over [-100, 100] is ~1.
		assert.InDeltaf(t, analytic, empirical, 0.01, "probe %g", probe)
	}
}

func TestMaxValueBoundsDensity(t *testing.T) {
	j := newTestJohnson(t)
	ceiling := j.MaxValue()
	for x := -50.0; x <= 50.0; x += 0.1 {
		if v := j.Evaluate(x); v > ceiling {
			t.Fatalf("Evaluate(%g) = %g exceeds ceiling %g", x, v, ceiling)
		}
	}
}
