package foam

import "context"

// PDF is a one-dimensional density with a ceiling hint, the surface the
// dist package exposes. PDFDensity adapts it to the engine.
type PDF interface {
	// Evaluate returns the density at x
	Evaluate(x float64) float64
	// MaxValue returns an upper bound of the density over its range
	MaxValue() float64
}

// PDFDensity wraps a one-dimensional PDF as a Density over its single
// observable coordinate.
func PDFDensity(p PDF) Density {
	return func(point []float64) float64 {
		return p.Evaluate(point[0])
	}
}

// NewPDFGenerator binds a one-dimensional PDF over the given observable
// range to a foam engine.
func NewPDFGenerator(ctx context.Context, p PDF, obs Observable, cfg Config) (*Generator, error) {
	return NewGenerator(ctx, PDFDensity(p), []Observable{obs}, cfg)
}
