package compute

// Saxpy computes y = alpha*x + y over n elements with the given strides.
// Used by generated code for bias broadcasts.
func Saxpy(n int, alpha float32, x []float32, incX int, y []float32, incY int) {
	if n <= 0 || alpha == 0 {
		return
	}
	if incX == 1 && incY == 1 {
		yn := y[:n]
		for i, xv := range x[:n] {
			yn[i] += alpha * xv
		}
		return
	}
	ix, iy := 0, 0
	for i := 0; i < n; i++ {
		y[iy] += alpha * x[ix]
		ix += incX
		iy += incY
	}
}

// Sscal scales x by alpha over n contiguous elements
func Sscal(n int, alpha float32, x []float32) {
	for i := range x[:n] {
		x[i] *= alpha
	}
}
