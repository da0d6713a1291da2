package compute

// Transpose selects whether a GEMM operand is used as-is or transposed
type Transpose int

const (
	// NoTrans uses the operand as stored
	NoTrans Transpose = iota
	// Trans uses the transpose of the operand
	Trans
)

// Sgemm computes C = alpha*op(A)*op(B) + beta*C for row-major float32
// matrices, where op is identity or transposition per the Transpose flags.
// op(A) is m x k, op(B) is k x n, C is m x n. lda, ldb, ldc are the leading
// (row) strides of the stored operands.
//
// Small products take the naive triple loop; larger ones go through a
// cache-blocked path whose block size is chosen from the detected CPU
// features.
func Sgemm(tA, tB Transpose, m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) {
	if m == 0 || n == 0 {
		return
	}

	// Scale C by beta first so the accumulation loops stay simple.
	switch beta {
	case 1:
	case 0:
		for i := 0; i < m; i++ {
			row := c[i*ldc : i*ldc+n]
			for j := range row {
				row[j] = 0
			}
		}
	default:
		for i := 0; i < m; i++ {
			row := c[i*ldc : i*ldc+n]
			for j := range row {
				row[j] *= beta
			}
		}
	}

	if alpha == 0 || k == 0 {
		return
	}

	bs := gemmBlockSize()
	if m*n*k <= bs*bs*bs {
		sgemmNaive(tA, tB, m, n, k, alpha, a, lda, b, ldb, c, ldc)
		return
	}
	sgemmBlocked(tA, tB, m, n, k, alpha, a, lda, b, ldb, c, ldc, bs)
}

// at returns op(A)[i,l]
func at(tA Transpose, a []float32, lda, i, l int) float32 {
	if tA == NoTrans {
		return a[i*lda+l]
	}
	return a[l*lda+i]
}

func sgemmNaive(tA, tB Transpose, m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, c []float32, ldc int) {
	if tA == NoTrans && tB == NoTrans {
		// The common layout: accumulate row i of C from rows of B, which
		// keeps both inner accesses sequential.
		for i := 0; i < m; i++ {
			ci := c[i*ldc : i*ldc+n]
			for l := 0; l < k; l++ {
				av := alpha * a[i*lda+l]
				if av == 0 {
					continue
				}
				bl := b[l*ldb : l*ldb+n]
				for j, bv := range bl {
					ci[j] += av * bv
				}
			}
		}
		return
	}

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float32
			for l := 0; l < k; l++ {
				sum += at(tA, a, lda, i, l) * at(tB, b, ldb, l, j)
			}
			c[i*ldc+j] += alpha * sum
		}
	}
}

func sgemmBlocked(tA, tB Transpose, m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, c []float32, ldc int, bs int) {
	for i0 := 0; i0 < m; i0 += bs {
		iMax := min(i0+bs, m)
		for l0 := 0; l0 < k; l0 += bs {
			lMax := min(l0+bs, k)
			for j0 := 0; j0 < n; j0 += bs {
				jMax := min(j0+bs, n)
				for i := i0; i < iMax; i++ {
					for l := l0; l < lMax; l++ {
						av := alpha * at(tA, a, lda, i, l)
						if av == 0 {
							continue
						}
						ci := c[i*ldc+j0 : i*ldc+jMax]
						if tB == NoTrans {
							bl := b[l*ldb+j0 : l*ldb+jMax]
							for j, bv := range bl {
								ci[j] += av * bv
							}
						} else {
							for j := j0; j < jMax; j++ {
								ci[j-j0] += av * b[j*ldb+l]
							}
						}
					}
				}
			}
		}
	}
}
