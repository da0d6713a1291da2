// Package compute provides the float32 numeric kernels that generated
// operator code and the native plan executor call into: a row-major GEMM
// with optional transposition, vector accumulate, and the CPU feature
// probing used to select kernel parameters.
package compute

import (
	"golang.org/x/sys/cpu"
)

// Features tracks available CPU instruction set extensions
type Features struct {
	HasAVX     bool
	HasAVX2    bool
	HasAVX512F bool
	HasFMA     bool
	HasSSE4    bool
	HasNEON    bool
}

// Global CPU feature detection
var cpuFeatures Features

func init() {
	detectFeatures()
}

// detectFeatures populates the global cpuFeatures struct
func detectFeatures() {
	cpuFeatures = Features{
		HasSSE4:    cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:     cpu.X86.HasAVX,
		HasAVX2:    cpu.X86.HasAVX2,
		HasAVX512F: cpu.X86.HasAVX512F,
		HasFMA:     cpu.X86.HasFMA,
		HasNEON:    cpu.ARM64.HasASIMD,
	}
}

// CPUFeatures returns the detected feature set
func CPUFeatures() Features {
	return cpuFeatures
}

// HasWideVectors returns true when the CPU offers at least 256-bit vector
// arithmetic with fused multiply-add
func HasWideVectors() bool {
	return (cpuFeatures.HasAVX2 && cpuFeatures.HasFMA) || cpuFeatures.HasAVX512F
}

// GemmKernelName returns a human-readable name for the GEMM path that will
// be taken on this CPU. Useful for logging and benchmark labels.
func GemmKernelName() string {
	switch {
	case cpuFeatures.HasAVX512F:
		return "blocked-avx512"
	case cpuFeatures.HasAVX2 && cpuFeatures.HasFMA:
		return "blocked-avx2"
	case cpuFeatures.HasNEON:
		return "blocked-neon"
	case cpuFeatures.HasSSE4:
		return "blocked-sse4"
	default:
		return "naive"
	}
}

// gemmBlockSize returns the cache blocking factor for the detected CPU.
// Wider vector units keep more of the panel in registers, so they get a
// larger block.
func gemmBlockSize() int {
	if HasWideVectors() {
		return 128
	}
	return 64
}
