// Package root is a Go rework of a small family of utilities from a
// scientific-computing stack: a transposed-convolution shape planner and
// code generator (sofie), a Johnson S_U probability density with analytic
// integrals and direct sampling (dist), a cellular Monte Carlo event
// generator (foam), and 3D vector math over interchangeable coordinate
// systems (vec3).
//
// The root package itself carries only what the subpackages share: the
// structured error type and module version reporting. The interesting
// surfaces live in the subpackages:
//
//	sofie   shape inference, lowering plans, and source generation for
//	        grouped/dilated transposed convolution
//	compute float32 GEMM/AXPY kernels the generated code targets
//	dist    Johnson S_U density, analytic integrals, inverse sampling
//	foam    cell-splitting importance sampler and PDF binding
//	vec3    displacement vectors in Cartesian/polar/cylindrical-eta form
package root
