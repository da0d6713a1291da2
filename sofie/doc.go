// Package sofie plans and generates code for the transposed-convolution
// operator: shape inference over declared model tensors, lowering to a
// GEMM-plus-scatter plan, and rendering of the plan as straight-line Go
// source targeting the compute package.
//
// The pipeline is deliberately split in three pure stages:
//
//	attributes + input shapes  ->  ShapeInference  ->  output shape
//	resolved geometry          ->  BuildPlan       ->  Plan (IR)
//	Plan                       ->  renderer        ->  source text
//
// Shape inference and planning never emit text, so they can be tested and
// reused (the native executor in this package runs the same Plan the
// renderer prints). A Model ties declared tensors and operators together
// and assembles the generated source file.
package sofie
