package sofie

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Zeff020/root"
)

// TensorKind classifies how a declared tensor enters the model
type TensorKind int

const (
	// KindInput tensors are supplied by the caller of the generated code
	KindInput TensorKind = iota
	// KindInitializer tensors are trained constants (weights, biases),
	// also passed in by the caller
	KindInitializer
	// KindIntermediate tensors are produced by operators during shape
	// inference
	KindIntermediate
)

// TensorInfo describes one declared tensor
type TensorInfo struct {
	Name  string
	DType DType
	Shape Shape
	Kind  TensorKind
}

// Operator is one node of the model graph. Initialize performs shape
// inference against the model registry and must register every produced
// tensor; the Generate methods render the operator's contribution to the
// generated source.
type Operator interface {
	OpType() string
	Inputs() []string
	Outputs() []string
	Initialize(m *Model) error
	// GenerateInitCode renders scratch declarations placed ahead of the
	// operator bodies
	GenerateInitCode() (string, error)
	// Generate renders the operator body. opName is the unique name the
	// model assigned to this node.
	Generate(opName string) (string, error)
}

// Model is the registry of declared tensors plus the ordered operator
// list, and the assembly point for generated code. Referencing a tensor
// that was never declared is a fatal configuration error.
type Model struct {
	Name string

	pkg     string
	logger  *zap.Logger
	tensors map[string]*TensorInfo
	// declaration order, for deterministic signatures and codegen
	order []string
	ops   []Operator

	initialized bool
}

// ModelOption configures a Model
type ModelOption func(*Model)

// WithLogger routes model diagnostics (e.g. the asymmetric-padding
// warning) to the given logger
func WithLogger(l *zap.Logger) ModelOption {
	return func(m *Model) { m.logger = l }
}

// WithPackage sets the package name of the generated source file
func WithPackage(pkg string) ModelOption {
	return func(m *Model) { m.pkg = pkg }
}

// NewModel creates an empty model
func NewModel(name string, opts ...ModelOption) *Model {
	m := &Model{
		Name:    name,
		pkg:     "model",
		logger:  zap.NewNop(),
		tensors: make(map[string]*TensorInfo),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddInput declares a caller-supplied tensor
func (m *Model) AddInput(name string, dtype DType, shape Shape) error {
	return m.declare(name, dtype, shape, KindInput)
}

// AddInitializer declares a trained-constant tensor
func (m *Model) AddInitializer(name string, dtype DType, shape Shape) error {
	return m.declare(name, dtype, shape, KindInitializer)
}

func (m *Model) declare(name string, dtype DType, shape Shape, kind TensorKind) error {
	if name == "" {
		return root.NewConfigError("Model.declare", "tensor name must not be empty", nil)
	}
	if _, ok := m.tensors[name]; ok {
		return root.NewConfigError("Model.declare",
			fmt.Sprintf("tensor %q declared twice", name), nil)
	}
	if dtype == DTypeUnknown {
		return root.NewConfigError("Model.declare",
			fmt.Sprintf("tensor %q has no dtype", name), nil)
	}
	if !shape.Valid() {
		return root.NewShapeError("Model.declare",
			fmt.Sprintf("tensor %q has invalid shape %s", name, shape), nil)
	}
	m.tensors[name] = &TensorInfo{Name: name, DType: dtype, Shape: shape.Clone(), Kind: kind}
	m.order = append(m.order, name)
	return nil
}

// registerIntermediate is called by operators during Initialize to declare
// their outputs
func (m *Model) registerIntermediate(name string, dtype DType, shape Shape) error {
	return m.declare(name, dtype, shape, KindIntermediate)
}

// Tensor looks up a declared tensor. A missing declaration is the fatal
// configuration error that aborts generation.
func (m *Model) Tensor(name string) (*TensorInfo, error) {
	info, ok := m.tensors[name]
	if !ok {
		return nil, root.NewConfigError("Model.Tensor",
			fmt.Sprintf("tensor %q is not declared in the model", name),
			root.ErrUndeclaredTensor)
	}
	return info, nil
}

// AddOperator appends an operator to the graph. Shape inference runs in
// Initialize, in insertion order.
func (m *Model) AddOperator(op Operator) {
	m.ops = append(m.ops, op)
	m.initialized = false
}

// Operators returns the graph nodes in insertion order
func (m *Model) Operators() []Operator {
	return m.ops
}

// Initialize runs shape inference over all operators in order. After a
// successful call every intermediate tensor is declared and every operator
// holds its lowering plan.
func (m *Model) Initialize() error {
	if len(m.ops) == 0 {
		return root.NewConfigError("Model.Initialize", "model has no operators", nil)
	}
	for i, op := range m.ops {
		if err := op.Initialize(m); err != nil {
			return fmt.Errorf("operator %d (%s): %w", i, op.OpType(), err)
		}
	}
	m.initialized = true
	return nil
}

// OutputNames returns the tensors produced by operators but consumed by
// none, in declaration order
func (m *Model) OutputNames() []string {
	consumed := make(map[string]bool)
	produced := make(map[string]bool)
	for _, op := range m.ops {
		for _, in := range op.Inputs() {
			consumed[in] = true
		}
		for _, out := range op.Outputs() {
			produced[out] = true
		}
	}
	var outs []string
	for _, name := range m.order {
		if produced[name] && !consumed[name] {
			outs = append(outs, name)
		}
	}
	return outs
}

// paramNames returns input and initializer tensors in declaration order
func (m *Model) paramNames() []string {
	var params []string
	for _, name := range m.order {
		if m.tensors[name].Kind != KindIntermediate {
			params = append(params, name)
		}
	}
	return params
}

// Generate assembles the full generated source file: provenance header,
// package clause, scratch declarations, one body fragment per operator,
// and the return of the terminal tensors. It runs Initialize first when
// needed.
func (m *Model) Generate() (string, error) {
	if !m.initialized {
		if err := m.Initialize(); err != nil {
			return "", err
		}
	}

	outs := m.OutputNames()
	if len(outs) == 0 {
		return "", root.NewCodegenError("Model.Generate", "model has no terminal outputs", nil)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by sofiegen. DO NOT EDIT.\n")
	fmt.Fprintf(&b, "// Model: %s\n", m.Name)
	fmt.Fprintf(&b, "// Generation: %s\n\n", uuid.NewString())
	fmt.Fprintf(&b, "package %s\n\n", m.pkg)
	fmt.Fprintf(&b, "import (\n\t\"github.com/Zeff020/root/compute\"\n)\n\n")

	// Signature: one []float32 parameter per input/initializer, outputs
	// returned in declaration order.
	params := m.paramNames()
	fmt.Fprintf(&b, "// %s runs the model on the given tensors.\n", funcName(m.Name))
	fmt.Fprintf(&b, "//\n")
	for _, name := range params {
		info := m.tensors[name]
		fmt.Fprintf(&b, "//\t%s: %s %s\n", tensorVar(name), info.DType, info.Shape)
	}
	fmt.Fprintf(&b, "func %s(", funcName(m.Name))
	for i, name := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s []float32", tensorVar(name))
	}
	b.WriteString(") (")
	for i := range outs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("[]float32")
	}
	b.WriteString(") {\n")

	// Intermediate tensor buffers
	for _, name := range m.order {
		info := m.tensors[name]
		if info.Kind != KindIntermediate {
			continue
		}
		fmt.Fprintf(&b, "\t%s := make([]float32, %d)\n", tensorVar(name), info.Shape.Size())
	}

	// Operator scratch declarations
	for i, op := range m.ops {
		init, err := op.GenerateInitCode()
		if err != nil {
			return "", root.NewCodegenError("Model.Generate",
				fmt.Sprintf("operator %d (%s) init", i, op.OpType()), err)
		}
		b.WriteString(init)
	}

	// Operator bodies
	for i, op := range m.ops {
		opName := fmt.Sprintf("op%d_%s", i, op.OpType())
		body, err := op.Generate(opName)
		if err != nil {
			return "", root.NewCodegenError("Model.Generate",
				fmt.Sprintf("operator %d (%s) body", i, op.OpType()), err)
		}
		b.WriteString(body)
	}

	b.WriteString("\treturn ")
	for i, name := range outs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tensorVar(name))
	}
	b.WriteString("\n}\n")
	return b.String(), nil
}

// tensorVar maps a tensor name to its variable name in generated code
func tensorVar(name string) string {
	return "tensor" + sanitizeIdent(name)
}

// funcName derives the exported entry point name from the model name
func funcName(model string) string {
	s := sanitizeIdent(model)
	if s == "" {
		s = "Model"
	}
	return strings.ToUpper(s[:1]) + s[1:] + "Forward"
}

// sanitizeIdent strips characters that cannot appear in a Go identifier
func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
