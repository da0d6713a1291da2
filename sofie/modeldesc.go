package sofie

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Zeff020/root"
)

// TensorDesc is one tensor declaration in a YAML model description
type TensorDesc struct {
	Name  string `yaml:"name"`
	DType string `yaml:"dtype"`
	Shape []int  `yaml:"shape"`
}

// AttrsDesc mirrors ConvTransposeAttrs with the ONNX attribute spellings
type AttrsDesc struct {
	AutoPad       string `yaml:"auto_pad"`
	Dilations     []int  `yaml:"dilations"`
	Group         int    `yaml:"group"`
	KernelShape   []int  `yaml:"kernel_shape"`
	OutputPadding []int  `yaml:"output_padding"`
	OutputShape   []int  `yaml:"output_shape"`
	Pads          []int  `yaml:"pads"`
	Strides       []int  `yaml:"strides"`
}

// OperatorDesc is one graph node in a YAML model description
type OperatorDesc struct {
	Type   string    `yaml:"type"`
	Inputs []string  `yaml:"inputs"`
	Output string    `yaml:"output"`
	Attrs  AttrsDesc `yaml:"attrs"`
}

// ModelDesc is the on-disk model description consumed by the sofiegen
// tool: declared tensors plus the operator list.
type ModelDesc struct {
	Name         string         `yaml:"name"`
	Package      string         `yaml:"package"`
	Inputs       []TensorDesc   `yaml:"inputs"`
	Initializers []TensorDesc   `yaml:"initializers"`
	Operators    []OperatorDesc `yaml:"operators"`
}

// ParseModelDesc decodes a YAML model description
func ParseModelDesc(data []byte) (*ModelDesc, error) {
	var d ModelDesc
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, root.NewConfigError("ParseModelDesc", "bad model description", err)
	}
	if d.Name == "" {
		return nil, root.NewConfigError("ParseModelDesc", "model has no name", nil)
	}
	return &d, nil
}

// Build turns the description into a Model, declaring tensors in file
// order and instantiating the operators. Shape inference is left to
// Model.Initialize / Model.Generate so the caller owns the failure point.
func (d *ModelDesc) Build(opts ...ModelOption) (*Model, error) {
	if d.Package != "" {
		opts = append(opts, WithPackage(d.Package))
	}
	m := NewModel(d.Name, opts...)

	declare := func(td TensorDesc, init bool) error {
		dtype, err := ParseDType(td.DType)
		if err != nil {
			return root.NewConfigError("ModelDesc.Build",
				fmt.Sprintf("tensor %q", td.Name), err)
		}
		if init {
			return m.AddInitializer(td.Name, dtype, Shape(td.Shape))
		}
		return m.AddInput(td.Name, dtype, Shape(td.Shape))
	}
	for _, td := range d.Inputs {
		if err := declare(td, false); err != nil {
			return nil, err
		}
	}
	for _, td := range d.Initializers {
		if err := declare(td, true); err != nil {
			return nil, err
		}
	}

	for i, od := range d.Operators {
		if od.Type != "ConvTranspose" {
			return nil, root.NewConfigError("ModelDesc.Build",
				fmt.Sprintf("operator %d has unsupported type %q", i, od.Type), nil)
		}
		if len(od.Inputs) < 2 || len(od.Inputs) > 3 {
			return nil, root.NewConfigError("ModelDesc.Build",
				fmt.Sprintf("operator %d needs 2 or 3 inputs, got %d", i, len(od.Inputs)), nil)
		}
		autoPad, err := ParseAutoPad(od.Attrs.AutoPad)
		if err != nil {
			return nil, root.NewConfigError("ModelDesc.Build",
				fmt.Sprintf("operator %d", i), err)
		}
		bias := ""
		if len(od.Inputs) == 3 {
			bias = od.Inputs[2]
		}
		m.AddOperator(NewConvTranspose(od.Inputs[0], od.Inputs[1], bias, od.Output,
			ConvTransposeAttrs{
				AutoPad:       autoPad,
				Dilations:     od.Attrs.Dilations,
				Group:         od.Attrs.Group,
				KernelShape:   od.Attrs.KernelShape,
				OutputPadding: od.Attrs.OutputPadding,
				OutputShape:   od.Attrs.OutputShape,
				Pads:          od.Attrs.Pads,
				Strides:       od.Attrs.Strides,
			}))
	}
	return m, nil
}
