package sofie

import (
	"fmt"
	"strings"

	"github.com/Zeff020/root"
)

// emitter is a small indentation-aware writer for generated source
type emitter struct {
	b      strings.Builder
	indent int
}

func (e *emitter) line(format string, args ...interface{}) {
	e.b.WriteString(strings.Repeat("\t", e.indent))
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *emitter) open(format string, args ...interface{}) {
	e.line(format, args...)
	e.indent++
}

func (e *emitter) close() {
	e.indent--
	e.line("}")
}

// indexExpr renders a row-major flattened index over the given variables
// and dimensions, e.g. vars [i0 i1], dims [8 8] -> "i0*8+i1".
func indexExpr(vars []string, dims []int) string {
	var parts []string
	for a, v := range vars {
		stride := prod(dims[a+1:])
		if stride == 1 {
			parts = append(parts, v)
		} else {
			parts = append(parts, fmt.Sprintf("%s*%d", v, stride))
		}
	}
	return strings.Join(parts, "+")
}

// colVar names the per-operator column scratch buffer
func colVar(output string) string {
	return "col" + sanitizeIdent(output)
}

// GenerateInitCode renders the column scratch buffer declaration for this
// operator. Must run after Initialize.
func (op *ConvTranspose) GenerateInitCode() (string, error) {
	if op.plan == nil {
		return "", root.NewCodegenError("ConvTranspose.GenerateInitCode",
			"operator is not initialized", nil)
	}
	return fmt.Sprintf("\t%s := make([]float32, %d)\n", colVar(op.YName), op.plan.ColBufferSize()), nil
}

// Generate renders the operator body: per (batch, group) one Sgemm call
// producing the column matrix, then the scatter-accumulate loops placing
// column entries into the output, then the bias broadcast. The emitted
// text is straight-line numeric code with all bounds resolved to
// constants; only the compute package is called out to.
func (op *ConvTranspose) Generate(opName string) (string, error) {
	if op.plan == nil {
		return "", root.NewCodegenError("ConvTranspose.Generate",
			"operator is not initialized", nil)
	}
	p := op.plan
	d := len(p.InSpatial)

	x := tensorVar(op.XName)
	w := tensorVar(op.WName)
	y := tensorVar(op.YName)
	col := colVar(op.YName)

	e := &emitter{indent: 1}
	e.line("// %s: %s -> %s %s", opName, op.XName, op.YName, p.OutputShape())
	e.open("for i := range %s {", y)
	e.line("%s[i] = 0", y)
	e.close()

	inChPG := p.InChannels / p.Group
	outChPG := p.OutChannels / p.Group

	e.open("for n := 0; n < %d; n++ {", p.Batch)
	e.open("for g := 0; g < %d; g++ {", p.Group)

	// col[M x N] = W_g^T * X_g
	e.line("compute.Sgemm(compute.Trans, compute.NoTrans, %d, %d, %d, 1,",
		p.GemmM, p.GemmN, p.GemmK)
	e.line("\t%s[g*%d:], %d, %s[(n*%d+g*%d)*%d:], %d, 0, %s, %d)",
		w, inChPG*p.GemmM, p.GemmM,
		x, p.InChannels, inChPG, p.InVolume, p.GemmN,
		col, p.GemmN)

	e.line("yBase := (n*%d + g*%d) * %d", p.OutChannels, outChPG, p.OutVolume)

	// Scatter-accumulate: the im2col dual
	kVars := make([]string, d)
	iVars := make([]string, d)
	oVars := make([]string, d)
	for a := 0; a < d; a++ {
		kVars[a] = fmt.Sprintf("k%d", a)
		iVars[a] = fmt.Sprintf("i%d", a)
		oVars[a] = fmt.Sprintf("o%d", a)
	}

	e.open("for m := 0; m < %d; m++ {", outChPG)
	for a := 0; a < d; a++ {
		e.open("for %s := 0; %s < %d; %s++ {", kVars[a], kVars[a], p.Kernel[a], kVars[a])
	}
	for a := 0; a < d; a++ {
		e.open("for %s := 0; %s < %d; %s++ {", iVars[a], iVars[a], p.InSpatial[a], iVars[a])
		e.line("%s := %s*%d - %d + %s*%d",
			oVars[a], iVars[a], p.Strides[a], p.Pads[a], kVars[a], p.Dilations[a])
		e.open("if %s < 0 || %s >= %d {", oVars[a], oVars[a], p.OutSpatial[a])
		e.line("continue")
		e.close()
	}

	colRow := fmt.Sprintf("m*%d+%s", p.KernelVolume, indexExpr(kVars, p.Kernel))
	if p.KernelVolume == 1 {
		colRow = "m"
	}
	e.line("%s[yBase+m*%d+%s] += %s[(%s)*%d+%s]",
		y, p.OutVolume, indexExpr(oVars, p.OutSpatial),
		col, colRow, p.GemmN, indexExpr(iVars, p.InSpatial))

	for a := 0; a < 2*d; a++ {
		e.close()
	}
	e.close() // m
	e.close() // g

	if p.HasBias {
		b := tensorVar(op.BName)
		e.open("for c := 0; c < %d; c++ {", p.OutChannels)
		e.line("compute.Saxpy(%d, 1, %s[c:c+1], 0, %s[(n*%d+c)*%d:], 1)",
			p.OutVolume, b, y, p.OutChannels, p.OutVolume)
		e.close()
	}

	e.close() // n
	return e.b.String(), nil
}
