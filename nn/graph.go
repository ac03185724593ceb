package nn

import (
	"errors"
	"fmt"
	"strings"

	"trajgan/nn/layers"
)

var (
	// ErrInvalidConfiguration is wrapped by every error Build and the
	// network factories return.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrDanglingInput marks a layer input that names nothing declared before it.
	ErrDanglingInput = errors.New("dangling input")
	// ErrDuplicateName marks a vertex name used twice.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrShapeMismatch marks a layer that cannot accept its input's shape.
	ErrShapeMismatch = errors.New("shape mismatch")
)

func invalidf(cause error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidConfiguration, cause, fmt.Sprintf(format, args...))
}

// Vertex is one named layer of a built graph with its resolved shapes.
type Vertex struct {
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	Layer    layers.Layer `json:"layer"`
	Inputs   []string     `json:"inputs"`
	InShape  []int        `json:"in_shape"`
	OutShape []int        `json:"out_shape"`
}

// GraphInput is a named per-sample input of a graph.
type GraphInput struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
}

// GraphConfig is a validated, acyclic computation graph. Vertices are in
// declaration order, which is also a valid evaluation order.
type GraphConfig struct {
	Net      NetConfig    `json:"net"`
	Inputs   []GraphInput `json:"inputs"`
	Vertices []Vertex     `json:"vertices"`
	Outputs  []string     `json:"outputs"`
}

// GraphBuilder collects inputs, layers and outputs. Builder calls never fail;
// every problem is reported once by Build.
type GraphBuilder struct {
	conf    NetConfig
	inputs  []GraphInput
	pending []Vertex
	outputs []string
	names   map[string]bool
	errs    []error
}

// AddInput declares a graph input with its per-sample shape.
func (b *GraphBuilder) AddInput(name string, shape ...int) *GraphBuilder {
	if err := b.claim(name); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.inputs = append(b.inputs, GraphInput{Name: name, Shape: append([]int(nil), shape...)})
	return b
}

// AddLayer appends a layer fed by the named inputs. Inputs must be graph
// inputs or layers added before this one.
func (b *GraphBuilder) AddLayer(name string, layer layers.Layer, inputs ...string) *GraphBuilder {
	if err := b.claim(name); err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	v := Vertex{Name: name, Layer: layer, Inputs: append([]string(nil), inputs...)}
	if layer != nil {
		v.Kind = layer.Kind()
	}
	b.pending = append(b.pending, v)
	return b
}

// SetOutputs names the layers whose activations the graph returns.
func (b *GraphBuilder) SetOutputs(names ...string) *GraphBuilder {
	b.outputs = append([]string(nil), names...)
	return b
}

func (b *GraphBuilder) claim(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalidf(ErrDuplicateName, "empty vertex name")
	}
	if b.names[name] {
		return invalidf(ErrDuplicateName, "%q declared twice", name)
	}
	b.names[name] = true
	return nil
}

// Build validates the wiring in a single pass and infers every vertex's
// shape. A layer may only consume names declared before it, so the result
// is acyclic by construction.
func (b *GraphBuilder) Build() (*GraphConfig, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if err := b.conf.Validate(); err != nil {
		return nil, err
	}
	if len(b.inputs) == 0 {
		return nil, invalidf(ErrDanglingInput, "graph has no inputs")
	}
	if len(b.outputs) == 0 {
		return nil, invalidf(ErrDanglingInput, "graph has no outputs")
	}

	shapes := make(map[string][]int, len(b.inputs)+len(b.pending))
	for _, in := range b.inputs {
		if len(in.Shape) == 0 {
			return nil, invalidf(ErrShapeMismatch, "input %q has no shape", in.Name)
		}
		for _, d := range in.Shape {
			if d <= 0 {
				return nil, invalidf(ErrShapeMismatch, "input %q has shape %v", in.Name, in.Shape)
			}
		}
		shapes[in.Name] = in.Shape
	}

	vertices := make([]Vertex, 0, len(b.pending))
	for _, v := range b.pending {
		if v.Layer == nil {
			return nil, invalidf(ErrShapeMismatch, "layer %q is nil", v.Name)
		}
		if len(v.Inputs) != 1 {
			return nil, invalidf(ErrDanglingInput, "layer %q takes exactly one input, got %d", v.Name, len(v.Inputs))
		}
		in, ok := shapes[v.Inputs[0]]
		if !ok {
			return nil, invalidf(ErrDanglingInput, "layer %q reads %q, which is not declared before it", v.Name, v.Inputs[0])
		}
		out, err := v.Layer.OutputShape(in)
		if err != nil {
			return nil, invalidf(ErrShapeMismatch, "layer %q: %v", v.Name, err)
		}
		v.InShape = append([]int(nil), in...)
		v.OutShape = out
		shapes[v.Name] = out
		vertices = append(vertices, v)
	}

	isLayer := make(map[string]bool, len(vertices))
	for _, v := range vertices {
		isLayer[v.Name] = true
	}
	for _, out := range b.outputs {
		if !isLayer[out] {
			return nil, invalidf(ErrDanglingInput, "output %q is not a layer", out)
		}
	}

	return &GraphConfig{
		Net:      b.conf,
		Inputs:   append([]GraphInput(nil), b.inputs...),
		Vertices: vertices,
		Outputs:  append([]string(nil), b.outputs...),
	}, nil
}

// Vertex looks up a layer vertex by name.
func (g *GraphConfig) Vertex(name string) (Vertex, bool) {
	for _, v := range g.Vertices {
		if v.Name == name {
			return v, true
		}
	}
	return Vertex{}, false
}

// OutputShape returns the per-sample shape produced by a layer or graph input.
func (g *GraphConfig) OutputShape(name string) ([]int, bool) {
	for _, in := range g.Inputs {
		if in.Name == name {
			return in.Shape, true
		}
	}
	v, ok := g.Vertex(name)
	return v.OutShape, ok
}

// NumParams sums the learnable scalars of all layers.
func (g *GraphConfig) NumParams() int {
	n := 0
	for _, v := range g.Vertices {
		n += v.Layer.NumParams()
	}
	return n
}

// Summary renders one line per vertex: name, kind, input and output shape.
func (g *GraphConfig) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %-10s %-14s %-14s %10s\n", "name", "kind", "in", "out", "params")
	for _, in := range g.Inputs {
		fmt.Fprintf(&sb, "%-12s %-10s %-14s %-14v %10d\n", in.Name, "input", "-", in.Shape, 0)
	}
	for _, v := range g.Vertices {
		fmt.Fprintf(&sb, "%-12s %-10s %-14v %-14v %10d\n", v.Name, v.Kind, v.InShape, v.OutShape, v.Layer.NumParams())
	}
	fmt.Fprintf(&sb, "outputs: %s, total params: %d\n", strings.Join(g.Outputs, ", "), g.NumParams())
	return sb.String()
}
