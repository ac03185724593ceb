package nn

import (
	"errors"
	"fmt"

	"trajgan/nn/layers"
	"trajgan/tensor"

	"golang.org/x/exp/rand"
)

// ErrNotInitialized is returned by Output before Init has run.
var ErrNotInitialized = errors.New("graph not initialized")

// ComputationGraph is an executable instance of a GraphConfig. It owns the
// parameters; the configuration stays shared and read-only.
type ComputationGraph struct {
	Config *GraphConfig
	params map[string]*layers.Params
}

// NewComputationGraph wraps a built configuration. Call Init before Output.
func NewComputationGraph(cfg *GraphConfig) *ComputationGraph {
	return &ComputationGraph{Config: cfg}
}

// Init draws every layer's parameters in declaration order from a source
// seeded with the configuration seed, so two graphs built from the same
// configuration start with identical weights.
func (g *ComputationGraph) Init() error {
	if g.Config == nil {
		return fmt.Errorf("%w: nil graph configuration", ErrInvalidConfiguration)
	}
	if err := g.Config.Net.Validate(); err != nil {
		return err
	}
	src := rand.NewSource(uint64(g.Config.Net.Seed))
	g.params = make(map[string]*layers.Params, len(g.Config.Vertices))
	for _, v := range g.Config.Vertices {
		g.params[v.Name] = v.Layer.InitParams(g.Config.Net.WeightInit, src)
	}
	return nil
}

// Initialized reports whether Init has run.
func (g *ComputationGraph) Initialized() bool { return g.params != nil }

// Params returns the parameters of a layer; nil for parameter-free layers.
func (g *ComputationGraph) Params(name string) *layers.Params {
	return g.params[name]
}

// NumParams counts the allocated parameters.
func (g *ComputationGraph) NumParams() int {
	n := 0
	for _, p := range g.params {
		n += p.NumParams()
	}
	return n
}

// Output runs one sample through the graph and returns the activations of
// every configured output.
func (g *ComputationGraph) Output(inputs map[string]*tensor.Tensor) (map[string]*tensor.Tensor, error) {
	acts, err := g.FeedForward(inputs, "")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*tensor.Tensor, len(g.Config.Outputs))
	for _, name := range g.Config.Outputs {
		out[name] = acts[name]
	}
	return out, nil
}

// FeedForward evaluates vertices in declaration order and returns all
// activations, including the inputs. A non-empty stopAt ends evaluation after
// that vertex.
func (g *ComputationGraph) FeedForward(inputs map[string]*tensor.Tensor, stopAt string) (map[string]*tensor.Tensor, error) {
	if !g.Initialized() {
		return nil, ErrNotInitialized
	}
	if stopAt != "" {
		if _, ok := g.Config.Vertex(stopAt); !ok {
			return nil, fmt.Errorf("unknown vertex %q", stopAt)
		}
	}
	acts := make(map[string]*tensor.Tensor, len(g.Config.Inputs)+len(g.Config.Vertices))
	for _, in := range g.Config.Inputs {
		x, ok := inputs[in.Name]
		if !ok || x == nil {
			return nil, fmt.Errorf("missing input %q", in.Name)
		}
		if !tensor.SameShape(in.Shape, x.Shape) {
			return nil, fmt.Errorf("input %q: expected shape %v, got %v", in.Name, in.Shape, x.Shape)
		}
		acts[in.Name] = x
	}
	for _, v := range g.Config.Vertices {
		y, err := v.Layer.Forward(g.params[v.Name], acts[v.Inputs[0]])
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", v.Name, err)
		}
		acts[v.Name] = y
		if v.Name == stopAt {
			break
		}
	}
	return acts, nil
}
