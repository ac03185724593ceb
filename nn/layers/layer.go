package layers

import (
	"errors"
	"fmt"

	"trajgan/tensor"

	"golang.org/x/exp/rand"
)

// ErrShape is wrapped by every shape or size check a layer performs.
var ErrShape = errors.New("shape mismatch")

// Layer is the configuration of one graph vertex. A Layer value is immutable
// once built; trained or initialised state lives in Params so that the same
// configuration can back several graphs.
type Layer interface {
	// Kind names the layer type, e.g. "dense".
	Kind() string
	// OutputShape returns the per-sample output shape for a per-sample
	// input shape, or an error wrapping ErrShape.
	OutputShape(in []int) ([]int, error)
	// NumParams is the number of learnable scalars.
	NumParams() int
	// InitParams allocates parameters drawn with init from src.
	// Parameter-free layers return nil.
	InitParams(init WeightInit, src rand.Source) *Params
	// Forward runs one sample through the layer.
	Forward(p *Params, x *tensor.Tensor) (*tensor.Tensor, error)
}

// Params holds a layer's learnable tensors.
type Params struct {
	W *tensor.Tensor // weights, layout depends on the layer
	B *tensor.Tensor // bias: [nOut]
}

// NumParams counts the scalars in p.
func (p *Params) NumParams() int {
	if p == nil {
		return 0
	}
	n := 0
	if p.W != nil {
		n += len(p.W.Data)
	}
	if p.B != nil {
		n += len(p.B.Data)
	}
	return n
}

func shapeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrShape}, args...)...)
}

func checkPositive(kind string, vals map[string]int) error {
	for name, v := range vals {
		if v <= 0 {
			return shapeErrorf("%s: %s must be positive, got %d", kind, name, v)
		}
	}
	return nil
}

func checkInput(kind string, want []int, x *tensor.Tensor) error {
	if x == nil {
		return fmt.Errorf("%s: nil input", kind)
	}
	if !tensor.SameShape(want, x.Shape) {
		return shapeErrorf("%s: expected input %v, got %v", kind, want, x.Shape)
	}
	return nil
}
