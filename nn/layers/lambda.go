package layers

import (
	"encoding/json"
	"fmt"
	"strings"

	"trajgan/tensor"

	"golang.org/x/exp/rand"
)

// LambdaOp is a parameter-free shape transformation.
type LambdaOp interface {
	OutputShape(in []int) ([]int, error)
	Apply(x *tensor.Tensor) (*tensor.Tensor, error)
	// String renders the op as a lambda expression, e.g. "X -> X.squeeze(1)".
	String() string
}

// Lambda wraps a LambdaOp as a graph layer. It has no parameters.
type Lambda struct {
	Op LambdaOp
}

func NewLambda(op LambdaOp) *Lambda { return &Lambda{Op: op} }

func (l *Lambda) Kind() string { return "lambda" }

func (l *Lambda) OutputShape(in []int) ([]int, error) {
	if l.Op == nil {
		return nil, shapeErrorf("lambda: no op")
	}
	return l.Op.OutputShape(in)
}

func (l *Lambda) NumParams() int                             { return 0 }
func (l *Lambda) InitParams(WeightInit, rand.Source) *Params { return nil }

func (l *Lambda) Forward(_ *Params, x *tensor.Tensor) (*tensor.Tensor, error) {
	if l.Op == nil {
		return nil, shapeErrorf("lambda: no op")
	}
	if x == nil {
		return nil, fmt.Errorf("lambda: nil input")
	}
	return l.Op.Apply(x)
}

func (l *Lambda) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lambda string `json:"lambda"`
	}{l.String()})
}

func (l *Lambda) String() string {
	if l.Op == nil {
		return "X -> X"
	}
	return l.Op.String()
}

// Reshape changes the per-sample shape. At most one entry of Dims may be -1;
// it is inferred from the element count.
type Reshape struct {
	Dims []int
}

func (r Reshape) resolve(in []int) ([]int, error) {
	n := tensor.Numel(in)
	out := append([]int(nil), r.Dims...)
	wild, known := -1, 1
	for i, d := range out {
		switch {
		case d == -1 && wild < 0:
			wild = i
		case d <= 0:
			return nil, shapeErrorf("reshape: invalid dimension %d in %v", d, r.Dims)
		default:
			known *= d
		}
	}
	if wild >= 0 {
		if n%known != 0 {
			return nil, shapeErrorf("reshape: cannot infer -1 in %v from %v", r.Dims, in)
		}
		out[wild] = n / known
	}
	if len(out) == 0 || tensor.Numel(out) != n {
		return nil, shapeErrorf("reshape: %v (%d elements) to %v", in, n, r.Dims)
	}
	return out, nil
}

func (r Reshape) OutputShape(in []int) ([]int, error) { return r.resolve(in) }

func (r Reshape) Apply(x *tensor.Tensor) (*tensor.Tensor, error) {
	shape, err := r.resolve(x.Shape)
	if err != nil {
		return nil, err
	}
	return x.Reshape(shape...)
}

// String uses the batch-leading form, with -1 standing for the batch.
func (r Reshape) String() string {
	dims := make([]string, 0, len(r.Dims)+1)
	dims = append(dims, "-1")
	for _, d := range r.Dims {
		dims = append(dims, fmt.Sprint(d))
	}
	return "X -> X.reshape(" + strings.Join(dims, ", ") + ")"
}

// Squeeze drops the singleton per-sample dimension Axis.
type Squeeze struct {
	Axis int
}

func (s Squeeze) OutputShape(in []int) ([]int, error) {
	if s.Axis < 0 || s.Axis >= len(in) || in[s.Axis] != 1 {
		return nil, shapeErrorf("squeeze: axis %d is not a singleton of %v", s.Axis, in)
	}
	out := make([]int, 0, len(in)-1)
	out = append(out, in[:s.Axis]...)
	return append(out, in[s.Axis+1:]...), nil
}

func (s Squeeze) Apply(x *tensor.Tensor) (*tensor.Tensor, error) {
	if _, err := s.OutputShape(x.Shape); err != nil {
		return nil, err
	}
	return x.Squeeze(s.Axis)
}

// String counts the batch axis, so per-sample axis 0 prints as squeeze(1).
func (s Squeeze) String() string {
	return fmt.Sprintf("X -> X.squeeze(%d)", s.Axis+1)
}
