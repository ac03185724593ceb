package layers

import (
	"trajgan/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Dense is a fully-connected layer: y = act(W·x + b).
// Input [NIn], output [NOut], W is [NOut, NIn].
type Dense struct {
	NIn        int        `json:"n_in"`
	NOut       int        `json:"n_out"`
	Activation Activation `json:"activation"`
}

// NewDense returns a dense layer configuration.
func NewDense(inDim, outDim int, act Activation) *Dense {
	return &Dense{NIn: inDim, NOut: outDim, Activation: act}
}

func (d *Dense) Kind() string { return "dense" }

func (d *Dense) OutputShape(in []int) ([]int, error) {
	if err := checkPositive("dense", map[string]int{"nIn": d.NIn, "nOut": d.NOut}); err != nil {
		return nil, err
	}
	if err := d.Activation.Validate(); err != nil {
		return nil, shapeErrorf("dense: %v", err)
	}
	if len(in) != 1 || in[0] != d.NIn {
		return nil, shapeErrorf("dense: expected input [%d], got %v", d.NIn, in)
	}
	return []int{d.NOut}, nil
}

func (d *Dense) NumParams() int { return d.NOut*d.NIn + d.NOut }

func (d *Dense) InitParams(init WeightInit, src rand.Source) *Params {
	p := &Params{W: tensor.New(d.NOut, d.NIn), B: tensor.New(d.NOut)}
	init.Fill(p.W.Data, d.NIn, d.NOut, src)
	return p
}

// Forward computes y = act(W·x + b) for a plaintext vector.
func (d *Dense) Forward(p *Params, x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkInput("dense", []int{d.NIn}, x); err != nil {
		return nil, err
	}
	y := d.Affine(p, x.Data)
	d.Activation.ApplyAll(y)
	return tensor.NewWithData(y), nil
}

// Affine returns W·x + b without the activation.
func (d *Dense) Affine(p *Params, x []float64) []float64 {
	w := mat.NewDense(d.NOut, d.NIn, p.W.Data)
	var y mat.VecDense
	y.MulVec(w, mat.NewVecDense(d.NIn, x))
	out := make([]float64, d.NOut)
	for i := range out {
		out[i] = y.AtVec(i) + p.B.Data[i]
	}
	return out
}
