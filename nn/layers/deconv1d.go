package layers

import (
	"trajgan/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Deconv1D is a transposed 1-D convolution; with Stride 2 it doubles the
// sequence length when Kernel = 2*Padding + 2.
// Input  [NIn, L]
// Output [NOut, (L-1)*Stride-2*Padding+Kernel]
// W is [NIn, NOut, Kernel].
type Deconv1D struct {
	NIn        int        `json:"n_in"`
	NOut       int        `json:"n_out"`
	Kernel     int        `json:"kernel"`
	Stride     int        `json:"stride"`
	Padding    int        `json:"padding"`
	Activation Activation `json:"activation"`
}

func NewDeconv1D(inC, outC, k, stride, padding int, act Activation) *Deconv1D {
	return &Deconv1D{NIn: inC, NOut: outC, Kernel: k, Stride: stride, Padding: padding, Activation: act}
}

func (d *Deconv1D) Kind() string { return "deconv1d" }

func (d *Deconv1D) outLen(l int) int {
	return (l-1)*d.Stride - 2*d.Padding + d.Kernel
}

func (d *Deconv1D) OutputShape(in []int) ([]int, error) {
	if err := checkPositive("deconv1d", map[string]int{
		"nIn": d.NIn, "nOut": d.NOut, "kernel": d.Kernel, "stride": d.Stride,
	}); err != nil {
		return nil, err
	}
	if d.Padding < 0 {
		return nil, shapeErrorf("deconv1d: padding must be non-negative, got %d", d.Padding)
	}
	if err := d.Activation.Validate(); err != nil {
		return nil, shapeErrorf("deconv1d: %v", err)
	}
	if len(in) != 2 || in[0] != d.NIn || in[1] <= 0 {
		return nil, shapeErrorf("deconv1d: expected input [%d, L], got %v", d.NIn, in)
	}
	outL := d.outLen(in[1])
	if outL <= 0 {
		return nil, shapeErrorf("deconv1d: output length %d for input length %d", outL, in[1])
	}
	return []int{d.NOut, outL}, nil
}

func (d *Deconv1D) NumParams() int { return d.NIn*d.NOut*d.Kernel + d.NOut }

func (d *Deconv1D) InitParams(init WeightInit, src rand.Source) *Params {
	p := &Params{W: tensor.New(d.NIn, d.NOut, d.Kernel), B: tensor.New(d.NOut)}
	init.Fill(p.W.Data, d.NIn*d.Kernel, d.NOut*d.Kernel, src)
	return p
}

// Forward computes cols = Wᵀ·x with Wᵀ [NOut*K, NIn] and x [NIn, L], then
// scatters every column back onto the output positions t*Stride+j-Padding.
func (d *Deconv1D) Forward(p *Params, x *tensor.Tensor) (*tensor.Tensor, error) {
	if x == nil || len(x.Shape) != 2 {
		return nil, shapeErrorf("deconv1d: expected 2D [C, L] input")
	}
	shape, err := d.OutputShape(x.Shape)
	if err != nil {
		return nil, err
	}
	l, outL := x.Shape[1], shape[1]
	k := d.Kernel

	w := mat.NewDense(d.NIn, d.NOut*k, p.W.Data)
	in := mat.NewDense(d.NIn, l, x.Data)
	var cols mat.Dense
	cols.Mul(w.T(), in)

	out := tensor.New(d.NOut, outL)
	for o := 0; o < d.NOut; o++ {
		for j := 0; j < k; j++ {
			row := o*k + j
			for t := 0; t < l; t++ {
				pos := t*d.Stride + j - d.Padding
				if pos >= 0 && pos < outL {
					out.Data[o*outL+pos] += cols.At(row, t)
				}
			}
		}
		for t := 0; t < outL; t++ {
			out.Data[o*outL+t] += p.B.Data[o]
		}
	}
	d.Activation.ApplyAll(out.Data)
	return out, nil
}
