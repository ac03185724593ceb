package layers

import (
	"trajgan/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Conv1D is a 1-D convolution over a channels-first sequence.
// Input  [NIn, L]
// Output [NOut, (L+2*Padding-Kernel)/Stride+1]
// W is [NOut, NIn, Kernel].
type Conv1D struct {
	NIn        int        `json:"n_in"`
	NOut       int        `json:"n_out"`
	Kernel     int        `json:"kernel"`
	Stride     int        `json:"stride"`
	Padding    int        `json:"padding"`
	Activation Activation `json:"activation"`
}

// NewConv1D returns a convolution with stride 1 and no padding; set Stride
// and Padding on the result for anything else.
func NewConv1D(inC, outC, k int, act Activation) *Conv1D {
	return &Conv1D{NIn: inC, NOut: outC, Kernel: k, Stride: 1, Activation: act}
}

func (c *Conv1D) Kind() string { return "conv1d" }

func (c *Conv1D) validate() error {
	if err := checkPositive("conv1d", map[string]int{
		"nIn": c.NIn, "nOut": c.NOut, "kernel": c.Kernel, "stride": c.Stride,
	}); err != nil {
		return err
	}
	if c.Padding < 0 {
		return shapeErrorf("conv1d: padding must be non-negative, got %d", c.Padding)
	}
	if err := c.Activation.Validate(); err != nil {
		return shapeErrorf("conv1d: %v", err)
	}
	return nil
}

func (c *Conv1D) outLen(l int) int {
	return (l+2*c.Padding-c.Kernel)/c.Stride + 1
}

func (c *Conv1D) OutputShape(in []int) ([]int, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if len(in) != 2 || in[0] != c.NIn {
		return nil, shapeErrorf("conv1d: expected input [%d, L], got %v", c.NIn, in)
	}
	if in[1]+2*c.Padding < c.Kernel {
		return nil, shapeErrorf("conv1d: padded length %d shorter than kernel %d", in[1]+2*c.Padding, c.Kernel)
	}
	return []int{c.NOut, c.outLen(in[1])}, nil
}

func (c *Conv1D) NumParams() int { return c.NOut*c.NIn*c.Kernel + c.NOut }

func (c *Conv1D) InitParams(init WeightInit, src rand.Source) *Params {
	p := &Params{W: tensor.New(c.NOut, c.NIn, c.Kernel), B: tensor.New(c.NOut)}
	init.Fill(p.W.Data, c.NIn*c.Kernel, c.NOut*c.Kernel, src)
	return p
}

// Forward lowers the convolution to a single matrix product:
// W [NOut, NIn*K] × cols [NIn*K, outL].
func (c *Conv1D) Forward(p *Params, x *tensor.Tensor) (*tensor.Tensor, error) {
	if x == nil || len(x.Shape) != 2 {
		return nil, shapeErrorf("conv1d: expected 2D [C, L] input")
	}
	if err := checkInput("conv1d", []int{c.NIn, x.Shape[1]}, x); err != nil {
		return nil, err
	}
	shape, err := c.OutputShape(x.Shape)
	if err != nil {
		return nil, err
	}
	l, outL := x.Shape[1], shape[1]
	k := c.Kernel

	cols := mat.NewDense(c.NIn*k, outL, nil)
	for ch := 0; ch < c.NIn; ch++ {
		for j := 0; j < k; j++ {
			row := ch*k + j
			for t := 0; t < outL; t++ {
				pos := t*c.Stride + j - c.Padding
				if pos >= 0 && pos < l {
					cols.Set(row, t, x.Data[ch*l+pos])
				}
			}
		}
	}

	w := mat.NewDense(c.NOut, c.NIn*k, p.W.Data)
	var prod mat.Dense
	prod.Mul(w, cols)

	out := tensor.New(c.NOut, outL)
	for o := 0; o < c.NOut; o++ {
		for t := 0; t < outL; t++ {
			out.Data[o*outL+t] = prod.At(o, t) + p.B.Data[o]
		}
	}
	c.Activation.ApplyAll(out.Data)
	return out, nil
}
