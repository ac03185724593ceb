package layers

import (
	"math"
	"testing"

	"trajgan/tensor"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

func TestDenseForward(t *testing.T) {
	d := NewDense(2, 2, ReLU)
	p := &Params{
		W: &tensor.Tensor{Data: []float64{1, 2, 3, 4}, Shape: []int{2, 2}},
		B: &tensor.Tensor{Data: []float64{1, -100}, Shape: []int{2}},
	}
	y, err := d.Forward(p, tensor.NewWithData([]float64{1, 1}))
	require.NoError(t, err)
	require.Equal(t, []int{2}, y.Shape)
	require.Equal(t, []float64{4, 0}, y.Data)

	require.Equal(t, []float64{4, -93}, d.Affine(p, []float64{1, 1}))

	_, err = d.Forward(p, tensor.NewWithData([]float64{1, 1, 1}))
	require.ErrorIs(t, err, ErrShape)
}

func TestConv1DForward(t *testing.T) {
	p := &Params{
		W: &tensor.Tensor{Data: []float64{1, 1, 1}, Shape: []int{1, 1, 3}},
		B: tensor.New(1),
	}
	x := &tensor.Tensor{Data: []float64{1, 2, 3, 4}, Shape: []int{1, 4}}

	same := &Conv1D{NIn: 1, NOut: 1, Kernel: 3, Stride: 1, Padding: 1}
	y, err := same.Forward(p, x)
	require.NoError(t, err)
	require.Equal(t, []int{1, 4}, y.Shape)
	require.Equal(t, []float64{3, 6, 9, 7}, y.Data)

	strided := &Conv1D{NIn: 1, NOut: 1, Kernel: 3, Stride: 2, Padding: 1}
	y, err = strided.Forward(p, x)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 9}, y.Data)
}

func TestConv1DMultiChannel(t *testing.T) {
	// two input channels, kernel 1: a per-position weighted channel sum
	c := &Conv1D{NIn: 2, NOut: 1, Kernel: 1, Stride: 1, Activation: Identity}
	p := &Params{
		W: &tensor.Tensor{Data: []float64{2, -1}, Shape: []int{1, 2, 1}},
		B: &tensor.Tensor{Data: []float64{0.5}, Shape: []int{1}},
	}
	x := &tensor.Tensor{Data: []float64{1, 2, 3, 10, 20, 30}, Shape: []int{2, 3}}
	y, err := c.Forward(p, x)
	require.NoError(t, err)
	require.Equal(t, []float64{-7.5, -15.5, -23.5}, y.Data)
}

func TestDeconv1DForward(t *testing.T) {
	d := NewDeconv1D(1, 1, 2, 2, 0, Identity)
	p := &Params{
		W: &tensor.Tensor{Data: []float64{1, 2}, Shape: []int{1, 1, 2}},
		B: tensor.New(1),
	}
	x := &tensor.Tensor{Data: []float64{1, 3}, Shape: []int{1, 2}}
	y, err := d.Forward(p, x)
	require.NoError(t, err)
	require.Equal(t, []int{1, 4}, y.Shape)
	require.Equal(t, []float64{1, 2, 3, 6}, y.Data)
}

func TestOutputShapes(t *testing.T) {
	cases := []struct {
		name  string
		layer Layer
		in    []int
		want  []int
	}{
		{"dense", NewDense(32, 2048, ReLU), []int{32}, []int{2048}},
		{"deconv doubles", NewDeconv1D(64, 64, 8, 2, 3, ReLU), []int{64, 32}, []int{64, 64}},
		{"conv same", &Conv1D{NIn: 64, NOut: 3, Kernel: 7, Stride: 1, Padding: 3}, []int{64, 128}, []int{3, 128}},
		{"conv halves", &Conv1D{NIn: 3, NOut: 64, Kernel: 7, Stride: 2, Padding: 3}, []int{3, 128}, []int{64, 64}},
		{"reshape", NewLambda(Reshape{Dims: []int{64, 32}}), []int{2048}, []int{64, 32}},
		{"reshape wildcard", NewLambda(Reshape{Dims: []int{-1}}), []int{64, 16}, []int{1024}},
		{"squeeze", NewLambda(Squeeze{Axis: 0}), []int{1, 3, 128}, []int{3, 128}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.layer.OutputShape(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestOutputShapeErrors(t *testing.T) {
	cases := []struct {
		name  string
		layer Layer
		in    []int
	}{
		{"dense wrong width", NewDense(32, 8, ReLU), []int{31}},
		{"dense zero out", NewDense(32, 0, ReLU), []int{32}},
		{"dense bad activation", NewDense(4, 4, Activation("swish")), []int{4}},
		{"conv wrong channels", &Conv1D{NIn: 3, NOut: 4, Kernel: 3, Stride: 1}, []int{2, 10}},
		{"conv kernel too long", &Conv1D{NIn: 1, NOut: 1, Kernel: 9, Stride: 1}, []int{1, 4}},
		{"conv zero stride", &Conv1D{NIn: 1, NOut: 1, Kernel: 1}, []int{1, 4}},
		{"deconv rank", NewDeconv1D(4, 4, 8, 2, 3, ReLU), []int{4}},
		{"reshape count", NewLambda(Reshape{Dims: []int{3, 3}}), []int{10}},
		{"reshape two wildcards", NewLambda(Reshape{Dims: []int{-1, -1}}), []int{10}},
		{"squeeze non-singleton", NewLambda(Squeeze{Axis: 0}), []int{3, 128}},
		{"lambda without op", &Lambda{}, []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.layer.OutputShape(tc.in)
			require.ErrorIs(t, err, ErrShape)
		})
	}
}

func TestLambdaStrings(t *testing.T) {
	require.Equal(t, "X -> X.reshape(-1, 64, 32)", NewLambda(Reshape{Dims: []int{64, 32}}).String())
	require.Equal(t, "X -> X.squeeze(1)", NewLambda(Squeeze{Axis: 0}).String())

	b, err := NewLambda(Reshape{Dims: []int{1024}}).MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"lambda": "X -> X.reshape(-1, 1024)"}`, string(b))
}

func TestActivations(t *testing.T) {
	a, err := ParseActivation(" LeakyReLU ")
	require.NoError(t, err)
	require.Equal(t, LeakyReLU, a)
	require.InDelta(t, -0.02, a.Apply(-2), 1e-12)
	require.Equal(t, 3.0, a.Apply(3))

	require.InDelta(t, math.Tanh(0.5), Tanh.Apply(0.5), 1e-12)
	require.Equal(t, 0.0, ReLU.Apply(-1))
	require.Equal(t, 0.5, Sigmoid.Apply(0))
	require.Equal(t, -4.0, Activation("").Apply(-4))

	_, err = ParseActivation("softplus")
	require.Error(t, err)
}

func TestXavierDeterministic(t *testing.T) {
	a := make([]float64, 4096)
	b := make([]float64, 4096)
	Xavier.Fill(a, 64, 64, rand.NewSource(123))
	Xavier.Fill(b, 64, 64, rand.NewSource(123))
	require.Equal(t, a, b)

	// N(0, 2/(fanIn+fanOut)) = N(0, 1/64)
	require.InDelta(t, 0, stat.Mean(a, nil), 0.01)
	require.InDelta(t, 0.125, stat.StdDev(a, nil), 0.01)

	c := make([]float64, 4096)
	Xavier.Fill(c, 64, 64, rand.NewSource(124))
	require.NotEqual(t, a, c)
}

func TestXavierUniformBounds(t *testing.T) {
	data := make([]float64, 1000)
	XavierUniform.Fill(data, 10, 14, rand.NewSource(1))
	bound := math.Sqrt(6.0 / 24)
	for _, v := range data {
		require.LessOrEqual(t, math.Abs(v), bound)
	}

	Zero.Fill(data, 10, 14, nil)
	for _, v := range data {
		require.Zero(t, v)
	}
	require.Error(t, WeightInit("he").Validate())
}

func TestInitParamsShapes(t *testing.T) {
	src := rand.NewSource(123)
	p := NewDense(32, 2048, ReLU).InitParams(Xavier, src)
	require.Equal(t, []int{2048, 32}, p.W.Shape)
	require.Equal(t, 2048*32+2048, p.NumParams())

	dp := NewDeconv1D(64, 16, 8, 2, 3, ReLU).InitParams(Xavier, src)
	require.Equal(t, []int{64, 16, 8}, dp.W.Shape)
	require.Equal(t, NewDeconv1D(64, 16, 8, 2, 3, ReLU).NumParams(), dp.NumParams())

	require.Nil(t, NewLambda(Squeeze{}).InitParams(Xavier, src))
	var none *Params
	require.Zero(t, none.NumParams())
}
