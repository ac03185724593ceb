package gan

import (
	"fmt"

	"trajgan/nn"
	"trajgan/nn/layers"
)

// Vertex names of the discriminator graph. DiscriminatorFeatures is the
// flattened conv output that feeds the dense head.
const (
	DiscriminatorInput    = "input"
	DiscriminatorFeatures = "lambda2"
	DiscriminatorOutput   = "dense1"
)

// DiscriminatorConfig builds the discriminator graph: a (1, 3, arrayLength)
// trajectory becomes a single score.
//
//	input    [1, 3, arrayLength]
//	lambda   squeeze → [3, arrayLength]
//	conv1d_1 conv k=7 s=2 p=3, leakyrelu → [hiddenSize, arrayLength/2]
//	conv1d_2 conv k=7 s=2 p=3, leakyrelu → [hiddenSize, arrayLength/4]
//	conv1d_3 conv k=7 s=2 p=3, leakyrelu → [hiddenSize, arrayLength/8]
//	lambda2  reshape → [hiddenSize*arrayLength/8]
//	dense1   dense → 1, leakyrelu
func DiscriminatorConfig(arrayLength, hiddenSize int) (*nn.GraphConfig, error) {
	if arrayLength <= 0 || hiddenSize <= 0 {
		return nil, fmt.Errorf("%w: discriminator sizes must be positive (arrayLength=%d, hiddenSize=%d)",
			nn.ErrInvalidConfiguration, arrayLength, hiddenSize)
	}
	if arrayLength%8 != 0 {
		return nil, fmt.Errorf("%w: arrayLength %d is not divisible by 8", nn.ErrInvalidConfiguration, arrayLength)
	}
	features := hiddenSize * arrayLength / 8

	return nn.NewNetConfig().GraphBuilder().
		AddInput(DiscriminatorInput, 1, TrajectoryChannels, arrayLength).
		AddLayer("lambda", layers.NewLambda(layers.Squeeze{Axis: 0}), DiscriminatorInput).
		AddLayer("conv1d_1", downsample(TrajectoryChannels, hiddenSize), "lambda").
		AddLayer("conv1d_2", downsample(hiddenSize, hiddenSize), "conv1d_1").
		AddLayer("conv1d_3", downsample(hiddenSize, hiddenSize), "conv1d_2").
		AddLayer(DiscriminatorFeatures, layers.NewLambda(layers.Reshape{Dims: []int{features}}), "conv1d_3").
		AddLayer(DiscriminatorOutput, layers.NewDense(features, 1, layers.LeakyReLU), DiscriminatorFeatures).
		SetOutputs(DiscriminatorOutput).
		Build()
}

func downsample(inC, outC int) *layers.Conv1D {
	return &layers.Conv1D{
		NIn:        inC,
		NOut:       outC,
		Kernel:     7,
		Stride:     2,
		Padding:    3,
		Activation: layers.LeakyReLU,
	}
}
