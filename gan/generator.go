// Package gan assembles the generator and discriminator graphs of the
// trajectory GAN.
package gan

import (
	"fmt"

	"trajgan/nn"
	"trajgan/nn/layers"
)

// Vertex names of the generator graph.
const (
	GeneratorInput  = "noiseInput"
	GeneratorOutput = "conv1d"
)

// TrajectoryChannels is the number of per-step features of a trajectory.
const TrajectoryChannels = 3

// GeneratorConfig builds the generator graph: a noise vector of noiseSize
// becomes a (3, maxTrajLen) sequence in [-1, 1].
//
//	noiseInput [noiseSize]
//	layer1     dense → hiddenSize*maxTrajLen/4, relu
//	lambda     reshape → [hiddenSize, maxTrajLen/4]
//	convTrans1 deconv k=8 s=2 p=3, relu → [hiddenSize, maxTrajLen/2]
//	convTrans2 deconv k=8 s=2 p=3, relu → [hiddenSize, maxTrajLen]
//	conv1d     conv   k=7 s=1 p=3, tanh → [3, maxTrajLen]
func GeneratorConfig(noiseSize, hiddenSize, maxTrajLen int) (*nn.GraphConfig, error) {
	if noiseSize <= 0 || hiddenSize <= 0 || maxTrajLen <= 0 {
		return nil, fmt.Errorf("%w: generator sizes must be positive (noiseSize=%d, hiddenSize=%d, maxTrajLen=%d)",
			nn.ErrInvalidConfiguration, noiseSize, hiddenSize, maxTrajLen)
	}
	if maxTrajLen%4 != 0 {
		return nil, fmt.Errorf("%w: maxTrajLen %d is not divisible by 4", nn.ErrInvalidConfiguration, maxTrajLen)
	}
	seqLen := maxTrajLen / 4

	return nn.NewNetConfig().GraphBuilder().
		AddInput(GeneratorInput, noiseSize).
		AddLayer("layer1", layers.NewDense(noiseSize, hiddenSize*seqLen, layers.ReLU), GeneratorInput).
		AddLayer("lambda", layers.NewLambda(layers.Reshape{Dims: []int{hiddenSize, seqLen}}), "layer1").
		AddLayer("convTrans1", layers.NewDeconv1D(hiddenSize, hiddenSize, 8, 2, 3, layers.ReLU), "lambda").
		AddLayer("convTrans2", layers.NewDeconv1D(hiddenSize, hiddenSize, 8, 2, 3, layers.ReLU), "convTrans1").
		AddLayer(GeneratorOutput, &layers.Conv1D{
			NIn:        hiddenSize,
			NOut:       TrajectoryChannels,
			Kernel:     7,
			Stride:     1,
			Padding:    3,
			Activation: layers.Tanh,
		}, "convTrans2").
		SetOutputs(GeneratorOutput).
		Build()
}
