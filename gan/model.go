package gan

import (
	"fmt"

	"trajgan/nn"
	"trajgan/nn/layers"
	"trajgan/tensor"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generator is an initialised generator graph.
type Generator struct {
	*nn.ComputationGraph
}

// NewGenerator builds and initialises the generator graph.
func NewGenerator(noiseSize, hiddenSize, maxTrajLen int) (*Generator, error) {
	cfg, err := GeneratorConfig(noiseSize, hiddenSize, maxTrajLen)
	if err != nil {
		return nil, err
	}
	g := nn.NewComputationGraph(cfg)
	if err := g.Init(); err != nil {
		return nil, err
	}
	return &Generator{g}, nil
}

// Generate maps one noise vector to a [3, maxTrajLen] trajectory.
func (g *Generator) Generate(noise []float64) (*tensor.Tensor, error) {
	out, err := g.Output(map[string]*tensor.Tensor{GeneratorInput: tensor.NewWithData(noise)})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return out[GeneratorOutput], nil
}

// SampleNoise draws n standard-normal values from src.
func SampleNoise(n int, src rand.Source) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	noise := make([]float64, n)
	for i := range noise {
		noise[i] = dist.Rand()
	}
	return noise
}

// Discriminator is an initialised discriminator graph.
type Discriminator struct {
	*nn.ComputationGraph
}

// NewDiscriminator builds and initialises the discriminator graph.
func NewDiscriminator(arrayLength, hiddenSize int) (*Discriminator, error) {
	cfg, err := DiscriminatorConfig(arrayLength, hiddenSize)
	if err != nil {
		return nil, err
	}
	g := nn.NewComputationGraph(cfg)
	if err := g.Init(); err != nil {
		return nil, err
	}
	return &Discriminator{g}, nil
}

// asInput accepts a trajectory as [3, L] (generator output) or [1, 3, L].
func asInput(traj *tensor.Tensor) (map[string]*tensor.Tensor, error) {
	if traj == nil {
		return nil, fmt.Errorf("nil trajectory")
	}
	x := traj
	if len(traj.Shape) == 2 {
		var err error
		if x, err = traj.Reshape(1, traj.Shape[0], traj.Shape[1]); err != nil {
			return nil, err
		}
	}
	return map[string]*tensor.Tensor{DiscriminatorInput: x}, nil
}

// Score returns the discriminator output for one trajectory.
func (d *Discriminator) Score(traj *tensor.Tensor) (float64, error) {
	in, err := asInput(traj)
	if err != nil {
		return 0, fmt.Errorf("score: %w", err)
	}
	out, err := d.Output(in)
	if err != nil {
		return 0, fmt.Errorf("score: %w", err)
	}
	return out[DiscriminatorOutput].Data[0], nil
}

// Features runs the convolutional body only and returns the flattened
// activations that the dense head consumes.
func (d *Discriminator) Features(traj *tensor.Tensor) ([]float64, error) {
	in, err := asInput(traj)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	acts, err := d.FeedForward(in, DiscriminatorFeatures)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	return acts[DiscriminatorFeatures].Data, nil
}

// Head returns the final dense layer and its parameters.
func (d *Discriminator) Head() (*layers.Dense, *layers.Params) {
	v, _ := d.Config.Vertex(DiscriminatorOutput)
	return v.Layer.(*layers.Dense), d.Params(DiscriminatorOutput)
}
