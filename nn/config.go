package nn

import (
	"fmt"

	"trajgan/nn/layers"
)

// OptimizationAlgo names the optimisation mode recorded in a configuration.
type OptimizationAlgo string

const StochasticGradientDescent OptimizationAlgo = "stochastic_gradient_descent"

// Updater holds the update-rule hyperparameters a trainer would use.
// Nothing in this module applies them; they travel with the configuration.
type Updater struct {
	Name         string  `json:"name"`
	LearningRate float64 `json:"learning_rate"`
	Beta1        float64 `json:"beta1"`
	Beta2        float64 `json:"beta2"`
	Epsilon      float64 `json:"epsilon"`
}

// Adam returns the Adam update rule with its usual defaults.
func Adam() Updater {
	return Updater{Name: "adam", LearningRate: 1e-3, Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}
}

// DefaultSeed seeds weight initialisation for every network in this module.
const DefaultSeed int64 = 123

// NetConfig holds network-wide hyperparameters shared by every layer of a graph.
type NetConfig struct {
	Seed             int64             `json:"seed"`
	OptimizationAlgo OptimizationAlgo  `json:"optimization_algo"`
	Updater          Updater           `json:"updater"`
	WeightInit       layers.WeightInit `json:"weight_init"`
}

// NewNetConfig returns seed 123, SGD, Adam and Xavier initialisation.
func NewNetConfig() NetConfig {
	return NetConfig{
		Seed:             DefaultSeed,
		OptimizationAlgo: StochasticGradientDescent,
		Updater:          Adam(),
		WeightInit:       layers.Xavier,
	}
}

func (c NetConfig) WithSeed(seed int64) NetConfig {
	c.Seed = seed
	return c
}

func (c NetConfig) WithUpdater(u Updater) NetConfig {
	c.Updater = u
	return c
}

func (c NetConfig) WithWeightInit(w layers.WeightInit) NetConfig {
	c.WeightInit = w
	return c
}

// Validate checks the hyperparameters that graph init depends on.
func (c NetConfig) Validate() error {
	if err := c.WeightInit.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if c.Updater.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// GraphBuilder starts a graph that inherits these hyperparameters.
func (c NetConfig) GraphBuilder() *GraphBuilder {
	return &GraphBuilder{conf: c, names: make(map[string]bool)}
}
