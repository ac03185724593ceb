package layers

import (
	"fmt"
	"math"
	"strings"
)

// Activation names an elementwise nonlinearity applied after a layer's
// affine part.
type Activation string

const (
	Identity  Activation = "identity"
	ReLU      Activation = "relu"
	LeakyReLU Activation = "leakyrelu"
	Tanh      Activation = "tanh"
	Sigmoid   Activation = "sigmoid"
)

// LeakyReLUAlpha is the negative-side slope of LeakyReLU.
const LeakyReLUAlpha = 0.01

// SupportedActivations maps every known activation to its scalar function.
var SupportedActivations = map[Activation]func(float64) float64{
	Identity: func(x float64) float64 { return x },
	ReLU: func(x float64) float64 {
		if x > 0 {
			return x
		}
		return 0
	},
	LeakyReLU: func(x float64) float64 {
		if x > 0 {
			return x
		}
		return LeakyReLUAlpha * x
	},
	Tanh:    math.Tanh,
	Sigmoid: func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
}

// ParseActivation resolves a case-insensitive activation name.
func ParseActivation(name string) (Activation, error) {
	a := Activation(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := SupportedActivations[a]; !ok {
		return "", fmt.Errorf("unsupported activation: %q", name)
	}
	return a, nil
}

// Validate returns an error for an activation with no known function.
// The empty activation is treated as Identity.
func (a Activation) Validate() error {
	if a == "" {
		return nil
	}
	if _, ok := SupportedActivations[a]; !ok {
		return fmt.Errorf("unsupported activation: %q", string(a))
	}
	return nil
}

// Apply evaluates the activation on a single value.
func (a Activation) Apply(x float64) float64 {
	if a == "" {
		return x
	}
	return SupportedActivations[a](x)
}

// ApplyAll evaluates the activation in place over data.
func (a Activation) ApplyAll(data []float64) {
	if a == "" || a == Identity {
		return
	}
	f := SupportedActivations[a]
	for i, v := range data {
		data[i] = f(v)
	}
}
