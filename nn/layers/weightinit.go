package layers

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// WeightInit selects how a layer's weights are drawn at graph init.
type WeightInit string

const (
	// Xavier draws from N(0, 2/(fanIn+fanOut)).
	Xavier WeightInit = "xavier"
	// XavierUniform draws from U(-s, s) with s = sqrt(6/(fanIn+fanOut)).
	XavierUniform WeightInit = "xavier_uniform"
	Zero          WeightInit = "zero"
)

// Validate returns an error for an unknown scheme.
func (w WeightInit) Validate() error {
	switch w {
	case Xavier, XavierUniform, Zero:
		return nil
	}
	return fmt.Errorf("unsupported weight init: %q", string(w))
}

// Fill overwrites data with draws from the scheme, using src so that a fixed
// seed gives identical weights on every run.
func (w WeightInit) Fill(data []float64, fanIn, fanOut int, src rand.Source) {
	var draw func() float64
	switch w {
	case Xavier:
		dist := distuv.Normal{
			Mu:    0,
			Sigma: math.Sqrt(2 / float64(fanIn+fanOut)),
			Src:   src,
		}
		draw = dist.Rand
	case XavierUniform:
		s := math.Sqrt(6 / float64(fanIn+fanOut))
		dist := distuv.Uniform{
			Min: -s,
			Max: s,
			Src: src,
		}
		draw = dist.Rand
	default:
		for i := range data {
			data[i] = 0
		}
		return
	}
	for i := range data {
		data[i] = draw()
	}
}
