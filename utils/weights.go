package utils

import (
	"encoding/json"
	"fmt"
	"os"

	"trajgan/nn"
	"trajgan/tensor"
)

// WeightsVersion is written into every exported weights file.
const WeightsVersion = "1.0"

// WeightData represents serializable weight data for a layer
type WeightData struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// ModelWeights represents all weights in a model
type ModelWeights struct {
	Version string                 `json:"version"`
	Seed    int64                  `json:"seed"`
	Layers  map[string]LayerWeight `json:"layers"`
}

// LayerWeight contains weights and bias for a layer
type LayerWeight struct {
	Weight *WeightData `json:"weight,omitempty"`
	Bias   *WeightData `json:"bias,omitempty"`
}

// SaveWeights saves model weights to a JSON file
func SaveWeights(filepath string, weights *ModelWeights) error {
	data, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadWeights loads model weights from a JSON file
func LoadWeights(filepath string) (*ModelWeights, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	var weights ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}
	return &weights, nil
}

// SaveConfig writes a graph configuration as indented JSON.
func SaveConfig(filepath string, cfg *nn.GraphConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath, data, 0644)
}

// ExportWeights copies the parameters of an initialized graph. Layers without
// parameters are left out.
func ExportWeights(g *nn.ComputationGraph) (*ModelWeights, error) {
	if !g.Initialized() {
		return nil, nn.ErrNotInitialized
	}
	mw := &ModelWeights{
		Version: WeightsVersion,
		Seed:    g.Config.Net.Seed,
		Layers:  make(map[string]LayerWeight),
	}
	for _, v := range g.Config.Vertices {
		p := g.Params(v.Name)
		if p.NumParams() == 0 {
			continue
		}
		var lw LayerWeight
		if p.W != nil {
			lw.Weight = TensorToWeightData(v.Name+"_W", p.W)
		}
		if p.B != nil {
			lw.Bias = TensorToWeightData(v.Name+"_b", p.B)
		}
		mw.Layers[v.Name] = lw
	}
	return mw, nil
}

// ImportWeights overwrites the parameters of an initialized graph. Every
// parameterized layer must be present with matching shapes.
func ImportWeights(g *nn.ComputationGraph, mw *ModelWeights) error {
	if !g.Initialized() {
		return nn.ErrNotInitialized
	}
	for _, v := range g.Config.Vertices {
		p := g.Params(v.Name)
		if p.NumParams() == 0 {
			continue
		}
		lw, ok := mw.Layers[v.Name]
		if !ok {
			return fmt.Errorf("no weights for layer %q", v.Name)
		}
		if err := copyInto(p.W, lw.Weight); err != nil {
			return fmt.Errorf("layer %q weight: %w", v.Name, err)
		}
		if err := copyInto(p.B, lw.Bias); err != nil {
			return fmt.Errorf("layer %q bias: %w", v.Name, err)
		}
	}
	return nil
}

func copyInto(dst *tensor.Tensor, wd *WeightData) error {
	if dst == nil {
		return nil
	}
	if wd == nil {
		return fmt.Errorf("missing")
	}
	if !tensor.SameShape(dst.Shape, wd.Shape) || len(wd.Data) != len(dst.Data) {
		return fmt.Errorf("shape %v does not match %v", wd.Shape, dst.Shape)
	}
	copy(dst.Data, wd.Data)
	return nil
}

// TensorToWeightData converts a tensor to serializable weight data
func TensorToWeightData(name string, t *tensor.Tensor) *WeightData {
	return &WeightData{
		Name:  name,
		Shape: append([]int{}, t.Shape...),
		Data:  append([]float64{}, t.Data...), // copy
	}
}

// WeightDataToTensor converts weight data back to a tensor
func WeightDataToTensor(wd *WeightData) *tensor.Tensor {
	t := tensor.New(wd.Shape...)
	copy(t.Data, wd.Data)
	return t
}
