package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trajgan/gan"
	"trajgan/nn"
	"trajgan/tensor"

	"github.com/stretchr/testify/require"
)

func TestTensorToWeightData(t *testing.T) {
	ten := tensor.New(2, 3)
	for i := range ten.Data {
		ten.Data[i] = float64(i) * 0.5
	}

	wd := TensorToWeightData("test_weight", ten)
	require.Equal(t, "test_weight", wd.Name)
	require.Equal(t, []int{2, 3}, wd.Shape)
	require.Len(t, wd.Data, 6)
	for i, v := range wd.Data {
		require.Equal(t, float64(i)*0.5, v)
	}

	// the copy is independent of the source tensor
	ten.Data[0] = 42
	require.Zero(t, wd.Data[0])
}

func TestWeightDataToTensor(t *testing.T) {
	wd := &WeightData{Name: "test", Shape: []int{3, 4}, Data: make([]float64, 12)}
	for i := range wd.Data {
		wd.Data[i] = float64(i)
	}

	ten := WeightDataToTensor(wd)
	require.Equal(t, []int{3, 4}, ten.Shape)
	require.Equal(t, wd.Data, ten.Data)
}

func initializedDiscriminator(t *testing.T) *nn.ComputationGraph {
	t.Helper()
	d, err := gan.NewDiscriminator(16, 4)
	require.NoError(t, err)
	return d.ComputationGraph
}

func TestExportImportWeights(t *testing.T) {
	g := initializedDiscriminator(t)

	mw, err := ExportWeights(g)
	require.NoError(t, err)
	require.Equal(t, WeightsVersion, mw.Version)
	require.Equal(t, nn.DefaultSeed, mw.Seed)
	require.Len(t, mw.Layers, 4) // three convolutions and the dense head
	require.NotContains(t, mw.Layers, "lambda")

	path := filepath.Join(t.TempDir(), "weights.json")
	require.NoError(t, SaveWeights(path, mw))
	loaded, err := LoadWeights(path)
	require.NoError(t, err)
	require.Equal(t, mw, loaded)

	other := nn.NewComputationGraph(g.Config)
	require.NoError(t, other.Init())
	for i := range other.Params("dense1").W.Data {
		other.Params("dense1").W.Data[i] = 0
	}
	require.NoError(t, ImportWeights(other, loaded))
	require.Equal(t, g.Params("dense1").W.Data, other.Params("dense1").W.Data)
	require.Equal(t, g.Params("conv1d_2").B.Data, other.Params("conv1d_2").B.Data)
}

func TestImportWeightsRejectsMismatch(t *testing.T) {
	g := initializedDiscriminator(t)
	mw, err := ExportWeights(g)
	require.NoError(t, err)

	delete(mw.Layers, "dense1")
	require.ErrorContains(t, ImportWeights(g, mw), `no weights for layer "dense1"`)

	mw, err = ExportWeights(g)
	require.NoError(t, err)
	mw.Layers["conv1d_1"].Weight.Shape = []int{1, 1}
	require.ErrorContains(t, ImportWeights(g, mw), "does not match")
}

func TestWeightsRequireInit(t *testing.T) {
	g := nn.NewComputationGraph(initializedDiscriminator(t).Config)
	_, err := ExportWeights(g)
	require.ErrorIs(t, err, nn.ErrNotInitialized)
	require.ErrorIs(t, ImportWeights(g, &ModelWeights{}), nn.ErrNotInitialized)
}

func TestSaveConfig(t *testing.T) {
	g := initializedDiscriminator(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveConfig(path, g.Config))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `"dense1"`))
	require.True(t, strings.Contains(string(data), "X.squeeze(1)"))
}

func TestLoadWeightsNotFound(t *testing.T) {
	_, err := LoadWeights("/nonexistent/path/weights.json")
	require.Error(t, err)
}

func TestLoadWeightsInvalidJSON(t *testing.T) {
	badFile := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badFile, []byte("not valid json"), 0644))

	_, err := LoadWeights(badFile)
	require.Error(t, err)
}
