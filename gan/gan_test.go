package gan

import (
	"fmt"
	"testing"

	"trajgan/nn"
	"trajgan/tensor"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestGeneratorConfigShapes(t *testing.T) {
	cfg, err := GeneratorConfig(32, 64, 128)
	require.NoError(t, err)

	want := map[string][]int{
		"layer1":     {2048},
		"lambda":     {64, 32},
		"convTrans1": {64, 64},
		"convTrans2": {64, 128},
		"conv1d":     {3, 128},
	}
	for name, shape := range want {
		got, ok := cfg.OutputShape(name)
		require.True(t, ok, name)
		require.Equal(t, shape, got, name)
	}
	require.Equal(t, []string{GeneratorOutput}, cfg.Outputs)
	require.Equal(t, int64(123), cfg.Net.Seed)
	require.Equal(t, "adam", cfg.Net.Updater.Name)
}

func TestDiscriminatorConfigShapes(t *testing.T) {
	cfg, err := DiscriminatorConfig(128, 64)
	require.NoError(t, err)

	want := map[string][]int{
		"lambda":   {3, 128},
		"conv1d_1": {64, 64},
		"conv1d_2": {64, 32},
		"conv1d_3": {64, 16},
		"lambda2":  {1024},
		"dense1":   {1},
	}
	for name, shape := range want {
		got, ok := cfg.OutputShape(name)
		require.True(t, ok, name)
		require.Equal(t, shape, got, name)
	}
	v, ok := cfg.Vertex("dense1")
	require.True(t, ok)
	require.Equal(t, []int{1024}, v.InShape)
}

func TestOutputShapesAcrossSizes(t *testing.T) {
	for _, noise := range []int{1, 7, 32} {
		for _, hidden := range []int{1, 4, 10} {
			for _, length := range []int{8, 16, 40, 128} {
				t.Run(fmt.Sprintf("n%d_h%d_l%d", noise, hidden, length), func(t *testing.T) {
					g, err := GeneratorConfig(noise, hidden, length)
					require.NoError(t, err)
					shape, _ := g.OutputShape(GeneratorOutput)
					require.Equal(t, []int{3, length}, shape)

					d, err := DiscriminatorConfig(length, hidden)
					require.NoError(t, err)
					shape, _ = d.OutputShape(DiscriminatorOutput)
					require.Equal(t, []int{1}, shape)
					shape, _ = d.OutputShape(DiscriminatorFeatures)
					require.Equal(t, []int{hidden * length / 8}, shape)
				})
			}
		}
	}
}

func TestInvalidSizes(t *testing.T) {
	generator := [][3]int{{0, 64, 128}, {32, -1, 128}, {32, 64, 0}, {32, 64, 126}}
	for _, c := range generator {
		_, err := GeneratorConfig(c[0], c[1], c[2])
		require.ErrorIs(t, err, nn.ErrInvalidConfiguration, "%v", c)
	}
	discriminator := [][2]int{{0, 64}, {128, 0}, {-8, 64}, {100, 64}}
	for _, c := range discriminator {
		_, err := DiscriminatorConfig(c[0], c[1])
		require.ErrorIs(t, err, nn.ErrInvalidConfiguration, "%v", c)
	}
}

func TestGenerateAndScore(t *testing.T) {
	gen, err := NewGenerator(8, 4, 16)
	require.NoError(t, err)
	disc, err := NewDiscriminator(16, 4)
	require.NoError(t, err)

	noise := SampleNoise(8, rand.NewSource(1))
	traj, err := gen.Generate(noise)
	require.NoError(t, err)
	require.Equal(t, []int{3, 16}, traj.Shape)
	for _, v := range traj.Data {
		require.True(t, v >= -1 && v <= 1)
	}

	score, err := disc.Score(traj)
	require.NoError(t, err)

	// the dense head over the features reproduces the full score
	features, err := disc.Features(traj)
	require.NoError(t, err)
	require.Len(t, features, 4*16/8)
	head, params := disc.Head()
	affine := head.Affine(params, features)
	require.InDelta(t, score, head.Activation.Apply(affine[0]), 1e-12)

	// [1, 3, L] input gives the same score
	batched, err := traj.Reshape(1, 3, 16)
	require.NoError(t, err)
	again, err := disc.Score(batched)
	require.NoError(t, err)
	require.Equal(t, score, again)

	_, err = gen.Generate(make([]float64, 9))
	require.Error(t, err)
	_, err = disc.Score(tensor.New(3, 8))
	require.Error(t, err)
}

func TestSeededModelsAgree(t *testing.T) {
	a, err := NewDiscriminator(16, 4)
	require.NoError(t, err)
	b, err := NewDiscriminator(16, 4)
	require.NoError(t, err)
	_, pa := a.Head()
	_, pb := b.Head()
	require.Equal(t, pa.W.Data, pb.W.Data)
}
