package tensor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReshapeKeepsData(t *testing.T) {
	x := New(2, 3)
	for i := range x.Data {
		x.Data[i] = float64(i)
	}
	y, err := x.Reshape(3, 2)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, y.Shape)
	require.Equal(t, x.Data, y.Data)
	require.Equal(t, 3.0, y.At(1, 1))

	// the copy is independent
	y.Data[0] = 42
	require.Equal(t, 0.0, x.Data[0])

	_, err = x.Reshape(4, 2)
	require.Error(t, err)
}

func TestSqueeze(t *testing.T) {
	x := New(1, 3, 4)
	y, err := x.Squeeze(0)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, y.Shape)

	_, err = x.Squeeze(1)
	require.Error(t, err)
	_, err = x.Squeeze(3)
	require.Error(t, err)
}

func TestAtSet(t *testing.T) {
	x := New(2, 2, 2)
	x.Set(7, 1, 0, 1)
	require.Equal(t, 7.0, x.Data[5])
	require.Equal(t, 7.0, x.At(1, 0, 1))
	require.Panics(t, func() { x.At(2, 0, 0) })
	require.Panics(t, func() { x.At(0, 0) })
}

func TestNumelAndSameShape(t *testing.T) {
	require.Equal(t, 24, Numel([]int{2, 3, 4}))
	require.Equal(t, 1, Numel(nil))
	require.True(t, SameShape([]int{3, 128}, []int{3, 128}))
	require.False(t, SameShape([]int{3, 128}, []int{128, 3}))
	require.False(t, SameShape([]int{3}, []int{3, 1}))
}
