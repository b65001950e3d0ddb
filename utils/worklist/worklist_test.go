package worklist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartIsFIFO(t *testing.T) {
	var order []int
	Start(1, func(next int, add func(int)) {
		order = append(order, next)
		if next < 4 {
			add(next * 2)
			add(next*2 + 1)
		}
	})
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, order)
}

func TestReclaim(t *testing.T) {
	w := Empty[int]()
	for i := 0; i < 100; i++ {
		w.Add(i)
	}
	for i := 0; i < 90; i++ {
		require.Equal(t, i, w.GetNext())
	}
	require.Equal(t, 10, w.Len())
	w.Add(100)
	for i := 90; i <= 100; i++ {
		require.Equal(t, i, w.GetNext())
	}
	require.True(t, w.IsEmpty())
	require.Zero(t, w.GetNext())
}
