package atomicbitops

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt32Concurrent(t *testing.T) {
	var c Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(1)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(100), c.Load())
}

func TestInt32CompareAndSwap(t *testing.T) {
	var c Int32
	c.Store(5)
	require.True(t, c.CompareAndSwap(5, 9))
	require.False(t, c.CompareAndSwap(5, 10))
	require.Equal(t, int32(9), c.Load())
}

func TestInt64Add(t *testing.T) {
	var c Int64
	require.Equal(t, int64(3), c.Add(3))
	require.Equal(t, int64(3), c.Load())
}
