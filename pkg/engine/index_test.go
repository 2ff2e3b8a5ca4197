package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderIndex_PutGetDelete(t *testing.T) {
	idx := newOrderIndex()

	_, ok := idx.get(1)
	assert.False(t, ok)

	o, err := NewLimitOrder(1, "user", Buy, fpdecimal.FromFloat(1.0), fpdecimal.FromFloat(100.0), 1, time.Now())
	require.NoError(t, err)
	idx.put(1, &orderRef{order: o})

	ref, ok := idx.get(1)
	require.True(t, ok)
	assert.Equal(t, o, ref.order)
	assert.Equal(t, 1, idx.len())

	idx.delete(1)
	_, ok = idx.get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, idx.len())
}

func TestOrderIndex_ConcurrentAccess(t *testing.T) {
	idx := newOrderIndex()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				id := uint64(w*500 + i + 1)
				o, err := NewLimitOrder(id, "user", Buy, fpdecimal.FromFloat(1.0), fpdecimal.FromFloat(100.0), id, time.Now())
				if err != nil {
					t.Error(err)
					return
				}
				idx.put(id, &orderRef{order: o})
				if _, ok := idx.get(id); !ok {
					t.Errorf("order %d missing after put", id)
					return
				}
				if i%2 == 0 {
					idx.delete(id)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 8*250, idx.len())
}
