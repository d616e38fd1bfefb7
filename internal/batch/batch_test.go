package batch

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID string
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = strconv.Itoa(i + 1)
	}
	return ids
}

func TestFetch_ToleratesIndividualFailure(t *testing.T) {
	ids := makeIDs(25)

	results := Fetch[record](context.Background(), ids, 10, func(ctx context.Context, id string) (*record, error) {
		if id == "7" {
			return nil, errors.New("rejected")
		}
		return &record{ID: id}, nil
	})

	require.Len(t, results, 25)
	for _, id := range ids {
		rec, ok := results[id]
		require.True(t, ok, "missing entry for %s", id)
		if id == "7" {
			assert.Nil(t, rec)
			continue
		}
		require.NotNil(t, rec)
		assert.Equal(t, id, rec.ID)
	}
}

func TestFetch_BoundsConcurrencyPerChunk(t *testing.T) {
	var inFlight, peak int32
	var mu sync.Mutex
	var order []string

	Fetch[record](context.Background(), makeIDs(25), 10, func(ctx context.Context, id string) (*record, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		order = append(order, id)
		mu.Unlock()
		atomic.AddInt32(&inFlight, -1)
		return &record{ID: id}, nil
	})

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(10))
	require.Len(t, order, 25)

	// every id of chunk N completes before any id of chunk N+1
	chunkOf := func(id string) int {
		n, _ := strconv.Atoi(id)
		return (n - 1) / 10
	}
	for i := 1; i < len(order); i++ {
		assert.LessOrEqual(t, chunkOf(order[i-1]), chunkOf(order[i]))
	}
}

func TestFetch_NilRecordIsNotAnError(t *testing.T) {
	results := Fetch[record](context.Background(), []string{"1", "2"}, 0, func(ctx context.Context, id string) (*record, error) {
		return nil, nil
	})

	assert.Len(t, results, 2)
	assert.Nil(t, results["1"])
}

func TestFetch_Empty(t *testing.T) {
	results := Fetch[record](context.Background(), nil, 10, func(ctx context.Context, id string) (*record, error) {
		t.Fatal("unexpected call")
		return nil, nil
	})

	assert.Empty(t, results)
}

func TestFetch_RepeatedIDsFetchedOnce(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}

	results := Fetch[record](context.Background(), []string{"1", "2", "1", "3", "2"}, 2, func(ctx context.Context, id string) (*record, error) {
		mu.Lock()
		calls[id]++
		n := calls[id]
		mu.Unlock()
		if n > 1 {
			return nil, errors.New("fetched twice")
		}
		return &record{ID: id}, nil
	})

	assert.Equal(t, map[string]int{"1": 1, "2": 1, "3": 1}, calls)
	require.Len(t, results, 3)
	for _, id := range []string{"1", "2", "3"} {
		require.NotNil(t, results[id])
		assert.Equal(t, id, results[id].ID)
	}
}
