package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type area struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func TestLayeredCache_LocalOnly(t *testing.T) {
	c := NewLayeredCache(nil, time.Minute)
	ctx := context.Background()

	var got []area
	found, err := c.Get(ctx, "areas", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "areas", []area{{Code: "1", Name: "서울"}}, time.Minute))

	found, err = c.Get(ctx, "areas", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []area{{Code: "1", Name: "서울"}}, got)

	require.NoError(t, c.Delete(ctx, "areas"))
	found, _ = c.Get(ctx, "areas", &got)
	assert.False(t, found)
}

func TestLayeredCache_Expiry(t *testing.T) {
	c := NewLayeredCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	var got string
	found, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetOrLoad(t *testing.T) {
	c := NewLayeredCache(nil, time.Minute)
	ctx := context.Background()
	loads := 0
	load := func(ctx context.Context) ([]area, error) {
		loads++
		return []area{{Code: "6", Name: "부산"}}, nil
	}

	first, err := GetOrLoad(ctx, c, "areas", time.Minute, load)
	require.NoError(t, err)
	second, err := GetOrLoad(ctx, c, "areas", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestGetOrLoad_ErrorIsNotCached(t *testing.T) {
	c := NewLayeredCache(nil, time.Minute)
	ctx := context.Background()

	_, err := GetOrLoad(ctx, c, "k", time.Minute, func(ctx context.Context) (string, error) {
		return "", errors.New("upstream down")
	})
	require.Error(t, err)

	v, err := GetOrLoad(ctx, c, "k", time.Minute, func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}
