package caching

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mapCache map[string][]byte

func (m mapCache) Get(_ context.Context, key string, target any) error {
	b, ok := m[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(b, target)
}

func (m mapCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m[key] = b
	return nil
}

func (m mapCache) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type aggregate struct {
	Total int64
}

func TestUseCache(t *testing.T) {
	ctx := context.Background()
	c := mapCache{}

	calls := 0
	load := func() (aggregate, error) {
		calls++
		return aggregate{Total: 42}, nil
	}

	v, err := UseCache(ctx, c, "aggregate:2024-03-10", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, int64(42), v.Total)

	v, err = UseCache(ctx, c, "aggregate:2024-03-10", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, int64(42), v.Total)
	require.Equal(t, 1, calls)

	_, err = UseCache(ctx, c, "other", time.Minute, func() (aggregate, error) {
		return aggregate{}, errors.New("db down")
	})
	require.Error(t, err)
	_, ok := c["other"]
	require.False(t, ok)
}
