package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/testutil"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestShardIndex(t *testing.T) {
	// Stable for the same user.
	require.Equal(t, ShardIndex("user1", 32), ShardIndex("user1", 32))
	require.Equal(t, 0, ShardIndex("user1", 1))
	require.Equal(t, 0, ShardIndex("user1", 0))

	used := map[int]bool{}
	for i := 0; i < 1000; i++ {
		s := ShardIndex(fmt.Sprintf("user-%d", i), 32)
		require.GreaterOrEqual(t, s, 0)
		require.Less(t, s, 32)
		used[s] = true
	}

	// Users spread over the shards.
	require.Greater(t, len(used), 24)
}

func TestDerivedLevel(t *testing.T) {
	require.Equal(t, int64(0), DerivedLevel(99, 100))
	require.Equal(t, int64(1), DerivedLevel(100, 100))
	require.Equal(t, int64(12), DerivedLevel(1250, 100))
	require.Equal(t, int64(0), DerivedLevel(1250, 0))
}

func TestAggregator_Fold(t *testing.T) {
	ctx := testutil.MockContext()
	cache := testutil.NewMemoryCache()
	a := NewAggregator(repository.NewCounterRepository(), cache)

	var want int64
	for i := 0; i < 50; i++ {
		_, err := a.ShardWrite(ctx, "2024-03-10", fmt.Sprintf("user-%d", i), int64(i+1))
		require.NoError(t, err)
		want += int64(i + 1)
	}

	// Another day is not mixed in.
	_, err := a.ShardWrite(ctx, "2024-03-11", "user-1", 1000)
	require.NoError(t, err)

	aggregate, err := a.Fold(ctx, "2024-03-10")
	require.NoError(t, err)
	require.Equal(t, want, aggregate.Total)
	require.Equal(t, want/100, aggregate.DerivedLevel)

	again, err := a.Fold(ctx, "2024-03-10")
	require.NoError(t, err)
	require.Equal(t, aggregate.Total, again.Total)
	require.Equal(t, aggregate.DerivedLevel, again.DerivedLevel)

	got, err := a.Get(ctx, "2024-03-10")
	require.NoError(t, err)
	require.Equal(t, want, got.Total)
}

func TestAggregator_GetWithoutFold(t *testing.T) {
	ctx := testutil.MockContext()
	a := NewAggregator(repository.NewCounterRepository(), nil)

	got, err := a.Get(ctx, "2024-03-10")
	require.NoError(t, err)
	require.Equal(t, "2024-03-10", got.Day)
	require.Equal(t, int64(0), got.Total)
}

func TestAggregator_FoldIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := testutil.MockContext()
		a := NewAggregator(repository.NewCounterRepository(), nil)

		amounts := rapid.SliceOfN(rapid.Int64Range(1, 50), 1, 20).Draw(t, "amounts")
		var want int64
		for i, amount := range amounts {
			if _, err := a.ShardWrite(ctx, "2024-03-10", fmt.Sprintf("u%d", i), amount); err != nil {
				t.Fatal(err)
			}
			want += amount
		}

		folds := rapid.IntRange(1, 4).Draw(t, "folds")
		for i := 0; i < folds; i++ {
			aggregate, err := a.Fold(ctx, "2024-03-10")
			if err != nil {
				t.Fatal(err)
			}
			if aggregate.Total != want {
				t.Fatalf("fold %d got %d, want %d", i, aggregate.Total, want)
			}
		}
	})
}

func TestAggregator_HandleShardChanged(t *testing.T) {
	ctx := testutil.MockContext()
	a := NewAggregator(repository.NewCounterRepository(), nil)

	_, err := a.ShardWrite(ctx, "2024-03-10", "user1", 7)
	require.NoError(t, err)

	msg, err := json.Marshal(common.ShardCounterChanged{Day: "2024-03-10", Shard: ShardIndex("user1", 32)})
	require.NoError(t, err)

	handle := func(ctx context.Context, msg []byte) error {
		return a.HandleShardChanged(ctx, common.ShardCounterTopic, &pubsub.Pack{Msg: msg}, time.Now())
	}

	// Duplicate delivery.
	require.NoError(t, handle(ctx, msg))
	require.NoError(t, handle(ctx, msg))

	aggregate, err := repository.NewCounterRepository().GetAggregate(ctx, "2024-03-10")
	require.NoError(t, err)
	require.Equal(t, int64(7), aggregate.Total)

	// Malformed events are dropped.
	require.NoError(t, handle(ctx, []byte("{")))
}
