// Package aggregate maintains the global per-day total as N shard counters which are folded into
// a single DailyAggregate row.
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/caching"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
)

// ShardIndex maps a user to a shard. The hash is stable across processes and restarts.
func ShardIndex(userID string, shardCount int) int {
	if shardCount <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(userID) % uint64(shardCount))
}

// DerivedLevel is floor(total / levelStep). A non-positive step yields level zero.
func DerivedLevel(total, levelStep int64) int64 {
	if levelStep <= 0 || total <= 0 {
		return 0
	}
	return total / levelStep
}

type Aggregator struct {
	counterRepo repository.CounterRepository
	cache       caching.Cache
}

func NewAggregator(counterRepo repository.CounterRepository, cache caching.Cache) *Aggregator {
	return &Aggregator{counterRepo: counterRepo, cache: cache}
}

// ShardWrite adds amount to the shard of userID for day. It joins the transaction of ctx if any.
func (a *Aggregator) ShardWrite(ctx context.Context, day, userID string, amount int64) (int, error) {
	shard := ShardIndex(userID, xcontext.Configs(ctx).Ledger.ShardCount)
	if amount == 0 {
		return shard, nil
	}

	if err := a.counterRepo.IncreaseShard(ctx, day, shard, amount); err != nil {
		return shard, err
	}

	return shard, nil
}

// Fold recomputes the aggregate of day from every shard. Running it any number of times over
// the same shard values produces the same aggregate.
func (a *Aggregator) Fold(ctx context.Context, day string) (*entity.DailyAggregate, error) {
	shards, err := a.counterRepo.GetShards(ctx, day)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get shards of day %s: %v", day, err)
		return nil, err
	}

	var total int64
	for _, s := range shards {
		total += s.Amount
	}

	aggregate := &entity.DailyAggregate{
		Day:          day,
		Total:        total,
		DerivedLevel: DerivedLevel(total, xcontext.Configs(ctx).Ledger.LevelStep),
	}

	if err := a.counterRepo.UpsertAggregate(ctx, aggregate); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write aggregate of day %s: %v", day, err)
		return nil, err
	}

	if a.cache != nil {
		err := a.cache.Set(ctx, cacheKey(day), *aggregate, xcontext.Configs(ctx).Ledger.AggregateCacheTTL)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot refresh aggregate cache of day %s: %v", day, err)
		}
	}

	return aggregate, nil
}

// Get returns the last folded aggregate of day. A day without any fold yet reads as zero.
func (a *Aggregator) Get(ctx context.Context, day string) (entity.DailyAggregate, error) {
	load := func() (entity.DailyAggregate, error) {
		aggregate, err := a.counterRepo.GetAggregate(ctx, day)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.DailyAggregate{Day: day}, nil
			}
			return entity.DailyAggregate{}, err
		}

		return *aggregate, nil
	}

	if a.cache == nil {
		return load()
	}

	return caching.UseCache(ctx, a.cache, cacheKey(day), xcontext.Configs(ctx).Ledger.AggregateCacheTTL, load)
}

func cacheKey(day string) string {
	return fmt.Sprintf("aggregate:%s", day)
}
