// Package statistic serves the season leaderboard from a redis sorted set backed by the
// season_scores table.
package statistic

import (
	"context"
	"errors"

	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/questx-lab/ledger/pkg/xredis"
	"github.com/redis/go-redis/v9"
)

const loadBatchSize = 1000

type Leaderboard interface {
	GetLeaderBoard(ctx context.Context, season string, offset, limit int) ([]model.UserStatistic, error)

	// GetRank returns the 1-based rank of user, or 0 if the user has no score in the season.
	GetRank(ctx context.Context, userID, season string) (uint64, error)

	ChangeSeasonScore(ctx context.Context, season, userID string, value int64) error
}

type leaderboard struct {
	leaderboardRepo repository.LeaderboardRepository
	redisClient     xredis.Client
}

func New(leaderboardRepo repository.LeaderboardRepository, redisClient xredis.Client) *leaderboard {
	return &leaderboard{leaderboardRepo: leaderboardRepo, redisClient: redisClient}
}

func (l *leaderboard) GetLeaderBoard(
	ctx context.Context, season string, offset, limit int,
) ([]model.UserStatistic, error) {
	key := redisKeySeasonLeaderBoard(season)
	if err := l.ensureLoaded(ctx, season); err != nil {
		return nil, err
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	leaderboard := []model.UserStatistic{}
	for i, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			xcontext.Logger(ctx).Errorf("Invalid member of %s: %v", key, z.Member)
			return nil, errorx.Unknown
		}

		leaderboard = append(leaderboard, model.UserStatistic{
			User:        model.ConvertShortUser(member),
			Value:       int64(z.Score),
			CurrentRank: offset + i + 1,
		})
	}

	return leaderboard, nil
}

func (l *leaderboard) GetRank(ctx context.Context, userID, season string) (uint64, error) {
	if err := l.ensureLoaded(ctx, season); err != nil {
		return 0, err
	}

	rank, err := l.redisClient.ZRevRank(ctx, redisKeySeasonLeaderBoard(season), userID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get rank from redis: %v", err)
		return 0, errorx.Unknown
	}

	return rank + 1, nil
}

// ChangeSeasonScore updates the cached leaderboard after the database has been changed. A missing
// key is left alone, the next read loads it from the database.
func (l *leaderboard) ChangeSeasonScore(ctx context.Context, season, userID string, value int64) error {
	key := redisKeySeasonLeaderBoard(season)
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	if !ok {
		return nil
	}

	if err := l.redisClient.ZIncrBy(ctx, key, value, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call ZIncrBy redis: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *leaderboard) ensureLoaded(ctx context.Context, season string) error {
	ok, err := l.redisClient.Exist(ctx, redisKeySeasonLeaderBoard(season))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	// If the key didn't exist in redis, load it from database.
	if !ok {
		return l.loadLeaderboardFromDB(ctx, season)
	}

	return nil
}

func (l *leaderboard) loadLeaderboardFromDB(ctx context.Context, season string) error {
	key := redisKeySeasonLeaderBoard(season)
	for offset := 0; ; offset += loadBatchSize {
		scores, err := l.leaderboardRepo.GetTopSeasonScores(ctx, season, offset, loadBatchSize)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot load season scores from database: %v", err)
			return errorx.Unknown
		}

		if len(scores) == 0 {
			return nil
		}

		members := make([]redis.Z, 0, len(scores))
		for _, s := range scores {
			members = append(members, redis.Z{Member: s.UserID, Score: float64(s.Score)})
		}

		if err := l.redisClient.ZAdd(ctx, key, members...); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
			return errorx.Unknown
		}

		if len(scores) < loadBatchSize {
			return nil
		}
	}
}
