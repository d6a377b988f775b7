package cron

import (
	"context"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

// LeaderboardSnapshotCronJob copies the top of the current season into a snapshot keyed by the
// local date. Running it twice for a date writes the same rows again.
type LeaderboardSnapshotCronJob struct {
	leaderboardRepo repository.LeaderboardRepository
	resolver        *dayboundary.Resolver
	schedule        *Schedule

	// rs is optional. With several cron replicas it keeps the job to one of them.
	rs *redsync.Redsync
}

func NewLeaderboardSnapshotCronJob(
	ctx context.Context,
	leaderboardRepo repository.LeaderboardRepository,
	resolver *dayboundary.Resolver,
	rs *redsync.Redsync,
) (*LeaderboardSnapshotCronJob, error) {
	schedule, err := ParseSchedule(xcontext.Configs(ctx).Leaderboard.SnapshotCron, resolver.Location())
	if err != nil {
		return nil, err
	}

	return &LeaderboardSnapshotCronJob{
		leaderboardRepo: leaderboardRepo,
		resolver:        resolver,
		schedule:        schedule,
		rs:              rs,
	}, nil
}

func (job *LeaderboardSnapshotCronJob) Do(ctx context.Context) {
	now := xcontext.Now(ctx)
	date := now.In(job.resolver.Location()).Format(dayboundary.DayLayout)

	if job.rs != nil {
		mutex := job.rs.NewMutex(common.RedisKeySnapshotLock(date),
			redsync.WithExpiry(xcontext.Configs(ctx).Leaderboard.SnapshotLockTTL),
			redsync.WithTries(1),
		)
		if err := mutex.LockContext(ctx); err != nil {
			// Usually another replica holds the lock.
			xcontext.Logger(ctx).Warnf("Cannot lock snapshot of %s: %v", date, err)
			return
		}
		defer func() {
			if _, err := mutex.UnlockContext(ctx); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot unlock snapshot of %s: %v", date, err)
			}
		}()
	}

	season := dayboundary.Season(job.resolver.DayID(now))
	n, err := job.Snapshot(ctx, date, season)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot snapshot leaderboard of %s: %v", date, err)
		return
	}

	xcontext.Logger(ctx).Infof("Snapshot of %s saved %d records of season %s", date, n, season)
}

// Snapshot replaces the snapshot of date with the top of season.
func (job *LeaderboardSnapshotCronJob) Snapshot(ctx context.Context, date, season string) (int, error) {
	cfg := xcontext.Configs(ctx).Leaderboard

	scores, err := job.leaderboardRepo.GetTopSeasonScores(ctx, season, 0, cfg.SnapshotSize)
	if err != nil {
		return 0, err
	}

	createdAt := xcontext.Now(ctx)
	records := make([]entity.LeaderboardSnapshot, 0, len(scores))
	for i, s := range scores {
		records = append(records, entity.LeaderboardSnapshot{
			Date:      date,
			Rank:      i + 1,
			Season:    season,
			UserID:    s.UserID,
			Score:     s.Score,
			CreatedAt: createdAt,
		})
	}

	err = xcontext.RunInTransaction(ctx, xcontext.Configs(ctx).Ledger.TransactionRetry,
		func(ctx context.Context) error {
			return job.leaderboardRepo.ReplaceSnapshot(ctx, date, records, cfg.SnapshotBatch)
		})
	if err != nil {
		return 0, err
	}

	return len(records), nil
}

func (job *LeaderboardSnapshotCronJob) RunNow() bool {
	return false
}

func (job *LeaderboardSnapshotCronJob) Next() time.Time {
	return job.schedule.Next(time.Now())
}
