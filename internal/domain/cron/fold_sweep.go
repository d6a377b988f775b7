package cron

import (
	"context"
	"time"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/domain/aggregate"
	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

// FoldSweepCronJob folds the current and the previous day, so a lost shard event only delays
// the aggregate until the next sweep.
type FoldSweepCronJob struct {
	aggregator *aggregate.Aggregator
	resolver   *dayboundary.Resolver
	schedule   *Schedule
}

func NewFoldSweepCronJob(
	ctx context.Context,
	aggregator *aggregate.Aggregator,
	resolver *dayboundary.Resolver,
) (*FoldSweepCronJob, error) {
	schedule, err := ParseSchedule(xcontext.Configs(ctx).Leaderboard.FoldSweepCron, resolver.Location())
	if err != nil {
		return nil, err
	}

	return &FoldSweepCronJob{aggregator: aggregator, resolver: resolver, schedule: schedule}, nil
}

func (job *FoldSweepCronJob) Do(ctx context.Context) {
	today := job.resolver.DayID(xcontext.Now(ctx))
	yesterday, err := dayboundary.PreviousDayID(today)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid day %s: %v", today, err)
		return
	}

	for _, day := range []string{yesterday, today} {
		result, err := job.aggregator.Fold(ctx, day)
		if err != nil {
			common.PromCounters[common.FoldTotal].WithLabelValues("failure").Inc()
			xcontext.Logger(ctx).Errorf("Cannot fold aggregate of %s: %v", day, err)
			continue
		}

		common.PromCounters[common.FoldTotal].WithLabelValues("success").Inc()
		common.PromGauges[common.DailyAggregateTotal].WithLabelValues(day).Set(float64(result.Total))
	}
}

func (job *FoldSweepCronJob) RunNow() bool {
	return true
}

func (job *FoldSweepCronJob) Next() time.Time {
	return job.schedule.Next(time.Now())
}
