package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/ledger/internal/domain/cron"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	if err := s.loadWorker(); err != nil {
		return err
	}

	snapshotJob, err := cron.NewLeaderboardSnapshotCronJob(s.ctx, s.leaderboardRepo, s.resolver, s.redsync)
	if err != nil {
		return err
	}

	foldSweepJob, err := cron.NewFoldSweepCronJob(s.ctx, s.aggregator, s.resolver)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(ctx, snapshotJob, foldSweepJob)
	return nil
}
