package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/pkg/kafka"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startSubscriber(*cli.Context) error {
	if err := s.loadWorker(); err != nil {
		return err
	}

	handlers := pubsub.Router{
		common.DailyCounterTopic: s.trigger.HandleDailyCounterChanged,
		common.ShardCounterTopic: s.aggregator.HandleShardChanged,
	}

	subscriber, err := kafka.NewSubscriber(
		"ledger-subscriber",
		xcontext.Configs(s.ctx).Kafka.Addrs,
		handlers.Topics(),
		handlers.Handle,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(ctx).Infof("Started subscriber of %v", handlers.Topics())
	subscriber.Subscribe(ctx)
	return subscriber.Stop(s.ctx)
}
