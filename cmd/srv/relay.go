package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/ledger/internal/domain/outbox"
	"github.com/questx-lab/ledger/pkg/kafka"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRelay(*cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	s.loadRepos()

	publisher, err := kafka.NewPublisher("ledger-relay", xcontext.Configs(s.ctx).Kafka.Addrs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(ctx).Infof("Started outbox relay")
	outbox.NewRelay(s.outboxRepo, publisher).Run(ctx)
	return publisher.Stop(s.ctx)
}
