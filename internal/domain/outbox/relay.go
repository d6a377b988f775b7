package outbox

import (
	"context"
	"time"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

// Relay publishes undelivered events in id order. An event is marked delivered only after the
// publisher acknowledged it, so a crash between the two publishes it again.
type Relay struct {
	outboxRepo repository.OutboxRepository
	publisher  pubsub.Publisher
}

func NewRelay(outboxRepo repository.OutboxRepository, publisher pubsub.Publisher) *Relay {
	return &Relay{outboxRepo: outboxRepo, publisher: publisher}
}

// RunOnce relays at most one batch and returns the number of delivered events.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	events, err := r.outboxRepo.GetUndelivered(ctx, xcontext.Configs(ctx).Outbox.BatchSize)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get undelivered events: %v", err)
		return 0, err
	}

	delivered := []int64{}
	var publishErr error
	for _, e := range events {
		err := r.publisher.Publish(ctx, e.Topic, &pubsub.Pack{Key: []byte(e.Key), Msg: e.Payload})
		if err != nil {
			// Later events of the same key must not overtake this one.
			xcontext.Logger(ctx).Warnf("Cannot publish event %d to %s: %v", e.ID, e.Topic, err)
			publishErr = err
			break
		}

		common.PromCounters[common.OutboxPublishedTotal].WithLabelValues(e.Topic).Inc()
		delivered = append(delivered, e.ID)
	}

	if err := r.outboxRepo.MarkDelivered(ctx, delivered, xcontext.Now(ctx)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark events as delivered: %v", err)
		return 0, err
	}

	return len(delivered), publishErr
}

// Run relays until ctx is cancelled, polling when the outbox is drained.
func (r *Relay) Run(ctx context.Context) {
	interval := xcontext.Configs(ctx).Outbox.PollInterval
	for {
		n, err := r.RunOnce(ctx)
		if err == nil && n > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
