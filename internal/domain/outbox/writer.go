// Package outbox stores events in the same transaction as the state change that caused them and
// relays them to the event bus afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

type Writer struct {
	outboxRepo repository.OutboxRepository
}

func NewWriter(outboxRepo repository.OutboxRepository) *Writer {
	return &Writer{outboxRepo: outboxRepo}
}

// Append joins the transaction of ctx.
func (w *Writer) Append(ctx context.Context, topic, key string, payload any) error {
	node := xcontext.SnowFlake(ctx)
	if node == nil {
		return errors.New("snowflake node is not set")
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return w.outboxRepo.Create(ctx, &entity.OutboxEvent{
		SnowFlakeBase: entity.SnowFlakeBase{ID: node.Generate().Int64()},
		Topic:         topic,
		Key:           key,
		Payload:       b,
	})
}
