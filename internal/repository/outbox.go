package repository

import (
	"context"
	"time"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

type OutboxRepository interface {
	Create(ctx context.Context, data *entity.OutboxEvent) error
	GetUndelivered(ctx context.Context, limit int) ([]entity.OutboxEvent, error)
	MarkDelivered(ctx context.Context, ids []int64, at time.Time) error
}

type outboxRepository struct{}

func NewOutboxRepository() OutboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) Create(ctx context.Context, data *entity.OutboxEvent) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *outboxRepository) GetUndelivered(ctx context.Context, limit int) ([]entity.OutboxEvent, error) {
	var records []entity.OutboxEvent
	err := xcontext.DB(ctx).
		Where("delivered_at IS NULL").
		Order("id").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *outboxRepository) MarkDelivered(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	return xcontext.DB(ctx).
		Model(&entity.OutboxEvent{}).
		Where("id IN (?)", ids).
		Update("delivered_at", at).Error
}
