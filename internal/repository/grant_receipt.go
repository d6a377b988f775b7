package repository

import (
	"context"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

type GrantReceiptRepository interface {
	Get(ctx context.Context, userID, operationID string) (*entity.GrantReceipt, error)
	Create(ctx context.Context, data *entity.GrantReceipt) error
	CountByUserID(ctx context.Context, userID string) (int64, error)
}

type grantReceiptRepository struct{}

func NewGrantReceiptRepository() GrantReceiptRepository {
	return &grantReceiptRepository{}
}

func (r *grantReceiptRepository) Get(
	ctx context.Context, userID, operationID string,
) (*entity.GrantReceipt, error) {
	var record entity.GrantReceipt
	err := xcontext.DB(ctx).
		Where("user_id=? AND operation_id=?", userID, operationID).
		Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Create fails with a duplicated key error if the receipt already exists.
func (r *grantReceiptRepository) Create(ctx context.Context, data *entity.GrantReceipt) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *grantReceiptRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.GrantReceipt{}).Where("user_id=?", userID).Count(&count).Error
	return count, err
}
