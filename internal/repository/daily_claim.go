package repository

import (
	"context"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

type DailyClaimRepository interface {
	Get(ctx context.Context, userID, day string) (*entity.DailyClaim, error)
	Create(ctx context.Context, data *entity.DailyClaim) error
}

type dailyClaimRepository struct{}

func NewDailyClaimRepository() DailyClaimRepository {
	return &dailyClaimRepository{}
}

func (r *dailyClaimRepository) Get(ctx context.Context, userID, day string) (*entity.DailyClaim, error) {
	var record entity.DailyClaim
	if err := xcontext.DB(ctx).Where("user_id=? AND day=?", userID, day).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *dailyClaimRepository) Create(ctx context.Context, data *entity.DailyClaim) error {
	return xcontext.DB(ctx).Create(data).Error
}
