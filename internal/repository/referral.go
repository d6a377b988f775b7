package repository

import (
	"context"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type ReferralRepository interface {
	CreateCode(ctx context.Context, data *entity.ReferralCode) error
	GetCode(ctx context.Context, code string) (*entity.ReferralCode, error)
	AddActivity(ctx context.Context, data *entity.ReferralActivity) error
	GetActivities(ctx context.Context, inviterID, day string) ([]entity.ReferralActivity, error)
}

type referralRepository struct{}

func NewReferralRepository() ReferralRepository {
	return &referralRepository{}
}

func (r *referralRepository) CreateCode(ctx context.Context, data *entity.ReferralCode) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *referralRepository) GetCode(ctx context.Context, code string) (*entity.ReferralCode, error) {
	var record entity.ReferralCode
	if err := xcontext.DB(ctx).Where("code=?", code).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// AddActivity is idempotent: an existing marker is left untouched.
func (r *referralRepository) AddActivity(ctx context.Context, data *entity.ReferralActivity) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(data).Error
}

func (r *referralRepository) GetActivities(
	ctx context.Context, inviterID, day string,
) ([]entity.ReferralActivity, error) {
	var records []entity.ReferralActivity
	err := xcontext.DB(ctx).
		Where("inviter_id=? AND day=?", inviterID, day).
		Order("created_at").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
