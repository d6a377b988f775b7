package repository

import (
	"context"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type TrophyRepository interface {
	Upsert(ctx context.Context, data *entity.Trophy) error
	GetByCode(ctx context.Context, code string) (*entity.Trophy, error)
	GetAll(ctx context.Context) ([]entity.Trophy, error)
	GetAward(ctx context.Context, userID, code string) (*entity.TrophyAward, error)
	CreateAward(ctx context.Context, data *entity.TrophyAward) error
	GetAwardsByUserID(ctx context.Context, userID string) ([]entity.TrophyAward, error)
}

type trophyRepository struct{}

func NewTrophyRepository() TrophyRepository {
	return &trophyRepository{}
}

func (r *trophyRepository) Upsert(ctx context.Context, data *entity.Trophy) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":        data.Name,
				"description": data.Description,
				"points":      data.Points,
			}),
		}).Create(data).Error
}

func (r *trophyRepository) GetByCode(ctx context.Context, code string) (*entity.Trophy, error) {
	var record entity.Trophy
	if err := xcontext.DB(ctx).Where("code=?", code).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *trophyRepository) GetAll(ctx context.Context) ([]entity.Trophy, error) {
	var records []entity.Trophy
	if err := xcontext.DB(ctx).Order("code").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *trophyRepository) GetAward(ctx context.Context, userID, code string) (*entity.TrophyAward, error) {
	var record entity.TrophyAward
	err := xcontext.DB(ctx).Where("user_id=? AND trophy_code=?", userID, code).Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// CreateAward fails with a duplicated key error if the award already exists.
func (r *trophyRepository) CreateAward(ctx context.Context, data *entity.TrophyAward) error {
	return xcontext.DB(ctx).Omit("User", "Trophy").Create(data).Error
}

func (r *trophyRepository) GetAwardsByUserID(ctx context.Context, userID string) ([]entity.TrophyAward, error) {
	var records []entity.TrophyAward
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Order("created_at").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
