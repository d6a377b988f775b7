package repository

import (
	"context"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserEffectRepository interface {
	Get(ctx context.Context, userID, name string) (*entity.UserEffect, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.UserEffect, error)
	Upsert(ctx context.Context, data *entity.UserEffect) error
}

type userEffectRepository struct{}

func NewUserEffectRepository() UserEffectRepository {
	return &userEffectRepository{}
}

func (r *userEffectRepository) Get(ctx context.Context, userID, name string) (*entity.UserEffect, error) {
	var record entity.UserEffect
	err := xcontext.DB(ctx).Where("user_id=? AND name=?", userID, name).Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userEffectRepository) GetByUserID(ctx context.Context, userID string) ([]entity.UserEffect, error) {
	var records []entity.UserEffect
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userEffectRepository) Upsert(ctx context.Context, data *entity.UserEffect) error {
	return xcontext.DB(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "name"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"active":       data.Active,
				"activated_at": data.ActivatedAt,
				"until":        data.Until,
			}),
		}).Create(data).Error
}

type UserItemRepository interface {
	GetByUserID(ctx context.Context, userID string) ([]entity.UserItem, error)
	Increase(ctx context.Context, userID, name string, count int64) error
	Decrease(ctx context.Context, userID, name string, count int64) error
}

type userItemRepository struct{}

func NewUserItemRepository() UserItemRepository {
	return &userItemRepository{}
}

func (r *userItemRepository) GetByUserID(ctx context.Context, userID string) ([]entity.UserItem, error) {
	var records []entity.UserItem
	if err := xcontext.DB(ctx).Where("user_id=?", userID).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userItemRepository) Increase(ctx context.Context, userID, name string, count int64) error {
	return xcontext.DB(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "name"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"count": gorm.Expr("count + ?", count),
			}),
		}).Create(&entity.UserItem{UserID: userID, Name: name, Count: count}).Error
}

// Decrease returns gorm.ErrRecordNotFound if the user owns fewer than count items.
func (r *userItemRepository) Decrease(ctx context.Context, userID, name string, count int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserItem{}).
		Where("user_id=? AND name=? AND count>=?", userID, name, count).
		Update("count", gorm.Expr("count - ?", count))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
