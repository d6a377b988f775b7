package repository

import (
	"context"
	"strings"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserBalance is a set of signed deltas applied to a user's balances.
type UserBalance struct {
	Tickets  int64
	Coins    int64
	Diamonds int64
	Score    int64
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetByReferralCode(ctx context.Context, code string) (*entity.User, error)
	GetByReferralCodePrefix(ctx context.Context, prefix string) (*entity.User, error)
	IncreaseBalance(ctx context.Context, id string, delta UserBalance) error
	UpdateStreak(ctx context.Context, id string, streak int64) error
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// GetByIDForUpdate reads the user and locks the row until the current transaction ends.
func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id=?", id).
		Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var records []entity.User
	if err := xcontext.DB(ctx).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("referral_code=?", code).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// GetByReferralCodePrefix returns the first user, in code order, whose code starts with prefix.
func (r *userRepository) GetByReferralCodePrefix(ctx context.Context, prefix string) (*entity.User, error) {
	var record entity.User
	err := xcontext.DB(ctx).
		Where("referral_code LIKE ? ESCAPE '!'", likeEscaper.Replace(prefix)+"%").
		Order("referral_code").
		Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) IncreaseBalance(ctx context.Context, id string, delta UserBalance) error {
	updates := map[string]any{}
	if delta.Tickets != 0 {
		updates["tickets"] = gorm.Expr("tickets + ?", delta.Tickets)
	}
	if delta.Coins != 0 {
		updates["coins"] = gorm.Expr("coins + ?", delta.Coins)
	}
	if delta.Diamonds != 0 {
		updates["diamonds"] = gorm.Expr("diamonds + ?", delta.Diamonds)
	}
	if delta.Score != 0 {
		updates["score"] = gorm.Expr("score + ?", delta.Score)
	}

	if len(updates) == 0 {
		return nil
	}

	tx := xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *userRepository) UpdateStreak(ctx context.Context, id string, streak int64) error {
	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Update("streak", streak).Error
}
