package repository

import (
	"context"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CounterRepository interface {
	GetDaily(ctx context.Context, userID, day string) (*entity.DailyCounter, error)
	IncreaseDaily(ctx context.Context, userID, day string, amount int64) error
	IncreaseShard(ctx context.Context, day string, shard int, amount int64) error
	GetShards(ctx context.Context, day string) ([]entity.ShardCounter, error)
	UpsertAggregate(ctx context.Context, data *entity.DailyAggregate) error
	GetAggregate(ctx context.Context, day string) (*entity.DailyAggregate, error)
}

type counterRepository struct{}

func NewCounterRepository() CounterRepository {
	return &counterRepository{}
}

func (r *counterRepository) GetDaily(ctx context.Context, userID, day string) (*entity.DailyCounter, error) {
	var record entity.DailyCounter
	if err := xcontext.DB(ctx).Where("user_id=? AND day=?", userID, day).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *counterRepository) IncreaseDaily(ctx context.Context, userID, day string, amount int64) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"},
				{Name: "day"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"amount":     gorm.Expr("amount + ?", amount),
				"updated_at": xcontext.Now(ctx),
			}),
		}).Create(&entity.DailyCounter{UserID: userID, Day: day, Amount: amount}).Error
}

func (r *counterRepository) IncreaseShard(ctx context.Context, day string, shard int, amount int64) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "day"},
				{Name: "shard_index"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"amount":     gorm.Expr("amount + ?", amount),
				"updated_at": xcontext.Now(ctx),
			}),
		}).Create(&entity.ShardCounter{Day: day, ShardIndex: shard, Amount: amount}).Error
}

func (r *counterRepository) GetShards(ctx context.Context, day string) ([]entity.ShardCounter, error) {
	var records []entity.ShardCounter
	if err := xcontext.DB(ctx).Where("day=?", day).Order("shard_index").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *counterRepository) UpsertAggregate(ctx context.Context, data *entity.DailyAggregate) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total":         data.Total,
				"derived_level": data.DerivedLevel,
				"updated_at":    xcontext.Now(ctx),
			}),
		}).Create(data).Error
}

func (r *counterRepository) GetAggregate(ctx context.Context, day string) (*entity.DailyAggregate, error) {
	var record entity.DailyAggregate
	if err := xcontext.DB(ctx).Where("day=?", day).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}
