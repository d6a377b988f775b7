package repository

import (
	"context"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardRepository interface {
	IncreaseSeasonScore(ctx context.Context, season, userID string, score int64) error
	GetSeasonScore(ctx context.Context, season, userID string) (*entity.SeasonScore, error)
	GetTopSeasonScores(ctx context.Context, season string, offset, limit int) ([]entity.SeasonScore, error)
	ReplaceSnapshot(ctx context.Context, date string, records []entity.LeaderboardSnapshot, batchSize int) error
	GetSnapshot(ctx context.Context, date string) ([]entity.LeaderboardSnapshot, error)
}

type leaderboardRepository struct{}

func NewLeaderboardRepository() LeaderboardRepository {
	return &leaderboardRepository{}
}

func (r *leaderboardRepository) IncreaseSeasonScore(
	ctx context.Context, season, userID string, score int64,
) error {
	return xcontext.DB(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "season"},
				{Name: "user_id"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"score": gorm.Expr("score + ?", score),
			}),
		}).Create(&entity.SeasonScore{Season: season, UserID: userID, Score: score}).Error
}

func (r *leaderboardRepository) GetSeasonScore(
	ctx context.Context, season, userID string,
) (*entity.SeasonScore, error) {
	var record entity.SeasonScore
	err := xcontext.DB(ctx).Where("season=? AND user_id=?", season, userID).Take(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// GetTopSeasonScores orders by score descending. Ties are broken by user id so the order is
// stable across calls.
func (r *leaderboardRepository) GetTopSeasonScores(
	ctx context.Context, season string, offset, limit int,
) ([]entity.SeasonScore, error) {
	var records []entity.SeasonScore
	err := xcontext.DB(ctx).
		Where("season=?", season).
		Order("score DESC").
		Order("user_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ReplaceSnapshot overwrites every row of the date. It must run inside a transaction.
func (r *leaderboardRepository) ReplaceSnapshot(
	ctx context.Context, date string, records []entity.LeaderboardSnapshot, batchSize int,
) error {
	if err := xcontext.DB(ctx).Where("date=?", date).Delete(&entity.LeaderboardSnapshot{}).Error; err != nil {
		return err
	}

	if len(records) == 0 {
		return nil
	}

	return xcontext.DB(ctx).CreateInBatches(records, batchSize).Error
}

func (r *leaderboardRepository) GetSnapshot(ctx context.Context, date string) ([]entity.LeaderboardSnapshot, error) {
	var records []entity.LeaderboardSnapshot
	if err := xcontext.DB(ctx).Where("date=?", date).Order("position").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}
