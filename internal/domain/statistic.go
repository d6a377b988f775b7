package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/internal/domain/statistic"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
)

type StatisticDomain interface {
	GetLeaderBoard(context.Context, *model.GetLeaderBoardRequest) (*model.GetLeaderBoardResponse, error)
	GetLeaderBoardSnapshot(context.Context, *model.GetLeaderBoardSnapshotRequest) (*model.GetLeaderBoardSnapshotResponse, error)
}

type statisticDomain struct {
	leaderboardRepo repository.LeaderboardRepository
	userRepo        repository.UserRepository
	leaderboard     statistic.Leaderboard
	resolver        *dayboundary.Resolver
}

func NewStatisticDomain(
	leaderboardRepo repository.LeaderboardRepository,
	userRepo repository.UserRepository,
	leaderboard statistic.Leaderboard,
	resolver *dayboundary.Resolver,
) *statisticDomain {
	return &statisticDomain{
		leaderboardRepo: leaderboardRepo,
		userRepo:        userRepo,
		leaderboard:     leaderboard,
		resolver:        resolver,
	}
}

func (d *statisticDomain) GetLeaderBoard(
	ctx context.Context, req *model.GetLeaderBoardRequest,
) (*model.GetLeaderBoardResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	limit, err := normalizeLimit(req.Limit)
	if err != nil {
		return nil, err
	}

	season := dayboundary.Season(d.resolver.DayID(xcontext.Now(ctx)))
	leaderboard, err := d.leaderboard.GetLeaderBoard(ctx, season, req.Offset, limit)
	if err != nil {
		return nil, err
	}

	userIDs := []string{}
	for _, s := range leaderboard {
		userIDs = append(userIDs, s.User.ID)
	}

	users, err := d.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get users: %v", err)
		return nil, errorx.Unknown
	}

	userSet := map[string]model.User{}
	for i := range users {
		userSet[users[i].ID] = model.ConvertUser(&users[i])
	}

	for i := range leaderboard {
		if u, ok := userSet[leaderboard[i].User.ID]; ok {
			leaderboard[i].User = u
		}
	}

	rank, err := d.leaderboard.GetRank(ctx, userID, season)
	if err != nil {
		return nil, err
	}

	var myScore int64
	score, err := d.leaderboardRepo.GetSeasonScore(ctx, season, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get season score: %v", err)
		return nil, errorx.Unknown
	}
	if score != nil {
		myScore = score.Score
	}

	return &model.GetLeaderBoardResponse{
		Season:      season,
		LeaderBoard: leaderboard,
		MyRank:      int(rank),
		MyScore:     myScore,
	}, nil
}

func (d *statisticDomain) GetLeaderBoardSnapshot(
	ctx context.Context, req *model.GetLeaderBoardSnapshotRequest,
) (*model.GetLeaderBoardSnapshotResponse, error) {
	if _, err := requestUserID(ctx); err != nil {
		return nil, err
	}

	date, err := dayOrToday(ctx, d.resolver, req.Date)
	if err != nil {
		return nil, err
	}

	snapshot, err := d.leaderboardRepo.GetSnapshot(ctx, date)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard snapshot: %v", err)
		return nil, errorx.Unknown
	}

	records := []model.SnapshotRecord{}
	for i := range snapshot {
		records = append(records, model.ConvertSnapshotRecord(&snapshot[i]))
	}

	return &model.GetLeaderBoardSnapshotResponse{Date: date, Records: records}, nil
}
