// Package trophy awards trophies at most once per user.
package trophy

import (
	"context"
	"errors"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
)

// ScoreBoard is the cached season leaderboard, updated after a commit.
type ScoreBoard interface {
	ChangeSeasonScore(ctx context.Context, season, userID string, value int64) error
}

type Ledger struct {
	userRepo        repository.UserRepository
	trophyRepo      repository.TrophyRepository
	leaderboardRepo repository.LeaderboardRepository
	catalog         *Catalog
	leaderboard     ScoreBoard
	resolver        *dayboundary.Resolver
}

func NewLedger(
	userRepo repository.UserRepository,
	trophyRepo repository.TrophyRepository,
	leaderboardRepo repository.LeaderboardRepository,
	catalog *Catalog,
	leaderboard ScoreBoard,
	resolver *dayboundary.Resolver,
) *Ledger {
	return &Ledger{
		userRepo:        userRepo,
		trophyRepo:      trophyRepo,
		leaderboardRepo: leaderboardRepo,
		catalog:         catalog,
		leaderboard:     leaderboard,
		resolver:        resolver,
	}
}

// AwardOnce gives the trophy to the user and credits its points to the user score and the
// current season. It returns false if the user already had the trophy.
func (l *Ledger) AwardOnce(ctx context.Context, userID, code string) (bool, error) {
	season := dayboundary.Season(l.resolver.DayID(xcontext.Now(ctx)))

	var granted bool
	var points int64
	err := xcontext.RunInTransaction(ctx, xcontext.Configs(ctx).Ledger.TransactionRetry,
		func(ctx context.Context) error {
			var err error
			granted, points, err = l.award(ctx, userID, code, season)
			return err
		})
	if err != nil {
		if errors.Is(err, xcontext.ErrRetryExhausted) {
			xcontext.Logger(ctx).Errorf("Award %s to %s gave up after retries: %v", code, userID, err)
			common.PromCounters[common.TransactionRetryExhausted].WithLabelValues("award_trophy").Inc()
			return false, errorx.New(errorx.Unavailable, "Too much contention, retry later")
		}

		var errx errorx.Error
		if errors.As(err, &errx) {
			return false, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot award trophy %s to %s: %v", code, userID, err)
		return false, errorx.Unknown
	}

	if granted && points != 0 && l.leaderboard != nil {
		// The database is already committed, a stale cache is only logged.
		if err := l.leaderboard.ChangeSeasonScore(ctx, season, userID, points); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot update leaderboard cache: %v", err)
		}
	}

	return granted, nil
}

func (l *Ledger) award(ctx context.Context, userID, code, season string) (bool, int64, error) {
	if _, err := l.userRepo.GetByIDForUpdate(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, errorx.New(errorx.NotFound, "Not found user")
		}
		return false, 0, err
	}

	_, err := l.trophyRepo.GetAward(ctx, userID, code)
	if err == nil {
		return false, 0, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, 0, err
	}

	trophy, err := l.catalog.Get(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, errorx.New(errorx.NotFound, "Not found trophy %s", code)
		}
		return false, 0, err
	}

	err = l.trophyRepo.CreateAward(ctx, &entity.TrophyAward{
		UserID:     userID,
		TrophyCode: code,
		Points:     trophy.Points,
		CreatedAt:  xcontext.Now(ctx),
	})
	if err != nil {
		return false, 0, err
	}

	if trophy.Points != 0 {
		err := l.userRepo.IncreaseBalance(ctx, userID, repository.UserBalance{Score: trophy.Points})
		if err != nil {
			return false, 0, err
		}

		if err := l.leaderboardRepo.IncreaseSeasonScore(ctx, season, userID, trophy.Points); err != nil {
			return false, 0, err
		}
	}

	return true, trophy.Points, nil
}

// Awards lists the trophies of user with their definitions.
func (l *Ledger) Awards(ctx context.Context, userID string) ([]entity.TrophyAward, error) {
	return l.trophyRepo.GetAwardsByUserID(ctx, userID)
}
