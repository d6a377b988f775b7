package migration

import (
	"context"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

// When this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.UserEffect{},
		&entity.UserItem{},
		&entity.GrantReceipt{},
		&entity.DailyCounter{},
		&entity.ShardCounter{},
		&entity.DailyAggregate{},
		&entity.Trophy{},
		&entity.TrophyAward{},
		&entity.SeasonScore{},
		&entity.LeaderboardSnapshot{},
		&entity.ReferralCode{},
		&entity.ReferralActivity{},
		&entity.DailyClaim{},
		&entity.OutboxEvent{},
		&entity.Migration{},
	)
}
