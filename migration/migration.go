package migration

import (
	"context"
	"errors"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
)

type migrator func(context.Context) error

// Migrators are data migrations applied by version on top of AutoMigrate.
var Migrators = map[string]migrator{
	"0001": migrate0001,
}

// Run applies the migrator of version once. A version already recorded is skipped.
func Run(ctx context.Context, version string) error {
	m, ok := Migrators[version]
	if !ok {
		return errors.New("not found migration version " + version)
	}

	err := xcontext.DB(ctx).Where("version=?", version).Take(&entity.Migration{}).Error
	if err == nil {
		xcontext.Logger(ctx).Infof("Migration %s was already applied", version)
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := m(ctx); err != nil {
		return err
	}

	if err := xcontext.DB(ctx).Create(&entity.Migration{Version: version}).Error; err != nil {
		return err
	}

	return xcontext.WithCommitDBTransaction(ctx)
}

// migrate0001 backfills the normalized referral code index from the users table.
func migrate0001(ctx context.Context) error {
	var users []entity.User
	if err := xcontext.DB(ctx).Where("referral_code <> ''").Find(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		code := common.NormalizeReferralCode(u.ReferralCode)
		if code == "" {
			continue
		}

		err := xcontext.DB(ctx).
			Where(entity.ReferralCode{Code: code}).
			Attrs(entity.ReferralCode{UserID: u.ID}).
			FirstOrCreate(&entity.ReferralCode{}).Error
		if err != nil {
			return err
		}
	}

	return nil
}
