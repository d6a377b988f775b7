package testutil

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/ledger/config"
	"github.com/questx-lab/ledger/migration"
	"github.com/questx-lab/ledger/pkg/logger"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Now is the default clock of MockContext: 2024-03-10 12:00 in Europe/Berlin, which is reward day
// 2024-03-10 with the default cutoff.
var Now = time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)

const Today = "2024-03-10"

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Env = "test"
	cfg.Auth.TokenSecret = "secret"
	cfg.Auth.AccessToken = config.TokenConfigs{Name: "access_token", Expiration: time.Minute}
	cfg.Auth.AdminIDs = []string{"admin"}
	cfg.Ledger.TransactionRetry = 3
	return cfg
}

func MockContext() context.Context {
	return MockContextWithConfigs(MockConfigs())
}

func MockContextWithConfigs(cfg config.Configs) context.Context {
	// Every connection to :memory: opens a distinct database, so the pool is limited to one.
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE, false))
	ctx = xcontext.WithDB(ctx, db)
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithClock(ctx, func() time.Time { return Now })

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}

// WithTime pins the clock of ctx to t.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return xcontext.WithClock(ctx, func() time.Time { return t })
}
