package main

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/go-redis/redis_rate/v10"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/questx-lab/ledger/config"
	"github.com/questx-lab/ledger/internal/domain"
	"github.com/questx-lab/ledger/internal/domain/aggregate"
	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/internal/domain/ledger"
	"github.com/questx-lab/ledger/internal/domain/outbox"
	"github.com/questx-lab/ledger/internal/domain/referral"
	"github.com/questx-lab/ledger/internal/domain/statistic"
	"github.com/questx-lab/ledger/internal/domain/trophy"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/migration"
	"github.com/questx-lab/ledger/pkg/authenticator"
	"github.com/questx-lab/ledger/pkg/caching"
	"github.com/questx-lab/ledger/pkg/logger"
	"github.com/questx-lab/ledger/pkg/router"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/questx-lab/ledger/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type srv struct {
	app *cli.App
	ctx context.Context

	userRepo         repository.UserRepository
	userEffectRepo   repository.UserEffectRepository
	userItemRepo     repository.UserItemRepository
	counterRepo      repository.CounterRepository
	dailyClaimRepo   repository.DailyClaimRepository
	grantReceiptRepo repository.GrantReceiptRepository
	leaderboardRepo  repository.LeaderboardRepository
	referralRepo     repository.ReferralRepository
	trophyRepo       repository.TrophyRepository
	outboxRepo       repository.OutboxRepository

	redisClient xredis.Client
	rateLimiter *redis_rate.Limiter
	redsync     *redsync.Redsync
	cache       caching.Cache

	accessTokenEngine authenticator.TokenEngine[model.AccessToken]

	resolver        *dayboundary.Resolver
	aggregator      *aggregate.Aggregator
	processor       *ledger.Processor
	trigger         *referral.Trigger
	leaderboard     statistic.Leaderboard
	trophyCatalog   *trophy.Catalog
	trophyLedger    *trophy.Ledger
	rewardDomain    domain.RewardDomain
	trophyDomain    domain.TrophyDomain
	statisticDomain domain.StatisticDomain
	userDomain      domain.UserDomain

	router *router.Router
}

// prepare runs before every command.
func (s *srv) prepare(cctx *cli.Context) error {
	if err := s.loadConfig(cctx.String("config")); err != nil {
		return err
	}

	s.loadLogger()
	return nil
}

func (s *srv) loadConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	return nil
}

func (s *srv) loadLogger() {
	cfg := xcontext.Configs(s.ctx)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.Log.Level), cfg.Env == "local"))
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %s", cfg.Driver)
	}

	return gorm.Open(dialector, &gorm.Config{TranslateError: true})
}

// loadDatabase binds the database to the context and brings the schema up to date.
func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return migration.AutoMigrate(s.ctx)
}

func (s *srv) loadSnowflake() error {
	node, err := snowflake.NewNode(xcontext.Configs(s.ctx).Ledger.NodeID)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
	return nil
}

func (s *srv) loadRedisClient() error {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		return err
	}

	s.redisClient = client
	s.rateLimiter = redis_rate.NewLimiter(client.Redis())
	s.redsync = redsync.New(goredis.NewPool(client.Redis()))
	s.cache = caching.NewRedisCache(client.Redis(), true)
	return nil
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.userEffectRepo = repository.NewUserEffectRepository()
	s.userItemRepo = repository.NewUserItemRepository()
	s.counterRepo = repository.NewCounterRepository()
	s.dailyClaimRepo = repository.NewDailyClaimRepository()
	s.grantReceiptRepo = repository.NewGrantReceiptRepository()
	s.leaderboardRepo = repository.NewLeaderboardRepository()
	s.referralRepo = repository.NewReferralRepository()
	s.trophyRepo = repository.NewTrophyRepository()
	s.outboxRepo = repository.NewOutboxRepository()
}

// loadLedger builds the components shared by the api and the workers. It needs the redis
// client and the repositories.
func (s *srv) loadLedger() {
	s.resolver = dayboundary.NewResolverFromConfigs(xcontext.Configs(s.ctx).Ledger)
	s.aggregator = aggregate.NewAggregator(s.counterRepo, s.cache)
	s.trigger = referral.NewTrigger(s.userRepo, s.referralRepo, s.redisClient)
	s.leaderboard = statistic.New(s.leaderboardRepo, s.redisClient)
	s.processor = ledger.NewProcessor(
		s.userRepo,
		s.userEffectRepo,
		s.counterRepo,
		s.grantReceiptRepo,
		s.aggregator,
		outbox.NewWriter(s.outboxRepo),
		s.resolver,
	)
	s.trophyCatalog = trophy.NewCatalog(s.trophyRepo)
	s.trophyLedger = trophy.NewLedger(
		s.userRepo,
		s.trophyRepo,
		s.leaderboardRepo,
		s.trophyCatalog,
		s.leaderboard,
		s.resolver,
	)
}

func (s *srv) loadDomains() {
	s.rewardDomain = domain.NewRewardDomain(
		s.userRepo,
		s.userEffectRepo,
		s.userItemRepo,
		s.counterRepo,
		s.dailyClaimRepo,
		s.processor,
		s.aggregator,
		s.trigger,
		s.resolver,
	)
	s.trophyDomain = domain.NewTrophyDomain(s.trophyLedger, s.trophyCatalog)
	s.statisticDomain = domain.NewStatisticDomain(s.leaderboardRepo, s.userRepo, s.leaderboard, s.resolver)
	s.userDomain = domain.NewUserDomain(s.userRepo, s.referralRepo)
}

func (s *srv) loadAuthenticator() {
	cfg := xcontext.Configs(s.ctx).Auth
	s.accessTokenEngine = authenticator.NewTokenEngine[model.AccessToken](
		cfg.TokenSecret, cfg.AccessToken.Expiration)
}

// loadWorker loads everything a worker process needs besides its own transport.
func (s *srv) loadWorker() error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	s.loadRepos()
	s.loadLedger()
	return nil
}
