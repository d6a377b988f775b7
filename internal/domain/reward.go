package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/ledger/internal/domain/aggregate"
	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/internal/domain/ledger"
	"github.com/questx-lab/ledger/internal/domain/referral"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
)

type RewardDomain interface {
	Grant(context.Context, *model.GrantRequest) (*model.GrantResponse, error)
	ClaimDaily(context.Context, *model.ClaimDailyRequest) (*model.ClaimDailyResponse, error)
	UseItem(context.Context, *model.UseItemRequest) (*model.UseItemResponse, error)
	GetAccount(context.Context, *model.GetAccountRequest) (*model.GetAccountResponse, error)
	GetDailyAggregate(context.Context, *model.GetDailyAggregateRequest) (*model.GetDailyAggregateResponse, error)
	GetReferralActivity(context.Context, *model.GetReferralActivityRequest) (*model.GetReferralActivityResponse, error)
}

type rewardDomain struct {
	userRepo       repository.UserRepository
	effectRepo     repository.UserEffectRepository
	itemRepo       repository.UserItemRepository
	counterRepo    repository.CounterRepository
	dailyClaimRepo repository.DailyClaimRepository
	processor      *ledger.Processor
	aggregator     *aggregate.Aggregator
	referral       *referral.Trigger
	resolver       *dayboundary.Resolver
}

func NewRewardDomain(
	userRepo repository.UserRepository,
	effectRepo repository.UserEffectRepository,
	itemRepo repository.UserItemRepository,
	counterRepo repository.CounterRepository,
	dailyClaimRepo repository.DailyClaimRepository,
	processor *ledger.Processor,
	aggregator *aggregate.Aggregator,
	referral *referral.Trigger,
	resolver *dayboundary.Resolver,
) *rewardDomain {
	return &rewardDomain{
		userRepo:       userRepo,
		effectRepo:     effectRepo,
		itemRepo:       itemRepo,
		counterRepo:    counterRepo,
		dailyClaimRepo: dailyClaimRepo,
		processor:      processor,
		aggregator:     aggregator,
		referral:       referral,
		resolver:       resolver,
	}
}

func (d *rewardDomain) Grant(ctx context.Context, req *model.GrantRequest) (*model.GrantResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if req.Amount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be positive")
	}

	if req.Amount > maxGrantAmount {
		return nil, errorx.New(errorx.BadRequest, "Amount must not exceed %d", maxGrantAmount)
	}

	if len(req.Source) > maxSourceLen {
		return nil, errorx.New(errorx.BadRequest, "Source is too long")
	}

	if req.Source == "" {
		req.Source = "api"
	}

	result, err := d.processor.Grant(ctx, ledger.GrantRequest{
		UserID:      userID,
		OperationID: req.OperationID,
		Amount:      req.Amount,
		Source:      req.Source,
	})
	if err != nil {
		return nil, err
	}

	return &model.GrantResponse{
		Admitted:       result.Admitted,
		Day:            result.Day,
		Multiplier:     result.Multiplier,
		AlreadyApplied: result.AlreadyApplied,
	}, nil
}

func (d *rewardDomain) ClaimDaily(
	ctx context.Context, req *model.ClaimDailyRequest,
) (*model.ClaimDailyResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	day := d.resolver.DayID(xcontext.Now(ctx))
	previousDay, err := dayboundary.PreviousDayID(day)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid day %s: %v", day, err)
		return nil, errorx.Unknown
	}

	var resp *model.ClaimDailyResponse
	err = xcontext.RunInTransaction(ctx, xcontext.Configs(ctx).Ledger.TransactionRetry,
		func(ctx context.Context) error {
			var err error
			resp, err = d.claimDaily(ctx, userID, day, previousDay)
			return err
		})
	if err != nil {
		if errors.Is(err, xcontext.ErrRetryExhausted) {
			xcontext.Logger(ctx).Errorf("Daily claim of %s gave up after retries: %v", userID, err)
			return nil, errorx.New(errorx.Unavailable, "Too much contention, retry later")
		}

		var errx errorx.Error
		if errors.As(err, &errx) {
			return nil, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot claim daily reward: %v", err)
		return nil, errorx.Unknown
	}

	return resp, nil
}

func (d *rewardDomain) claimDaily(
	ctx context.Context, userID, day, previousDay string,
) (*model.ClaimDailyResponse, error) {
	if _, err := d.userRepo.GetByIDForUpdate(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}
		return nil, err
	}

	claimed, err := d.dailyClaimRepo.Get(ctx, userID, day)
	if err == nil {
		return &model.ClaimDailyResponse{Streak: claimed.Streak, AlreadyClaimed: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	streak := int64(1)
	previous, err := d.dailyClaimRepo.Get(ctx, userID, previousDay)
	if err == nil {
		streak = previous.Streak + 1
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reward := DailyReward(xcontext.Configs(ctx).DailyClaim.RewardByStreak, streak)

	err = d.dailyClaimRepo.Create(ctx, &entity.DailyClaim{
		UserID:    userID,
		Day:       day,
		Streak:    streak,
		Reward:    reward,
		CreatedAt: xcontext.Now(ctx),
	})
	if err != nil {
		return nil, err
	}

	if err := d.userRepo.IncreaseBalance(ctx, userID, repository.UserBalance{Coins: reward}); err != nil {
		return nil, err
	}

	if err := d.userRepo.UpdateStreak(ctx, userID, streak); err != nil {
		return nil, err
	}

	return &model.ClaimDailyResponse{Streak: streak, Reward: reward}, nil
}

// DailyReward returns the reward of the streak. Streaks longer than the table keep its last
// value.
func DailyReward(table []int64, streak int64) int64 {
	if len(table) == 0 || streak <= 0 {
		return 0
	}

	if streak > int64(len(table)) {
		return table[len(table)-1]
	}

	return table[streak-1]
}

func (d *rewardDomain) UseItem(ctx context.Context, req *model.UseItemRequest) (*model.UseItemResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if !ledger.IsKnownEffect(req.Name) {
		return nil, errorx.New(errorx.BadRequest, "Unknown item %s", req.Name)
	}

	var effect *entity.UserEffect
	err = xcontext.RunInTransaction(ctx, xcontext.Configs(ctx).Ledger.TransactionRetry,
		func(ctx context.Context) error {
			if err := d.itemRepo.Decrease(ctx, userID, req.Name, 1); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errorx.New(errorx.NotFound, "Not enough item %s", req.Name)
				}
				return err
			}

			current, err := d.effectRepo.Get(ctx, userID, req.Name)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			effect = ledger.ActivateEffect(userID, req.Name, current, xcontext.Now(ctx),
				xcontext.Configs(ctx).Ledger.EffectDuration)
			return d.effectRepo.Upsert(ctx, effect)
		})
	if err != nil {
		if errors.Is(err, xcontext.ErrRetryExhausted) {
			return nil, errorx.New(errorx.Unavailable, "Too much contention, retry later")
		}

		var errx errorx.Error
		if errors.As(err, &errx) {
			return nil, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot use item: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UseItemResponse{
		Effect: effect.Name,
		Until:  effect.Until.Time.Format(model.DefaultTimeLayout),
	}, nil
}

func (d *rewardDomain) GetAccount(
	ctx context.Context, req *model.GetAccountRequest,
) (*model.GetAccountResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.Now(ctx)
	duration := xcontext.Configs(ctx).Ledger.EffectDuration

	effects, err := d.effectRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user effects: %v", err)
		return nil, errorx.Unknown
	}

	activeEffects := []model.Effect{}
	for i := range effects {
		if !ledger.IsEffectActive(&effects[i], now, duration) {
			continue
		}

		until, _ := ledger.EffectUntil(&effects[i], duration)
		activeEffects = append(activeEffects, model.Effect{
			Name:       effects[i].Name,
			Multiplier: ledger.Multiplier(&effects[i], now, duration),
			Until:      until.Format(model.DefaultTimeLayout),
		})
	}

	items, err := d.itemRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user items: %v", err)
		return nil, errorx.Unknown
	}

	ownedItems := []model.Item{}
	for _, item := range items {
		if item.Count > 0 {
			ownedItems = append(ownedItems, model.Item{Name: item.Name, Count: item.Count})
		}
	}

	day := d.resolver.DayID(now)
	var dailyCounter int64
	counter, err := d.counterRepo.GetDaily(ctx, userID, day)
	if err == nil {
		dailyCounter = counter.Amount
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get daily counter: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetAccountResponse{
		User:         model.ConvertUser(user),
		Effects:      activeEffects,
		Items:        ownedItems,
		Day:          day,
		DailyCounter: dailyCounter,
	}, nil
}

func (d *rewardDomain) GetDailyAggregate(
	ctx context.Context, req *model.GetDailyAggregateRequest,
) (*model.GetDailyAggregateResponse, error) {
	if _, err := requestUserID(ctx); err != nil {
		return nil, err
	}

	day, err := dayOrToday(ctx, d.resolver, req.Day)
	if err != nil {
		return nil, err
	}

	result, err := d.aggregator.Get(ctx, day)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get daily aggregate: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetDailyAggregateResponse{
		Day:          day,
		Total:        result.Total,
		DerivedLevel: result.DerivedLevel,
	}, nil
}

func (d *rewardDomain) GetReferralActivity(
	ctx context.Context, req *model.GetReferralActivityRequest,
) (*model.GetReferralActivityResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	day, err := dayOrToday(ctx, d.resolver, req.Day)
	if err != nil {
		return nil, err
	}

	userIDs, err := d.referral.ActiveReferrals(ctx, userID, day)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get referral activity: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetReferralActivityResponse{Day: day, UserIDs: userIDs}, nil
}
