// Package ledger applies ticket grants: exactly once per operation, bounded by a daily cap and
// scaled by the user's active effect.
package ledger

import (
	"context"
	"errors"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/domain/aggregate"
	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/internal/domain/outbox"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
)

type GrantRequest struct {
	UserID string

	// OperationID identifies the client action. Empty disables deduplication.
	OperationID string

	Amount int64
	Source string
}

type GrantResult struct {
	Admitted       int64
	Day            string
	Multiplier     int64
	AlreadyApplied bool
}

type Processor struct {
	userRepo    repository.UserRepository
	effectRepo  repository.UserEffectRepository
	counterRepo repository.CounterRepository
	idempotency *IdempotencyStore
	aggregator  *aggregate.Aggregator
	outbox      *outbox.Writer
	resolver    *dayboundary.Resolver
}

func NewProcessor(
	userRepo repository.UserRepository,
	effectRepo repository.UserEffectRepository,
	counterRepo repository.CounterRepository,
	receiptRepo repository.GrantReceiptRepository,
	aggregator *aggregate.Aggregator,
	outboxWriter *outbox.Writer,
	resolver *dayboundary.Resolver,
) *Processor {
	return &Processor{
		userRepo:    userRepo,
		effectRepo:  effectRepo,
		counterRepo: counterRepo,
		idempotency: NewIdempotencyStore(receiptRepo),
		aggregator:  aggregator,
		outbox:      outboxWriter,
		resolver:    resolver,
	}
}

// Grant credits up to req.Amount tickets, scaled and capped, in a single transaction. Replaying
// an operation returns its stored result without any write. Contention retries the whole
// transaction; when retries run out the error has code Unavailable.
func (p *Processor) Grant(ctx context.Context, req GrantRequest) (*GrantResult, error) {
	if req.Amount <= 0 {
		common.PromCounters[common.GrantTotal].WithLabelValues(req.Source, "rejected").Inc()
		return &GrantResult{Day: p.resolver.DayID(xcontext.Now(ctx)), Multiplier: 1}, nil
	}

	var result *GrantResult
	err := xcontext.RunInTransaction(ctx, xcontext.Configs(ctx).Ledger.TransactionRetry,
		func(ctx context.Context) error {
			var err error
			result, err = p.grant(ctx, req)
			return err
		})
	if err != nil {
		if errors.Is(err, xcontext.ErrRetryExhausted) {
			xcontext.Logger(ctx).Errorf("Grant of %s gave up after retries: %v", req.UserID, err)
			common.PromCounters[common.TransactionRetryExhausted].WithLabelValues("grant").Inc()
			return nil, errorx.New(errorx.Unavailable, "Too much contention, retry later")
		}

		var errx errorx.Error
		if errors.As(err, &errx) {
			return nil, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot grant tickets to %s: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	outcome := "applied"
	switch {
	case result.AlreadyApplied:
		outcome = "replayed"
	case result.Admitted == 0:
		outcome = "capped"
	}
	common.PromCounters[common.GrantTotal].WithLabelValues(req.Source, outcome).Inc()
	if !result.AlreadyApplied {
		common.PromCounters[common.GrantAdmittedAmount].WithLabelValues(req.Source).Add(float64(result.Admitted))
	}

	return result, nil
}

// grant runs inside the transaction. Every read happens before the first write.
func (p *Processor) grant(ctx context.Context, req GrantRequest) (*GrantResult, error) {
	// The row lock serializes grants of the same user, which keeps the cap exact.
	if _, err := p.userRepo.GetByIDForUpdate(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}
		return nil, err
	}

	if req.OperationID != "" {
		prior, err := p.idempotency.Check(ctx, req.UserID, req.OperationID)
		if err != nil {
			return nil, err
		}

		if prior != nil {
			return prior, nil
		}
	}

	now := xcontext.Now(ctx)
	cfg := xcontext.Configs(ctx).Ledger
	day := p.resolver.DayID(now)

	effect, err := p.effectRepo.Get(ctx, req.UserID, entity.EffectDoubleTickets)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	multiplier := Multiplier(effect, now, cfg.EffectDuration)

	var already int64
	counter, err := p.counterRepo.GetDaily(ctx, req.UserID, day)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		already = counter.Amount
	}

	result := &GrantResult{
		Admitted:   CapPolicy{BaseCap: cfg.BaseCap}.Admit(req.Amount, multiplier, already),
		Day:        day,
		Multiplier: multiplier,
	}

	if result.Admitted > 0 {
		err := p.userRepo.IncreaseBalance(ctx, req.UserID, repository.UserBalance{Tickets: result.Admitted})
		if err != nil {
			return nil, err
		}

		if err := p.counterRepo.IncreaseDaily(ctx, req.UserID, day, result.Admitted); err != nil {
			return nil, err
		}

		shard, err := p.aggregator.ShardWrite(ctx, day, req.UserID, result.Admitted)
		if err != nil {
			return nil, err
		}

		err = p.outbox.Append(ctx, common.DailyCounterTopic, common.DailyCounterKey(req.UserID, day),
			common.DailyCounterChanged{
				UserID: req.UserID,
				Day:    day,
				Before: already,
				After:  already + result.Admitted,
			})
		if err != nil {
			return nil, err
		}

		err = p.outbox.Append(ctx, common.ShardCounterTopic, common.ShardCounterKey(day, shard),
			common.ShardCounterChanged{Day: day, Shard: shard})
		if err != nil {
			return nil, err
		}
	}

	if req.OperationID != "" {
		if err := p.idempotency.Record(ctx, req.UserID, req.OperationID, req.Source, *result); err != nil {
			return nil, err
		}
	}

	return result, nil
}
