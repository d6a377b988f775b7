package referral

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/questx-lab/ledger/pkg/xredis"
	"gorm.io/gorm"
)

// activeSetTTL keeps the cached active set a little longer than its day.
const activeSetTTL = 48 * time.Hour

type Trigger struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	resolver     *Resolver
	redisClient  xredis.Client
}

func NewTrigger(
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	redisClient xredis.Client,
) *Trigger {
	return &Trigger{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		resolver:     NewResolver(userRepo, referralRepo),
		redisClient:  redisClient,
	}
}

// Crossed reports whether a counter moving from before to after crosses threshold from below.
func Crossed(before, after, threshold int64) bool {
	return before < threshold && after >= threshold
}

// HandleDailyCounterChanged marks the user as active for the inviter when the daily counter
// crosses the activity threshold. Replays of the same event write the same marker.
func (t *Trigger) HandleDailyCounterChanged(
	ctx context.Context, topic string, pack *pubsub.Pack, ts time.Time,
) error {
	var event common.DailyCounterChanged
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal daily counter event %s: %v", string(pack.Key), err)
		return nil
	}

	return t.OnCounterChanged(ctx, event)
}

func (t *Trigger) OnCounterChanged(ctx context.Context, event common.DailyCounterChanged) error {
	threshold := xcontext.Configs(ctx).Referral.ActiveThreshold
	if !Crossed(event.Before, event.After, threshold) {
		return nil
	}

	user, err := t.userRepo.GetByID(ctx, event.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Warnf("Counter event of unknown user %s", event.UserID)
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user %s: %v", event.UserID, err)
		return err
	}

	if !user.InvitedBy.Valid || user.InvitedBy.String == "" {
		return nil
	}

	inviterID, stage, err := t.resolver.Resolve(ctx, user.InvitedBy.String)
	if err != nil {
		if errors.Is(err, ErrUnresolvable) {
			xcontext.Logger(ctx).Warnf("Cannot resolve referral code %q of user %s",
				user.InvitedBy.String, user.ID)
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot resolve referral code of user %s: %v", user.ID, err)
		return err
	}

	if inviterID == user.ID {
		return nil
	}

	err = t.referralRepo.AddActivity(ctx, &entity.ReferralActivity{
		InviterID: inviterID,
		Day:       event.Day,
		UserID:    user.ID,
		CreatedAt: xcontext.Now(ctx),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add referral activity: %v", err)
		return err
	}

	common.PromCounters[common.ReferralActivationTotal].WithLabelValues(string(stage)).Inc()

	if t.redisClient != nil {
		key := common.RedisKeyReferralActive(inviterID, event.Day)
		if err := t.redisClient.SAdd(ctx, key, user.ID); err != nil {
			// The database marker is authoritative.
			xcontext.Logger(ctx).Warnf("Cannot cache referral activity: %v", err)
		} else if err := t.redisClient.Expire(ctx, key, activeSetTTL); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot set ttl of %s: %v", key, err)
		}
	}

	return nil
}

// ActiveReferrals lists users invited by inviterID that were active on day.
func (t *Trigger) ActiveReferrals(ctx context.Context, inviterID, day string) ([]string, error) {
	activities, err := t.referralRepo.GetActivities(ctx, inviterID, day)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.UserID)
	}

	return ids, nil
}
