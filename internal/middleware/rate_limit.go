package middleware

import (
	"context"

	"github.com/go-redis/redis_rate/v10"
	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/router"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

// Limiter is implemented by *redis_rate.Limiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

type GrantRateLimiter struct {
	limiter Limiter
}

func NewGrantRateLimiter(limiter Limiter) *GrantRateLimiter {
	return &GrantRateLimiter{limiter: limiter}
}

// Middleware limits grant calls per user. It must run after authentication. The limiter fails
// open: a redis outage does not block grants.
func (l *GrantRateLimiter) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		perMinute := xcontext.Configs(ctx).RateLimit.GrantPerMinute
		userID := xcontext.RequestUserID(ctx)
		if perMinute <= 0 || userID == "" {
			return nil, nil
		}

		res, err := l.limiter.Allow(ctx, common.RedisKeyGrantRate(userID), redis_rate.PerMinute(perMinute))
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot check grant rate of %s: %v", userID, err)
			return nil, nil
		}

		if res.Allowed == 0 {
			return nil, errorx.New(errorx.TooManyRequests, "Too many grant requests, retry after %s",
				res.RetryAfter)
		}

		return nil, nil
	}
}
