package domain

import (
	"context"

	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	maxSourceLen = 64

	// maxGrantAmount bounds a single grant request.
	maxGrantAmount = 1_000_000
)

// requestUserID rejects the request before it touches any store when the caller is anonymous.
func requestUserID(ctx context.Context) (string, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return "", errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	return userID, nil
}

// dayOrToday validates day, defaulting to the current reward day.
func dayOrToday(ctx context.Context, resolver *dayboundary.Resolver, day string) (string, error) {
	if day == "" {
		return resolver.DayID(xcontext.Now(ctx)), nil
	}

	if _, err := resolver.DayStart(day); err != nil {
		return "", errorx.New(errorx.BadRequest, "Invalid day %s", day)
	}

	return day, nil
}

func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return defaultLimit, nil
	}

	if limit < 0 || limit > maxLimit {
		return 0, errorx.New(errorx.BadRequest, "Limit must be in range 1-%d", maxLimit)
	}

	return limit, nil
}
