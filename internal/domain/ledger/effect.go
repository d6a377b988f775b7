package ledger

import (
	"database/sql"
	"time"

	"github.com/questx-lab/ledger/internal/entity"
)

// Multipliers of effects that scale granted tickets.
var effectMultipliers = map[string]int64{
	entity.EffectDoubleTickets: 2,
}

// EffectUntil returns the expiry of an effect. The stored Until wins; an effect without it
// expires duration after its activation; an effect with neither is inactive.
func EffectUntil(e *entity.UserEffect, duration time.Duration) (time.Time, bool) {
	if e == nil || !e.Active {
		return time.Time{}, false
	}

	if e.Until.Valid {
		return e.Until.Time, true
	}

	if !e.ActivatedAt.IsZero() && duration > 0 {
		return e.ActivatedAt.Add(duration), true
	}

	return time.Time{}, false
}

func IsEffectActive(e *entity.UserEffect, now time.Time, duration time.Duration) bool {
	until, ok := EffectUntil(e, duration)
	return ok && now.Before(until)
}

// Multiplier returns the ticket multiplier granted by e at now, 1 when e does not apply.
func Multiplier(e *entity.UserEffect, now time.Time, duration time.Duration) int64 {
	if e == nil || !IsEffectActive(e, now, duration) {
		return 1
	}

	if m, ok := effectMultipliers[e.Name]; ok {
		return m
	}

	return 1
}

// ActivateEffect starts the effect at now, or extends it by duration if it is still running.
func ActivateEffect(
	userID, name string, current *entity.UserEffect, now time.Time, duration time.Duration,
) *entity.UserEffect {
	if until, ok := EffectUntil(current, duration); ok && now.Before(until) {
		return &entity.UserEffect{
			UserID:      userID,
			Name:        name,
			Active:      true,
			ActivatedAt: current.ActivatedAt,
			Until:       sql.NullTime{Valid: true, Time: until.Add(duration)},
		}
	}

	return &entity.UserEffect{
		UserID:      userID,
		Name:        name,
		Active:      true,
		ActivatedAt: now,
		Until:       sql.NullTime{Valid: true, Time: now.Add(duration)},
	}
}

// IsKnownEffect reports whether name is an effect an item can activate.
func IsKnownEffect(name string) bool {
	_, ok := effectMultipliers[name]
	return ok
}
