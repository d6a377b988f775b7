package ledger

import (
	"database/sql"
	"testing"
	"time"

	"github.com/questx-lab/ledger/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestEffectUntil(t *testing.T) {
	activated := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	explicit := activated.Add(time.Hour)

	until, ok := EffectUntil(&entity.UserEffect{
		Active: true, ActivatedAt: activated, Until: sql.NullTime{Valid: true, Time: explicit},
	}, 24*time.Hour)
	require.True(t, ok)
	require.Equal(t, explicit, until)

	// Derived from the activation time.
	until, ok = EffectUntil(&entity.UserEffect{Active: true, ActivatedAt: activated}, 24*time.Hour)
	require.True(t, ok)
	require.Equal(t, activated.Add(24*time.Hour), until)

	_, ok = EffectUntil(&entity.UserEffect{Active: true}, 24*time.Hour)
	require.False(t, ok)

	_, ok = EffectUntil(&entity.UserEffect{Active: false, ActivatedAt: activated}, 24*time.Hour)
	require.False(t, ok)

	_, ok = EffectUntil(nil, 24*time.Hour)
	require.False(t, ok)
}

func TestMultiplier(t *testing.T) {
	activated := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	effect := &entity.UserEffect{
		Name:        entity.EffectDoubleTickets,
		Active:      true,
		ActivatedAt: activated,
		Until:       sql.NullTime{Valid: true, Time: activated.Add(time.Hour)},
	}

	require.Equal(t, int64(2), Multiplier(effect, activated.Add(time.Minute), 24*time.Hour))
	require.Equal(t, int64(1), Multiplier(effect, activated.Add(time.Hour), 24*time.Hour))
	require.Equal(t, int64(1), Multiplier(nil, activated, 24*time.Hour))

	unknown := *effect
	unknown.Name = "glow"
	require.Equal(t, int64(1), Multiplier(&unknown, activated.Add(time.Minute), 24*time.Hour))
}

func TestActivateEffect(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

	e := ActivateEffect("user1", entity.EffectDoubleTickets, nil, now, time.Hour)
	require.True(t, e.Active)
	require.Equal(t, now, e.ActivatedAt)
	require.Equal(t, now.Add(time.Hour), e.Until.Time)

	// Running effect is extended.
	e = ActivateEffect("user1", entity.EffectDoubleTickets, e, now.Add(30*time.Minute), time.Hour)
	require.Equal(t, now, e.ActivatedAt)
	require.Equal(t, now.Add(2*time.Hour), e.Until.Time)

	// Expired effect restarts.
	later := now.Add(5 * time.Hour)
	e = ActivateEffect("user1", entity.EffectDoubleTickets, e, later, time.Hour)
	require.Equal(t, later, e.ActivatedAt)
	require.Equal(t, later.Add(time.Hour), e.Until.Time)
}
