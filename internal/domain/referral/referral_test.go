package referral

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/pubsub"
	"github.com/questx-lab/ledger/pkg/testutil"
	"github.com/questx-lab/ledger/pkg/xredis"
	"github.com/stretchr/testify/require"
)

func newTrigger(redisClient xredis.Client) *Trigger {
	return NewTrigger(repository.NewUserRepository(), repository.NewReferralRepository(), redisClient)
}

func TestResolver_Resolve(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	r := NewResolver(repository.NewUserRepository(), repository.NewReferralRepository())

	tests := []struct {
		name      string
		code      string
		wantUser  string
		wantStage Stage
		wantErr   error
	}{
		{name: "exact", code: "alice001", wantUser: testutil.User1.ID, wantStage: StageExact},
		{name: "exact with separators", code: "bob-0000-2", wantUser: testutil.User2.ID, wantStage: StageExact},
		{name: "prefix", code: " Alice ", wantUser: testutil.User1.ID, wantStage: StagePrefix},
		{name: "raw", code: "ev-legacy", wantUser: testutil.User5.ID, wantStage: StageRaw},
		{name: "unknown", code: "nobody", wantErr: ErrUnresolvable},
		{name: "empty", code: "  ", wantErr: ErrUnresolvable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid, stage, err := r.Resolve(ctx, tt.code)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantUser, uid)
			require.Equal(t, tt.wantStage, stage)
		})
	}
}

func TestCrossed(t *testing.T) {
	require.True(t, Crossed(40, 55, 50))
	require.True(t, Crossed(49, 50, 50))
	require.False(t, Crossed(50, 55, 50))
	require.False(t, Crossed(55, 55, 50))
	require.False(t, Crossed(10, 49, 50))
}

func TestTrigger_CrossingAddsOneEntry(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var cached []string
	trigger := newTrigger(&testutil.MockRedisClient{
		SAddFunc: func(ctx context.Context, key string, members ...string) error {
			require.Equal(t, common.RedisKeyReferralActive(testutil.User1.ID, testutil.Today), key)
			cached = append(cached, members...)
			return nil
		},
	})

	event := common.DailyCounterChanged{UserID: testutil.User2.ID, Day: testutil.Today, Before: 40, After: 55}
	require.NoError(t, trigger.OnCounterChanged(ctx, event))

	active, err := trigger.ActiveReferrals(ctx, testutil.User1.ID, testutil.Today)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User2.ID}, active)

	// The counter stays at 55.
	event = common.DailyCounterChanged{UserID: testutil.User2.ID, Day: testutil.Today, Before: 55, After: 55}
	require.NoError(t, trigger.OnCounterChanged(ctx, event))

	// Redelivery of the crossing event.
	event = common.DailyCounterChanged{UserID: testutil.User2.ID, Day: testutil.Today, Before: 40, After: 55}
	require.NoError(t, trigger.OnCounterChanged(ctx, event))

	active, err = trigger.ActiveReferrals(ctx, testutil.User1.ID, testutil.Today)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User2.ID}, active)
	require.Equal(t, []string{testutil.User2.ID, testutil.User2.ID}, cached)
}

func TestTrigger_BelowThreshold(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	trigger := newTrigger(nil)
	event := common.DailyCounterChanged{UserID: testutil.User2.ID, Day: testutil.Today, Before: 10, After: 40}
	require.NoError(t, trigger.OnCounterChanged(ctx, event))

	active, err := trigger.ActiveReferrals(ctx, testutil.User1.ID, testutil.Today)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestTrigger_ResolutionStages(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	trigger := newTrigger(nil)
	for _, uid := range []string{testutil.User3.ID, testutil.User6.ID} {
		event := common.DailyCounterChanged{UserID: uid, Day: testutil.Today, Before: 0, After: 50}
		require.NoError(t, trigger.OnCounterChanged(ctx, event))
	}

	active, err := trigger.ActiveReferrals(ctx, testutil.User1.ID, testutil.Today)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User3.ID}, active)

	active, err = trigger.ActiveReferrals(ctx, testutil.User5.ID, testutil.Today)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User6.ID}, active)
}

func TestTrigger_TolerantToMissingReferences(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	trigger := newTrigger(&testutil.MockRedisClient{
		SAddFunc: func(ctx context.Context, key string, members ...string) error {
			return errors.New("redis is down")
		},
	})

	// Unresolvable code, uninvited user and unknown user are all no-ops.
	for _, uid := range []string{testutil.User4.ID, testutil.User1.ID, "ghost"} {
		event := common.DailyCounterChanged{UserID: uid, Day: testutil.Today, Before: 0, After: 60}
		require.NoError(t, trigger.OnCounterChanged(ctx, event))
	}

	// A cache failure does not fail the handler.
	event := common.DailyCounterChanged{UserID: testutil.User2.ID, Day: testutil.Today, Before: 0, After: 60}
	require.NoError(t, trigger.OnCounterChanged(ctx, event))

	active, err := trigger.ActiveReferrals(ctx, testutil.User1.ID, testutil.Today)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User2.ID}, active)
}

func TestTrigger_HandleDailyCounterChanged(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	trigger := newTrigger(nil)
	msg, err := json.Marshal(common.DailyCounterChanged{
		UserID: testutil.User2.ID, Day: testutil.Today, Before: 40, After: 55,
	})
	require.NoError(t, err)

	pack := &pubsub.Pack{Key: []byte(common.DailyCounterKey(testutil.User2.ID, testutil.Today)), Msg: msg}
	require.NoError(t, trigger.HandleDailyCounterChanged(ctx, common.DailyCounterTopic, pack, time.Now()))
	require.NoError(t, trigger.HandleDailyCounterChanged(ctx, common.DailyCounterTopic, pack, time.Now()))
	require.NoError(t, trigger.HandleDailyCounterChanged(ctx, common.DailyCounterTopic,
		&pubsub.Pack{Msg: []byte("not json")}, time.Now()))

	active, err := trigger.ActiveReferrals(ctx, testutil.User1.ID, testutil.Today)
	require.NoError(t, err)
	require.Equal(t, []string{testutil.User2.ID}, active)
}
