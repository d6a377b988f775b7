package trophy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/testutil"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLeaderboard struct {
	changes map[string]int64
}

func (m *mockLeaderboard) ChangeSeasonScore(ctx context.Context, season, userID string, value int64) error {
	m.changes[season+"/"+userID] += value
	return nil
}

func newLedger(ctx context.Context) *Ledger {
	trophyRepo := repository.NewTrophyRepository()
	return &Ledger{
		userRepo:        repository.NewUserRepository(),
		trophyRepo:      trophyRepo,
		leaderboardRepo: repository.NewLeaderboardRepository(),
		catalog:         NewCatalog(trophyRepo),
		resolver:        dayboundary.NewResolverFromConfigs(xcontext.Configs(ctx).Ledger),
	}
}

func TestLedger_AwardOnce(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	l := newLedger(ctx)

	granted, err := l.AwardOnce(ctx, testutil.User1.ID, testutil.TrophyFirstGrant.Code)
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = l.AwardOnce(ctx, testutil.User1.ID, testutil.TrophyFirstGrant.Code)
	require.NoError(t, err)
	require.False(t, granted)

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.TrophyFirstGrant.Points, user.Score)

	score, err := repository.NewLeaderboardRepository().GetSeasonScore(ctx, "2024-03", testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.TrophyFirstGrant.Points, score.Score)

	awards, err := l.Awards(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Len(t, awards, 1)
}

func TestLedger_AwardOnceConcurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	l := newLedger(ctx)

	const n = 10
	var wg sync.WaitGroup
	results := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			granted, err := l.AwardOnce(ctx, testutil.User2.ID, testutil.TrophyStreak7.Code)
			assert.NoError(t, err)
			results[i] = granted
		}(i)
	}
	wg.Wait()

	grantedCount := 0
	for _, granted := range results {
		if granted {
			grantedCount++
		}
	}
	require.Equal(t, 1, grantedCount)

	var count int64
	require.NoError(t, xcontext.DB(ctx).Model(&entity.TrophyAward{}).
		Where("user_id=?", testutil.User2.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.TrophyStreak7.Points, user.Score)
}

func TestLedger_AwardOnceErrors(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	l := newLedger(ctx)

	_, err := l.AwardOnce(ctx, testutil.User1.ID, "unknown")
	require.True(t, errorx.Is(err, errorx.NotFound))

	_, err = l.AwardOnce(ctx, "ghost", testutil.TrophyFirstGrant.Code)
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func TestLedger_UpdatesLeaderboardAfterCommit(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	board := &mockLeaderboard{changes: map[string]int64{}}
	l := newLedger(ctx)
	l.leaderboard = board

	_, err := l.AwardOnce(ctx, testutil.User1.ID, testutil.TrophyStreak7.Code)
	require.NoError(t, err)
	_, err = l.AwardOnce(ctx, testutil.User1.ID, testutil.TrophyStreak7.Code)
	require.NoError(t, err)

	require.Equal(t, map[string]int64{"2024-03/user1": 50}, board.changes)
}

func TestCatalog_Upsert(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	c := NewCatalog(repository.NewTrophyRepository())

	trophy, err := c.Get(ctx, testutil.TrophyFirstGrant.Code)
	require.NoError(t, err)
	require.Equal(t, int64(10), trophy.Points)

	require.NoError(t, c.Upsert(ctx, &entity.Trophy{Code: testutil.TrophyFirstGrant.Code, Name: "First", Points: 15}))

	trophy, err = c.Get(ctx, testutil.TrophyFirstGrant.Code)
	require.NoError(t, err)
	require.Equal(t, int64(15), trophy.Points)

	all, err := c.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestCatalog_ExpiresChangesFromOtherReplicas(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	c := NewCatalog(repository.NewTrophyRepository())
	other := NewCatalog(repository.NewTrophyRepository())

	trophy, err := c.Get(ctx, testutil.TrophyStreak7.Code)
	require.NoError(t, err)
	require.Equal(t, int64(50), trophy.Points)

	require.NoError(t, other.Upsert(ctx, &entity.Trophy{Code: testutil.TrophyStreak7.Code, Name: "Seven", Points: 70}))

	// The stale entry is served until it expires.
	trophy, err = c.Get(testutil.WithTime(ctx, testutil.Now.Add(catalogTTL-time.Second)), testutil.TrophyStreak7.Code)
	require.NoError(t, err)
	require.Equal(t, int64(50), trophy.Points)

	trophy, err = c.Get(testutil.WithTime(ctx, testutil.Now.Add(catalogTTL)), testutil.TrophyStreak7.Code)
	require.NoError(t, err)
	require.Equal(t, int64(70), trophy.Points)
}
