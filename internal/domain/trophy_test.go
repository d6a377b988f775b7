package domain

import (
	"context"
	"testing"

	"github.com/questx-lab/ledger/internal/domain/dayboundary"
	"github.com/questx-lab/ledger/internal/domain/trophy"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/testutil"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTrophyDomain(ctx context.Context) *trophyDomain {
	trophyRepo := repository.NewTrophyRepository()
	catalog := trophy.NewCatalog(trophyRepo)
	return NewTrophyDomain(
		trophy.NewLedger(
			repository.NewUserRepository(),
			trophyRepo,
			repository.NewLeaderboardRepository(),
			catalog,
			nil,
			dayboundary.NewResolverFromConfigs(xcontext.Configs(ctx).Ledger),
		),
		catalog,
	)
}

func Test_trophyDomain_AwardTrophy(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	d := newTrophyDomain(ctx)

	_, err := d.AwardTrophy(ctx, &model.AwardTrophyRequest{Code: testutil.TrophyFirstGrant.Code})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	ctx = xcontext.WithRequestUserID(ctx, testutil.User1.ID)

	_, err = d.AwardTrophy(ctx, &model.AwardTrophyRequest{})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	resp, err := d.AwardTrophy(ctx, &model.AwardTrophyRequest{Code: testutil.TrophyFirstGrant.Code})
	require.NoError(t, err)
	require.Equal(t, &model.AwardTrophyResponse{Granted: true}, resp)

	resp, err = d.AwardTrophy(ctx, &model.AwardTrophyRequest{Code: testutil.TrophyFirstGrant.Code})
	require.NoError(t, err)
	require.Equal(t, &model.AwardTrophyResponse{Granted: false}, resp)

	_, err = d.AwardTrophy(ctx, &model.AwardTrophyRequest{Code: "unknown"})
	require.True(t, errorx.Is(err, errorx.NotFound))

	trophies, err := d.GetTrophies(ctx, &model.GetTrophiesRequest{})
	require.NoError(t, err)
	require.Len(t, trophies.Trophies, 2)
	require.Len(t, trophies.Awards, 1)
	require.Equal(t, testutil.TrophyFirstGrant.Name, trophies.Awards[0].Trophy.Name)
	require.Equal(t, testutil.TrophyFirstGrant.Points, trophies.Awards[0].Points)
}

func Test_trophyDomain_UpsertTrophy(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	d := newTrophyDomain(ctx)
	req := &model.UpsertTrophyRequest{Code: "streak_30", Name: "Thirty days", Points: 200}

	_, err := d.UpsertTrophy(xcontext.WithRequestUserID(ctx, testutil.User1.ID), req)
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	adminCtx := xcontext.WithRequestUserID(ctx, "admin")
	_, err = d.UpsertTrophy(adminCtx, &model.UpsertTrophyRequest{Code: "x", Name: "x", Points: -1})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.UpsertTrophy(adminCtx, req)
	require.NoError(t, err)

	userCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	resp, err := d.AwardTrophy(userCtx, &model.AwardTrophyRequest{Code: "streak_30"})
	require.NoError(t, err)
	require.True(t, resp.Granted)

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(200), user.Score)
}
