package domain

import (
	"testing"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/testutil"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_userDomain_Provision(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	d := NewUserDomain(repository.NewUserRepository(), repository.NewReferralRepository())

	_, err := d.Provision(ctx, &model.ProvisionRequest{})
	require.True(t, errorx.Is(err, errorx.Unauthenticated))

	ctx = xcontext.WithRequestUserID(ctx, "newbie")

	_, err = d.Provision(ctx, &model.ProvisionRequest{InviteCode: "--"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	resp, err := d.Provision(ctx, &model.ProvisionRequest{InviteCode: "alice-001"})
	require.NoError(t, err)
	require.Equal(t, "newbie", resp.ID)
	require.Len(t, resp.ReferralCode, common.ReferralCodeLength)
	require.Equal(t, common.NormalizeReferralCode(resp.ReferralCode), resp.ReferralCode)

	user, err := repository.NewUserRepository().GetByID(ctx, "newbie")
	require.NoError(t, err)
	// The stored invite code is the normalized one, not the input.
	require.Equal(t, "ALICE001", user.InvitedBy.String)
	require.Equal(t, int64(0), user.Tickets)

	code, err := repository.NewReferralRepository().GetCode(ctx, resp.ReferralCode)
	require.NoError(t, err)
	require.Equal(t, "newbie", code.UserID)

	// Provisioning again returns the same account.
	again, err := d.Provision(ctx, &model.ProvisionRequest{})
	require.NoError(t, err)
	require.Equal(t, resp, again)
}
