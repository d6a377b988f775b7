package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/internal/model"
	"github.com/questx-lab/ledger/internal/repository"
	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/xcontext"
	"gorm.io/gorm"
)

const maxInviteCodeLen = 64

type UserDomain interface {
	Provision(context.Context, *model.ProvisionRequest) (*model.ProvisionResponse, error)
}

type userDomain struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
}

func NewUserDomain(
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
) *userDomain {
	return &userDomain{userRepo: userRepo, referralRepo: referralRepo}
}

// Provision creates the account of the caller. Calling it again returns the existing account.
func (d *userDomain) Provision(
	ctx context.Context, req *model.ProvisionRequest,
) (*model.ProvisionResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	if len(req.InviteCode) > maxInviteCodeLen {
		return nil, errorx.New(errorx.BadRequest, "Invite code is too long")
	}

	inviteCode := common.NormalizeReferralCode(req.InviteCode)
	if req.InviteCode != "" && inviteCode == "" {
		return nil, errorx.New(errorx.BadRequest, "Invalid invite code")
	}

	var user *entity.User
	err = xcontext.RunInTransaction(ctx, xcontext.Configs(ctx).Ledger.TransactionRetry,
		func(ctx context.Context) error {
			var err error
			user, err = d.provision(ctx, userID, inviteCode)
			return err
		})
	if err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) {
			return nil, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot provision user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ProvisionResponse{ID: user.ID, ReferralCode: user.ReferralCode}, nil
}

func (d *userDomain) provision(ctx context.Context, userID, inviteCode string) (*entity.User, error) {
	user, err := d.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &entity.User{
		Base:         entity.Base{ID: userID},
		ReferralCode: newReferralCode(),
	}

	if inviteCode != "" {
		user.InvitedBy = sql.NullString{Valid: true, String: inviteCode}
	}

	if err := d.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// A colliding code fails with a duplicated key, which retries the transaction with a new
	// code.
	err = d.referralRepo.CreateCode(ctx, &entity.ReferralCode{Code: user.ReferralCode, UserID: user.ID})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func newReferralCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return common.NormalizeReferralCode(id[:common.ReferralCodeLength])
}
