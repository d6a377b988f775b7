// Package referral attributes daily activity of referred users to their inviters.
package referral

import (
	"context"
	"errors"
	"strings"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/repository"
	"gorm.io/gorm"
)

// Stage names the lookup that resolved a code.
type Stage string

const (
	StageExact  Stage = "exact"
	StagePrefix Stage = "prefix"
	StageRaw    Stage = "raw"
)

var ErrUnresolvable = errors.New("referral code cannot be resolved")

type Resolver struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
}

func NewResolver(userRepo repository.UserRepository, referralRepo repository.ReferralRepository) *Resolver {
	return &Resolver{userRepo: userRepo, referralRepo: referralRepo}
}

// Resolve returns the owner of code. Lookups run in order: the normalized code index, the first
// user code starting with the normalized code, then the user code field as stored.
func (r *Resolver) Resolve(ctx context.Context, code string) (string, Stage, error) {
	normalized := common.NormalizeReferralCode(code)

	if normalized != "" {
		record, err := r.referralRepo.GetCode(ctx, normalized)
		if err == nil {
			return record.UserID, StageExact, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", err
		}

		user, err := r.userRepo.GetByReferralCodePrefix(ctx, normalized)
		if err == nil {
			return user.ID, StagePrefix, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", err
		}
	}

	raw := strings.TrimSpace(code)
	if raw == "" {
		return "", "", ErrUnresolvable
	}

	user, err := r.userRepo.GetByReferralCode(ctx, raw)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrUnresolvable
		}
		return "", "", err
	}

	return user.ID, StageRaw, nil
}
