package model

import (
	"time"

	"github.com/questx-lab/ledger/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertUser(u *entity.User) User {
	if u == nil {
		return User{}
	}

	return User{
		ID:           u.ID,
		ReferralCode: u.ReferralCode,
		InvitedBy:    u.InvitedBy.String,
		Tickets:      u.Tickets,
		Coins:        u.Coins,
		Diamonds:     u.Diamonds,
		Score:        u.Score,
		Streak:       u.Streak,
	}
}

func ConvertShortUser(id string) User {
	return User{ID: id}
}

func ConvertTrophy(t *entity.Trophy) Trophy {
	if t == nil {
		return Trophy{}
	}

	return Trophy{
		Code:        t.Code,
		Name:        t.Name,
		Description: t.Description,
		Points:      t.Points,
	}
}

func ConvertTrophyAward(a *entity.TrophyAward, t Trophy) TrophyAward {
	return TrophyAward{
		Trophy:    t,
		Points:    a.Points,
		CreatedAt: a.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertSnapshotRecord(r *entity.LeaderboardSnapshot) SnapshotRecord {
	return SnapshotRecord{
		Rank:   r.Rank,
		UserID: r.UserID,
		Score:  r.Score,
	}
}
