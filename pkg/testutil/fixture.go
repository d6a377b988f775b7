package testutil

import (
	"context"
	"database/sql"

	"github.com/questx-lab/ledger/internal/common"
	"github.com/questx-lab/ledger/internal/entity"
	"github.com/questx-lab/ledger/pkg/xcontext"
)

var (
	// User1 invited User2 and User3.
	User1 = &entity.User{
		Base:         entity.Base{ID: "user1"},
		ReferralCode: "ALICE001",
	}

	User2 = &entity.User{
		Base:         entity.Base{ID: "user2"},
		ReferralCode: "BOB00002",
		InvitedBy:    sql.NullString{Valid: true, String: "alice001"},
	}

	User3 = &entity.User{
		Base:         entity.Base{ID: "user3"},
		ReferralCode: "CAROL003",
		InvitedBy:    sql.NullString{Valid: true, String: " Alice "},
	}

	// User4 was invited with a code nobody owns.
	User4 = &entity.User{
		Base:         entity.Base{ID: "user4"},
		ReferralCode: "DAVE0004",
		InvitedBy:    sql.NullString{Valid: true, String: "nobody"},
	}

	// User5 owns a legacy code stored as typed, without an index entry.
	User5 = &entity.User{
		Base:         entity.Base{ID: "user5"},
		ReferralCode: "ev-legacy",
	}

	User6 = &entity.User{
		Base:         entity.Base{ID: "user6"},
		ReferralCode: "FRANK006",
		InvitedBy:    sql.NullString{Valid: true, String: "ev-legacy"},
	}

	Users = []*entity.User{User1, User2, User3, User4, User5, User6}

	TrophyFirstGrant = &entity.Trophy{Code: "first_grant", Name: "First grant", Points: 10}
	TrophyStreak7    = &entity.Trophy{Code: "streak_7", Name: "Seven days", Points: 50}

	Trophies = []*entity.Trophy{TrophyFirstGrant, TrophyStreak7}
)

func CreateFixtureDb(ctx context.Context) {
	InsertUsers(ctx)
	InsertTrophies(ctx)
}

func InsertUsers(ctx context.Context) {
	for _, u := range Users {
		user := *u
		if err := xcontext.DB(ctx).Create(&user).Error; err != nil {
			panic(err)
		}

		if common.NormalizeReferralCode(user.ReferralCode) != user.ReferralCode {
			continue
		}

		err := xcontext.DB(ctx).Create(&entity.ReferralCode{Code: user.ReferralCode, UserID: user.ID}).Error
		if err != nil {
			panic(err)
		}
	}
}

func InsertTrophies(ctx context.Context) {
	for _, t := range Trophies {
		trophy := *t
		if err := xcontext.DB(ctx).Create(&trophy).Error; err != nil {
			panic(err)
		}
	}
}
