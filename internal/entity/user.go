package entity

import "database/sql"

type User struct {
	Base
	Tickets  int64
	Coins    int64
	Diamonds int64

	// Score is the experience accumulated from trophies.
	Score  int64
	Streak int64

	// ReferralCode is the normalized invite code owned by this user.
	ReferralCode string `gorm:"uniqueIndex;size:32"`

	// InvitedBy is the normalized invite code the user signed up with. Rows written before
	// normalization may still hold the raw code.
	InvitedBy sql.NullString `gorm:"index;size:64"`
}
