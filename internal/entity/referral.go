package entity

import "time"

// ReferralCode indexes normalized invite codes to their owners.
type ReferralCode struct {
	Code   string `gorm:"primaryKey;size:32"`
	UserID string `gorm:"uniqueIndex"`
}

// ReferralActivity marks that a referred user became active on a day.
type ReferralActivity struct {
	InviterID string `gorm:"primaryKey"`
	Day       string `gorm:"primaryKey;size:10"`
	UserID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}
