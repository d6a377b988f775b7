package entity

import "time"

type DailyClaim struct {
	UserID    string `gorm:"primaryKey"`
	Day       string `gorm:"primaryKey;size:10"`
	Streak    int64
	Reward    int64
	CreatedAt time.Time
}
