package entity

import "time"

type Trophy struct {
	Code        string `gorm:"primaryKey;size:64"`
	Name        string
	Description string
	Points      int64
}

// TrophyAward exists at most once per (user_id, trophy_code).
type TrophyAward struct {
	UserID     string `gorm:"primaryKey"`
	User       User   `gorm:"foreignKey:UserID"`
	TrophyCode string `gorm:"primaryKey;size:64"`
	Trophy     Trophy `gorm:"foreignKey:TrophyCode"`
	Points     int64
	CreatedAt  time.Time
}
