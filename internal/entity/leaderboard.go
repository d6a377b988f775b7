package entity

import "time"

// SeasonScore is the score a user earned within one season.
type SeasonScore struct {
	Season string `gorm:"primaryKey;size:16"`
	UserID string `gorm:"primaryKey;index"`
	User   User   `gorm:"foreignKey:UserID"`
	Score  int64  `gorm:"index"`
}

type LeaderboardSnapshot struct {
	Date      string `gorm:"primaryKey;size:10"`
	Rank      int    `gorm:"primaryKey;autoIncrement:false;column:position"`
	Season    string
	UserID    string
	Score     int64
	CreatedAt time.Time
}
