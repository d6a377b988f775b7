package entity

import "time"

// DailyCounter is the amount granted to a user within one reward day.
type DailyCounter struct {
	UserID    string `gorm:"primaryKey"`
	Day       string `gorm:"primaryKey;size:10"`
	Amount    int64
	UpdatedAt time.Time
}

// ShardCounter is one of N partial sums of the global per-day total.
type ShardCounter struct {
	Day        string `gorm:"primaryKey;size:10"`
	ShardIndex int    `gorm:"primaryKey;autoIncrement:false"`
	Amount     int64
	UpdatedAt  time.Time
}

type DailyAggregate struct {
	Day          string `gorm:"primaryKey;size:10"`
	Total        int64
	DerivedLevel int64
	UpdatedAt    time.Time
}
