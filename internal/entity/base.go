package entity

import (
	"time"

	"gorm.io/gorm"
)

// Base is embedded by tables keyed by the account id.
type Base struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// SnowFlakeBase is embedded by append-only tables whose ids are generated by a snowflake node,
// so ids sort by creation time.
type SnowFlakeBase struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}
