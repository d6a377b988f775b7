package entity

import (
	"database/sql"
	"time"
)

type OutboxEvent struct {
	SnowFlakeBase
	Topic       string `gorm:"index"`
	Key         string
	Payload     []byte
	DeliveredAt sql.NullTime `gorm:"index"`
}

type Migration struct {
	Version   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
