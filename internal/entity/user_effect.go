package entity

import (
	"database/sql"
	"time"
)

const (
	EffectDoubleTickets = "double_tickets"
)

// UserEffect is a time-limited modifier activated by consuming an item.
type UserEffect struct {
	UserID      string `gorm:"primaryKey"`
	User        User   `gorm:"foreignKey:UserID"`
	Name        string `gorm:"primaryKey"`
	Active      bool
	ActivatedAt time.Time
	Until       sql.NullTime
}

type UserItem struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`
	Name   string `gorm:"primaryKey"`
	Count  int64
}
