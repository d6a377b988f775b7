package entity

import "time"

// GrantReceipt records the outcome of a grant operation. At most one exists per
// (user_id, operation_id).
type GrantReceipt struct {
	UserID      string `gorm:"primaryKey"`
	OperationID string `gorm:"primaryKey;size:128"`
	Admitted    int64
	Multiplier  int64
	Day         string
	Source      string
	CreatedAt   time.Time
}
