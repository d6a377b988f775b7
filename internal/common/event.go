package common

import "fmt"

const (
	DailyCounterTopic = "daily_counter"
	ShardCounterTopic = "shard_counter"
)

// DailyCounterChanged is emitted by every grant that changed a user's daily counter.
type DailyCounterChanged struct {
	UserID string `json:"user_id"`
	Day    string `json:"day"`
	Before int64  `json:"before"`
	After  int64  `json:"after"`
}

// ShardCounterChanged is emitted by every write to a shard counter.
type ShardCounterChanged struct {
	Day   string `json:"day"`
	Shard int    `json:"shard"`
}

// Event keys are record paths, so events of the same record share a partition.
func DailyCounterKey(userID, day string) string {
	return fmt.Sprintf("daily_counters/%s/%s", userID, day)
}

func ShardCounterKey(day string, shard int) string {
	return fmt.Sprintf("shard_counters/%s/%d", day, shard)
}
