package common

import "fmt"

func RedisKeySeasonLeaderboard(season string) string {
	return fmt.Sprintf("leaderboard:%s", season)
}

func RedisKeyReferralActive(inviterID, day string) string {
	return fmt.Sprintf("referral:active:%s:%s", inviterID, day)
}

func RedisKeySnapshotLock(date string) string {
	return fmt.Sprintf("lock:snapshot:%s", date)
}

func RedisKeyGrantRate(userID string) string {
	return fmt.Sprintf("rate:grant:%s", userID)
}
