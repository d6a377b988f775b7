package statistic

import "github.com/questx-lab/ledger/internal/common"

func redisKeySeasonLeaderBoard(season string) string {
	return common.RedisKeySeasonLeaderboard(season)
}
