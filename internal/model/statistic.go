package model

type GetLeaderBoardRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetLeaderBoardResponse struct {
	Season      string          `json:"season"`
	LeaderBoard []UserStatistic `json:"leaderboard"`
	MyRank      int             `json:"my_rank"`
	MyScore     int64           `json:"my_score"`
}

type GetLeaderBoardSnapshotRequest struct {
	Date string `json:"date"`
}

type GetLeaderBoardSnapshotResponse struct {
	Date    string           `json:"date"`
	Records []SnapshotRecord `json:"records"`
}
