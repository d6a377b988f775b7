package model

type AwardTrophyRequest struct {
	Code string `json:"code"`
}

type AwardTrophyResponse struct {
	Granted bool `json:"granted"`
}

type UpsertTrophyRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int64  `json:"points"`
}

type UpsertTrophyResponse struct{}

type GetTrophiesRequest struct{}

type GetTrophiesResponse struct {
	Trophies []Trophy      `json:"trophies"`
	Awards   []TrophyAward `json:"awards"`
}
