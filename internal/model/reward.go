package model

type GrantRequest struct {
	OperationID string `json:"operation_id"`
	Amount      int64  `json:"amount"`
	Source      string `json:"source"`
}

type GrantResponse struct {
	Admitted       int64  `json:"admitted"`
	Day            string `json:"day"`
	Multiplier     int64  `json:"multiplier"`
	AlreadyApplied bool   `json:"already_applied"`
}

type ClaimDailyRequest struct{}

type ClaimDailyResponse struct {
	Streak         int64 `json:"streak"`
	Reward         int64 `json:"reward"`
	AlreadyClaimed bool  `json:"already_claimed"`
}

type UseItemRequest struct {
	Name string `json:"name"`
}

type UseItemResponse struct {
	Effect string `json:"effect"`
	Until  string `json:"until"`
}

type GetAccountRequest struct{}

type GetAccountResponse struct {
	User         User     `json:"user"`
	Effects      []Effect `json:"effects"`
	Items        []Item   `json:"items"`
	Day          string   `json:"day"`
	DailyCounter int64    `json:"daily_counter"`
}

type GetDailyAggregateRequest struct {
	Day string `json:"day"`
}

type GetDailyAggregateResponse struct {
	Day          string `json:"day"`
	Total        int64  `json:"total"`
	DerivedLevel int64  `json:"derived_level"`
}

type GetReferralActivityRequest struct {
	Day string `json:"day"`
}

type GetReferralActivityResponse struct {
	Day     string   `json:"day"`
	UserIDs []string `json:"user_ids"`
}
