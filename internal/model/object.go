package model

type User struct {
	ID           string `json:"id"`
	ReferralCode string `json:"referral_code"`
	InvitedBy    string `json:"invited_by,omitempty"`
	Tickets      int64  `json:"tickets"`
	Coins        int64  `json:"coins"`
	Diamonds     int64  `json:"diamonds"`
	Score        int64  `json:"score"`
	Streak       int64  `json:"streak"`
}

type Effect struct {
	Name       string `json:"name"`
	Multiplier int64  `json:"multiplier"`
	Until      string `json:"until"`
}

type Item struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type Trophy struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int64  `json:"points"`
}

type TrophyAward struct {
	Trophy    Trophy `json:"trophy"`
	Points    int64  `json:"points"`
	CreatedAt string `json:"created_at"`
}

type UserStatistic struct {
	User        User  `json:"user"`
	Value       int64 `json:"value"`
	CurrentRank int   `json:"current_rank"`
}

type SnapshotRecord struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Score  int64  `json:"score"`
}
