package model

type ProvisionRequest struct {
	InviteCode string `json:"invite_code"`
}

type ProvisionResponse struct {
	ID           string `json:"id"`
	ReferralCode string `json:"referral_code"`
}

// AccessToken is the object carried by access tokens.
type AccessToken struct {
	ID string `json:"id" mapstructure:"id"`
}
