package dto

import capi "github.com/radieske/wisebet-storefront-poc/pkg/contracts/api"

type LoginResponse struct {
	AccessToken          string     `json:"accessToken"`
	User                 *capi.User `json:"user"`
	Requires2FA          bool       `json:"requires2FA"`
	RequiresVerification bool       `json:"requiresVerification"`
}

type RegisterResponse struct {
	RequiresVerification bool   `json:"requiresVerification"`
	TwoFactorQR          string `json:"twoFactorQR"`
	Message              string `json:"message,omitempty"`
}

type RefreshResponse struct {
	AccessToken string     `json:"accessToken"`
	User        *capi.User `json:"user"`
}

type VerifyEmailResponse struct {
	Message string `json:"message"`
}
