// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/iou/internal/validation"
)

// Grant types accepted by the /auth endpoints.
const (
	GrantTypePassword     = "password"
	GrantTypeRefreshToken = "refresh_token"
)

// LoginRequest contains the parameters of a password login.
type LoginRequest struct {
	Username  string `json:"username"   form:"username"`
	Password  string `json:"password"   form:"password"` //nolint:gosec // forwarded to the identity provider
	GrantType string `json:"grant_type" form:"grant_type"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.GrantType,
			validation.Required,
			customValidation.GrantType(GrantTypePassword),
		),
	)
}

// RefreshRequest contains the parameters of a token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
	GrantType    string `json:"grant_type"    form:"grant_type"`
}

// Validate checks if the refresh request is valid.
func (r *RefreshRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken, validation.Required, customValidation.NotBlank),
		validation.Field(&r.GrantType,
			validation.Required,
			customValidation.GrantType(GrantTypeRefreshToken),
		),
	)
}

// LogoutRequest contains the refresh token of the session to end. It may be empty.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}
