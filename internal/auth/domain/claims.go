package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// RealmAccess lists the realm roles granted to the token subject.
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// Claims is the payload of an access token already accepted by the identity provider.
type Claims struct {
	PreferredUsername string      `json:"preferred_username"`
	Party             []string    `json:"party,omitempty"`
	RealmAccess       RealmAccess `json:"realm_access"`
	jwt.RegisteredClaims
}
