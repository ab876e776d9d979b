// Package domain defines the identity data model: tokens issued by the identity
// provider, the delegated authorization capability forwarded to the engine, parties
// and decoded token claims.
package domain

// Token is the token set issued by the identity provider on login or refresh.
// It is returned to the caller and never stored.
type Token struct {
	AccessToken  string
	ExpiresIn    int
	RefreshToken string
}
