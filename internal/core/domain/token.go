package domain

import "time"

const TokenTypeBearer = "bearer"

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	Subject   string
	Scopes    []string
	ExpiresAt time.Time
	ID        string
}

// IssuedToken is what the token endpoint hands back to the client.
type IssuedToken struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	Scopes      []string `json:"-"`
}
