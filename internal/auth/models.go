package auth

import "time"

// Token is a signed bearer token for the HTTP surface.
type Token struct {
	Value     string    `json:"token"`
	Subject   string    `json:"operator"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OperatorClaims describes the validated identity extracted from a token.
type OperatorClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
