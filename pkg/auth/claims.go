package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Roles  []string
	Admin  bool
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients. Roles carries
// the customer pricing roles used as the fallback role set when a quote
// request does not name one explicitly.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles,omitempty"`
	Admin  bool      `json:"admin,omitempty"`
	jwt.RegisteredClaims
}
