package auth

import (
	"github.com/blackwater-gg/craftworks/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   string
	Username string
	Role     enums.ActorRole
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Role     enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}
