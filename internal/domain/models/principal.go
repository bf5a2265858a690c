package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Principal is a pre-authenticated caller as yielded by the identity
// provider. The core never manages credentials; it performs only role and
// ownership checks against this value.
type Principal struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

// IdentityClaims are the JWT claims issued by the identity provider.
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}
