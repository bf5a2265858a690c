package auth

import "docvault/internal/domain/models"

// TokenVerifier validates a bearer credential from the identity provider
// and yields the pre-authenticated principal. The abstraction keeps the
// middleware agnostic to the verification details.
type TokenVerifier interface {
	// VerifyToken validates a JWT token string and returns the principal.
	// Returns an error if the token is invalid, expired, or has an
	// invalid signature.
	VerifyToken(tokenString string) (*models.Principal, error)

	// Close releases any resources held by the verifier (e.g., HTTP
	// connections for JWKS refresh).
	Close() error
}
