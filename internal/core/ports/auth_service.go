package ports

import (
	"context"

	"github.com/umai/recipe-api/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Fullname     string
	Username     string
	Email        string
	Password     string
	ProfileImage *domain.Image // optional unless required by policy
}

// LoginResult is returned on successful login.
type LoginResult struct {
	AccessToken string
	User        *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenClaims is the identity carried by a session token.
type TokenClaims struct {
	UserID   string
	Username string
	Fullname string
}

// TokenService issues and verifies signed bearer tokens.
type TokenService interface {
	Issue(claims TokenClaims) (string, error)
	// Verify fails with domain.ErrTokenInvalid on a bad signature, malformed
	// token, or expiry. A valid token may still carry an empty UserID.
	Verify(token string) (*TokenClaims, error)
}
