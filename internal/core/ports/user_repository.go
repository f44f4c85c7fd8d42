package ports

import (
	"context"

	"github.com/umai/recipe-api/internal/core/domain"
)

// UserRepository persists accounts in the users collection.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistsByUsernameOrEmail reports whether either value is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// AttachProfileImage moves the user from ImageStateCreated to ImageStateAttached.
	AttachProfileImage(ctx context.Context, id, url string) error
	IncrementFinishedRecipe(ctx context.Context, id string) error
	// Ranking returns users ordered by finished recipe count, highest first.
	Ranking(ctx context.Context, limit int) ([]domain.PublicUser, error)
}

// LedgerRepository applies balance changes. Every method is atomic with
// respect to the documents it touches.
type LedgerRepository interface {
	Increment(ctx context.Context, userID string, amount int64) error
	// Decrement fails with domain.ErrInsufficientBalance instead of letting
	// the balance go negative.
	Decrement(ctx context.Context, userID string, amount int64) error
	// Transfer moves amount from one account to another in one transaction.
	Transfer(ctx context.Context, fromID, toID string, amount int64) error
}
