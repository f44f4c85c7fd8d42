package ports

import "context"

// TopUpInput adds funds to the caller's own balance.
type TopUpInput struct {
	Amount         *int64
	IdempotencyKey string
}

// DonateInput moves funds from the caller to another user.
type DonateInput struct {
	TargetUserID   string
	Amount         *int64
	IdempotencyKey string
}

type LedgerService interface {
	TopUp(ctx context.Context, userID string, in TopUpInput) error
	Donate(ctx context.Context, senderID string, in DonateInput) error
}

// ClaimResult is the outcome of claiming an idempotency key.
type ClaimResult int

const (
	// ClaimAcquired means the key was free and now belongs to this request.
	ClaimAcquired ClaimResult = iota
	// ClaimCompleted means an identical request already finished.
	ClaimCompleted
	// ClaimInProgress means an identical request holds the key and has not finished.
	ClaimInProgress
	// ClaimMismatch means the key was used for a different request.
	ClaimMismatch
)

// IdempotencyGuard remembers ledger requests that were already applied.
// A fingerprint identifies the request body so a key cannot be reused for a
// different operation.
type IdempotencyGuard interface {
	Claim(ctx context.Context, scope, userID, key, fingerprint string) (ClaimResult, error)
	// Complete marks a claimed request as applied.
	Complete(ctx context.Context, scope, userID, key, fingerprint string) error
	// Release forgets a claim so the request can be retried.
	Release(ctx context.Context, scope, userID, key string) error
}
