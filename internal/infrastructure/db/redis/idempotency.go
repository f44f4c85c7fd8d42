package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/umai/recipe-api/internal/core/ports"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour

	statePending = "pending"
	stateDone    = "done"

	// claimAttempts bounds the retry when a competing claim is released
	// between SETNX and GET.
	claimAttempts = 3
)

// IdempotencyGuard remembers ledger requests by their Idempotency-Key.
// Key format: idem:<scope>:<user_id>:<key>
// Value format: <state>:<fingerprint>
type IdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyGuard creates a guard whose claims expire after ttl.
func NewIdempotencyGuard(client *redis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyGuard{client: client, ttl: ttl}
}

// Claim stores a pending marker for the key, or classifies the existing one
// against fingerprint.
func (g *IdempotencyGuard) Claim(ctx context.Context, scope, userID, key, fingerprint string) (ports.ClaimResult, error) {
	k := idempotencyKey(scope, userID, key)
	for i := 0; i < claimAttempts; i++ {
		ok, err := g.client.SetNX(ctx, k, claimValue(statePending, fingerprint), g.ttl).Result()
		if err != nil {
			return ports.ClaimAcquired, fmt.Errorf("idempotency claim: %w", err)
		}
		if ok {
			return ports.ClaimAcquired, nil
		}

		stored, err := g.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return ports.ClaimAcquired, fmt.Errorf("idempotency lookup: %w", err)
		}
		return classifyClaim(stored, fingerprint), nil
	}
	return ports.ClaimInProgress, nil
}

// Complete marks the claim as applied for the rest of the ttl.
func (g *IdempotencyGuard) Complete(ctx context.Context, scope, userID, key, fingerprint string) error {
	if err := g.client.Set(ctx, idempotencyKey(scope, userID, key), claimValue(stateDone, fingerprint), g.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release forgets a claim so a failed request can be retried with the same key.
func (g *IdempotencyGuard) Release(ctx context.Context, scope, userID, key string) error {
	if err := g.client.Del(ctx, idempotencyKey(scope, userID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func idempotencyKey(scope, userID, key string) string {
	return fmt.Sprintf("idem:%s:%s:%s", scope, userID, key)
}

func claimValue(state, fingerprint string) string {
	return state + ":" + fingerprint
}

// classifyClaim compares a stored claim value with the fingerprint of the
// incoming request.
func classifyClaim(stored, fingerprint string) ports.ClaimResult {
	state, fp, ok := strings.Cut(stored, ":")
	if !ok || fp != fingerprint {
		return ports.ClaimMismatch
	}
	if state == stateDone {
		return ports.ClaimCompleted
	}
	return ports.ClaimInProgress
}
