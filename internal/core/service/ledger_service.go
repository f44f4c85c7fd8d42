package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
	"github.com/umai/recipe-api/internal/pkg/metrics"
)

const (
	opTopUp  = "topup"
	opDonate = "donate"
)

type ledgerService struct {
	ledger ports.LedgerRepository
	guard  ports.IdempotencyGuard
	log    zerolog.Logger
}

// NewLedgerService returns a LedgerService. guard may be nil, in which case
// Idempotency-Key values are ignored.
func NewLedgerService(ledger ports.LedgerRepository, guard ports.IdempotencyGuard, log zerolog.Logger) ports.LedgerService {
	return &ledgerService{ledger: ledger, guard: guard, log: log}
}

// TopUp credits the caller's own balance. It is not tied to a completed
// payment.
func (s *ledgerService) TopUp(ctx context.Context, userID string, in ports.TopUpInput) error {
	amount, err := positiveAmount(in.Amount)
	if err != nil {
		metrics.LedgerOperationsTotal.WithLabelValues(opTopUp, "rejected").Inc()
		return err
	}

	fingerprint := strconv.FormatInt(amount, 10)
	return s.apply(ctx, opTopUp, userID, in.IdempotencyKey, fingerprint, amount, func(ctx context.Context) error {
		return s.ledger.Increment(ctx, userID, amount)
	})
}

// Donate moves amount from sender to the target account in one transaction.
// Checks run in a fixed order: amount, target, self-donation.
func (s *ledgerService) Donate(ctx context.Context, senderID string, in ports.DonateInput) error {
	amount, err := positiveAmount(in.Amount)
	if err != nil {
		metrics.LedgerOperationsTotal.WithLabelValues(opDonate, "rejected").Inc()
		return err
	}

	target := strings.TrimSpace(in.TargetUserID)
	if target == "" {
		metrics.LedgerOperationsTotal.WithLabelValues(opDonate, "rejected").Inc()
		return domain.ErrTargetUserRequired
	}
	// Object ids are hex, so spellings that differ only in case name the same account.
	if strings.EqualFold(target, senderID) {
		metrics.LedgerOperationsTotal.WithLabelValues(opDonate, "rejected").Inc()
		return domain.ErrSelfDonation
	}

	fingerprint := strings.ToLower(target) + ":" + strconv.FormatInt(amount, 10)
	return s.apply(ctx, opDonate, senderID, in.IdempotencyKey, fingerprint, amount, func(ctx context.Context) error {
		return s.ledger.Transfer(ctx, senderID, target, amount)
	})
}

// apply runs write at most once per idempotency key. fingerprint identifies
// the request body; reusing a key for a different body is a conflict.
func (s *ledgerService) apply(ctx context.Context, op, userID, key, fingerprint string, amount int64, write func(context.Context) error) error {
	claimed := false
	if key != "" && s.guard != nil {
		res, err := s.guard.Claim(ctx, op, userID, key, fingerprint)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("op", op).Str("user_id", userID).Msg("idempotency check failed, applying anyway")
		case res == ports.ClaimCompleted:
			metrics.LedgerOperationsTotal.WithLabelValues(op, "replayed").Inc()
			s.log.Debug().Str("op", op).Str("user_id", userID).Str("idempotency_key", key).Msg("replayed ledger request skipped")
			return nil
		case res == ports.ClaimInProgress:
			metrics.LedgerOperationsTotal.WithLabelValues(op, "rejected").Inc()
			return domain.ErrIdempotencyKeyInProgress
		case res == ports.ClaimMismatch:
			metrics.LedgerOperationsTotal.WithLabelValues(op, "rejected").Inc()
			s.log.Warn().Str("op", op).Str("user_id", userID).Str("idempotency_key", key).Msg("idempotency key reused for a different request")
			return domain.ErrIdempotencyKeyReused
		default:
			claimed = true
		}
	}

	if err := write(ctx); err != nil {
		if claimed {
			if relErr := s.guard.Release(ctx, op, userID, key); relErr != nil {
				s.log.Warn().Err(relErr).Str("op", op).Str("user_id", userID).Msg("failed to release idempotency key")
			}
		}
		var de *domain.Error
		if errors.As(err, &de) {
			metrics.LedgerOperationsTotal.WithLabelValues(op, "rejected").Inc()
		} else {
			metrics.LedgerOperationsTotal.WithLabelValues(op, "error").Inc()
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if claimed {
		if err := s.guard.Complete(ctx, op, userID, key, fingerprint); err != nil {
			s.log.Warn().Err(err).Str("op", op).Str("user_id", userID).Msg("failed to mark idempotency key complete")
		}
	}

	metrics.LedgerOperationsTotal.WithLabelValues(op, "applied").Inc()
	metrics.LedgerAmountTotal.WithLabelValues(op).Add(float64(amount))
	s.log.Info().Str("op", op).Str("user_id", userID).Int64("amount", amount).Msg("ledger operation applied")
	return nil
}

func positiveAmount(amount *int64) (int64, error) {
	if amount == nil {
		return 0, domain.ErrAmountRequired
	}
	if *amount <= 0 {
		return 0, domain.ErrAmountInvalid
	}
	return *amount, nil
}
