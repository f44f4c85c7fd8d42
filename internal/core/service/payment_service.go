package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/umai/recipe-api/internal/core/ports"
)

type PaymentService struct {
	processor ports.PaymentProcessor
	currency  string
	log       zerolog.Logger
}

func NewPaymentService(processor ports.PaymentProcessor, currency string, log zerolog.Logger) *PaymentService {
	return &PaymentService{processor: processor, currency: currency, log: log}
}

// CreatePaymentIntent asks the processor for a client secret. Completing the
// payment does not credit the balance; top-up is a separate request.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID string, amount *int64) (string, error) {
	value, err := positiveAmount(amount)
	if err != nil {
		return "", err
	}

	secret, err := s.processor.CreatePaymentIntent(ctx, ports.PaymentIntentRequest{
		Amount:   value,
		Currency: s.currency,
		UserID:   userID,
	})
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}

	s.log.Info().Str("user_id", userID).Int64("amount", value).Msg("payment intent created")
	return secret, nil
}
