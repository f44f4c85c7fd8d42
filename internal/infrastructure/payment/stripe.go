package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/umai/recipe-api/internal/core/ports"
	"github.com/umai/recipe-api/internal/pkg/breaker"
)

const defaultTimeout = 5 * time.Second

// ErrNotConfigured is returned when no processor secret key is set.
var ErrNotConfigured = errors.New("payment processor not configured")

type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeProcessor creates Stripe payment intents behind a circuit breaker.
type StripeProcessor struct {
	intents intentCreator
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	enabled bool
}

// NewStripeProcessor returns a processor using secretKey. An empty key
// yields a processor that always fails with ErrNotConfigured.
func NewStripeProcessor(secretKey string, log zerolog.Logger) *StripeProcessor {
	return &StripeProcessor{
		intents: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		cb:      breaker.New("stripe", log),
		timeout: defaultTimeout,
		enabled: secretKey != "",
	}
}

func (p *StripeProcessor) CreatePaymentIntent(ctx context.Context, req ports.PaymentIntentRequest) (string, error) {
	if !p.enabled {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.UserID != "" {
		params.AddMetadata("user_id", req.UserID)
	}

	res, err := p.cb.Execute(func() (interface{}, error) {
		return p.intents.New(params)
	})
	if err != nil {
		return "", fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return res.(*stripe.PaymentIntent).ClientSecret, nil
}
