package ports

import (
	"context"

	"github.com/umai/recipe-api/internal/core/domain"
)

// ImageStore uploads images to object storage and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, folder, name string, img *domain.Image) (string, error)
}

// PaymentIntentRequest describes a payment to be collected by the processor.
type PaymentIntentRequest struct {
	Amount   int64
	Currency string
	UserID   string
}

// PaymentProcessor creates payment intents with an external processor.
type PaymentProcessor interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (clientSecret string, err error)
}

type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, userID string, amount *int64) (string, error)
}
