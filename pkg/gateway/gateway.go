package gateway

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRequest carries everything the provider needs to start a charge.
type PaymentRequest struct {
	PaymentID   uuid.UUID
	TenantID    uuid.UUID
	Amount      int64
	Currency    string
	Description string
}

// PaymentReference is the provider-side handle returned on initiation.
type PaymentReference struct {
	ProviderPaymentID string
	ConfirmationURL   string
}

// Provider is the narrow payment gateway contract. InitiatePayment starts a
// charge and returns the provider reference; the completion half arrives out
// of band and is applied through billing.ActivateSubscription.
type Provider interface {
	Name() string
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentReference, error)
}
