package gateway

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/modulehq/platform-backend/pkg/config"
)

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.PaymentConfig{Provider: "paypal"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestInitiatePayment(t *testing.T) {
	provider, err := New(context.Background(), config.PaymentConfig{
		Provider: "yookassa",
		ShopID:   "shop-1",
		Currency: "RUB",
	}, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	paymentID := uuid.New()
	ref, err := provider.InitiatePayment(context.Background(), PaymentRequest{
		PaymentID: paymentID,
		TenantID:  uuid.New(),
		Amount:    299000,
	})
	if err != nil {
		t.Fatalf("initiate payment: %v", err)
	}
	if ref.ProviderPaymentID != "yk_"+paymentID.String() {
		t.Fatalf("unexpected provider payment id %s", ref.ProviderPaymentID)
	}
	if !strings.Contains(ref.ConfirmationURL, "amount=2990.00") {
		t.Fatalf("expected major-unit amount in url, got %s", ref.ConfirmationURL)
	}
	if !strings.Contains(ref.ConfirmationURL, "currency=RUB") {
		t.Fatalf("expected currency in url, got %s", ref.ConfirmationURL)
	}
}

func TestInitiatePaymentRejectsZeroAmount(t *testing.T) {
	provider := &YooKassaClient{currency: "RUB"}
	if _, err := provider.InitiatePayment(context.Background(), PaymentRequest{
		PaymentID: uuid.New(),
		Amount:    0,
	}); err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(99000); got != "990.00" {
		t.Fatalf("expected 990.00, got %s", got)
	}
	if got := FormatAmount(999000); got != "9990.00" {
		t.Fatalf("expected 9990.00, got %s", got)
	}
}
