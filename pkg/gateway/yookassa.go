package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modulehq/platform-backend/pkg/config"
	"github.com/modulehq/platform-backend/pkg/logger"
)

const providerYooKassa = "yookassa"

var errUnknownProvider = errors.New("unknown payment provider")

// YooKassaClient is the offline YooKassa provider. It mints deterministic
// provider references and confirmation URLs without calling the API, so the
// upgrade flow works end to end before real credentials are wired.
type YooKassaClient struct {
	shopID   string
	currency string
}

// New selects a provider implementation from configuration.
func New(ctx context.Context, cfg config.PaymentConfig, logg *logger.Logger) (Provider, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider == "" {
		provider = providerYooKassa
	}
	switch provider {
	case providerYooKassa:
		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("payment provider initialized (%s)", provider))
		}
		return &YooKassaClient{
			shopID:   strings.TrimSpace(cfg.ShopID),
			currency: cfg.Currency,
		}, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownProvider, cfg.Provider)
	}
}

// Name reports the provider identifier stored on payments.
func (c *YooKassaClient) Name() string {
	return providerYooKassa
}

// InitiatePayment returns a reference pointing at the hosted confirmation page.
func (c *YooKassaClient) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentReference, error) {
	if req.PaymentID == uuid.Nil {
		return nil, errors.New("payment id is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %d", req.Amount)
	}

	currency := req.Currency
	if currency == "" {
		currency = c.currency
	}

	providerPaymentID := fmt.Sprintf("yk_%s", req.PaymentID)
	confirmation := url.URL{
		Scheme: "https",
		Host:   "yookassa.ru",
		Path:   "/checkout/payments/" + providerPaymentID,
	}
	query := confirmation.Query()
	query.Set("amount", FormatAmount(req.Amount))
	query.Set("currency", currency)
	if c.shopID != "" {
		query.Set("shop_id", c.shopID)
	}
	confirmation.RawQuery = query.Encode()

	return &PaymentReference{
		ProviderPaymentID: providerPaymentID,
		ConfirmationURL:   confirmation.String(),
	}, nil
}

// FormatAmount renders minor units as a major-unit decimal string ("990.00").
func FormatAmount(minor int64) string {
	return decimal.NewFromInt(minor).Shift(-2).StringFixed(2)
}
