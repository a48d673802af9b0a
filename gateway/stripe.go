package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"go.uber.org/zap"
)

// Stripe confirms and refunds card payments through the Stripe API.
type Stripe struct {
	api *client.API
}

// NewStripe returns an unconfigured gateway when secretKey is empty. baseURL
// overrides the API host, which tests point at an httptest server.
func NewStripe(baseURL, secretKey string, httpClient *http.Client, logger *zap.SugaredLogger) *Stripe {
	if secretKey == "" {
		return &Stripe{}
	}
	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		URL:               stripe.String(strings.TrimRight(baseURL, "/")),
		HTTPClient:        httpClient,
		LeveledLogger:     logger,
		MaxNetworkRetries: stripe.Int64(0),
	})
	return &Stripe{api: client.New(secretKey, backends)}
}

func (s *Stripe) Name() models.PaymentGateway { return models.GatewayStripe }

// Verify requires the intent to have succeeded for exactly amount.
func (s *Stripe) Verify(ctx context.Context, paymentIntentID string, amount decimal.Decimal) error {
	if s.api == nil {
		return ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := s.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return stripeError(err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("%w: payment intent %s is %s", ErrDeclined, paymentIntentID, intent.Status)
	}
	if intent.Amount != minorUnits(amount) {
		return fmt.Errorf("%w: payment intent %s is for %d, not %d", ErrAmountMismatch, paymentIntentID, intent.Amount, minorUnits(amount))
	}
	return nil
}

func (s *Stripe) Refund(ctx context.Context, paymentIntentID string, amount decimal.Decimal) error {
	if s.api == nil {
		return ErrNotConfigured
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Amount:        stripe.Int64(minorUnits(amount)),
	}
	params.Context = ctx
	refund, err := s.api.Refunds.New(params)
	if err != nil {
		return stripeError(err)
	}
	if refund.Status != stripe.RefundStatusSucceeded {
		return fmt.Errorf("%w: refund %s is %s", ErrDeclined, refund.ID, refund.Status)
	}
	return nil
}

func stripeError(err error) error {
	var apiErr *stripe.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("stripe API error (%d): %s", apiErr.HTTPStatusCode, apiErr.Msg)
	}
	return fmt.Errorf("failed to reach Stripe: %w", err)
}
