package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/junaidrashid-git/restaurant-pos-api/models"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// Razorpay settles the wallet methods (Khalti, eSewa).
type Razorpay struct {
	api *razorpay.Client
}

// NewRazorpay returns an unconfigured gateway when either credential is
// empty. baseURL overrides the API host.
func NewRazorpay(baseURL, keyID, secret string, httpClient *http.Client) *Razorpay {
	if keyID == "" || secret == "" {
		return &Razorpay{}
	}
	api := razorpay.NewClient(keyID, secret)
	api.Payment.Request.BaseURL = strings.TrimRight(baseURL, "/")
	if httpClient != nil {
		api.Payment.Request.HTTPClient = httpClient
	}
	return &Razorpay{api: api}
}

func (r *Razorpay) Name() models.PaymentGateway { return models.GatewayRazorpay }

// Verify requires the payment to be captured for exactly amount. The SDK
// does not take a context, so ctx only guards the call from starting late.
func (r *Razorpay) Verify(ctx context.Context, paymentID string, amount decimal.Decimal) error {
	if r.api == nil {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	payment, err := r.api.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return fmt.Errorf("razorpay API error: %w", err)
	}
	if status := stringField(payment, "status"); status != "captured" {
		return fmt.Errorf("%w: payment %s is %s", ErrDeclined, paymentID, status)
	}
	if paid := intField(payment, "amount"); paid != minorUnits(amount) {
		return fmt.Errorf("%w: payment %s is for %d, not %d", ErrAmountMismatch, paymentID, paid, minorUnits(amount))
	}
	return nil
}

func (r *Razorpay) Refund(ctx context.Context, paymentID string, amount decimal.Decimal) error {
	if r.api == nil {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	refund, err := r.api.Payment.Refund(paymentID, int(minorUnits(amount)), map[string]interface{}{}, nil)
	if err != nil {
		return fmt.Errorf("razorpay API error: %w", err)
	}
	if status := stringField(refund, "status"); status != "processed" {
		return fmt.Errorf("%w: refund %s is %s", ErrDeclined, stringField(refund, "id"), status)
	}
	return nil
}

func stringField(body map[string]interface{}, key string) string {
	s, _ := body[key].(string)
	return s
}

// intField reads a JSON number, which the SDK decodes as float64.
func intField(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return -1
}
