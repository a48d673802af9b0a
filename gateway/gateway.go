// Package gateway verifies and refunds non-cash payments against the card and
// wallet providers.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/junaidrashid-git/restaurant-pos-api/config"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrDeclined             = errors.New("payment declined by gateway")
	ErrConfirmationRequired = errors.New("gateway confirmation required")
	ErrUnsupported          = errors.New("operation not supported by gateway")
	ErrNotConfigured        = errors.New("gateway not configured")
	ErrAmountMismatch       = errors.New("gateway amount does not match payment")
)

// Gateway is one external payment provider.
type Gateway interface {
	Name() models.PaymentGateway
	// Verify returns nil when the provider reports ref as paid for amount.
	Verify(ctx context.Context, ref string, amount decimal.Decimal) error
	// Refund returns nil when the provider accepted the refund.
	Refund(ctx context.Context, ref string, amount decimal.Decimal) error
}

// Metadata carries the provider references a client sends with a payment.
type Metadata struct {
	StripePaymentIntentID string `json:"stripePaymentIntentId,omitempty"`
	RazorpayPaymentID     string `json:"razorpayPaymentId,omitempty"`
	TelrOrderRef          string `json:"telrOrderRef,omitempty"`
}

// Ref returns the provider reference relevant to gw.
func (m Metadata) Ref(gw models.PaymentGateway) string {
	switch gw {
	case models.GatewayStripe:
		return m.StripePaymentIntentID
	case models.GatewayRazorpay:
		return m.RazorpayPaymentID
	case models.GatewayTelr:
		return m.TelrOrderRef
	}
	return ""
}

// Result is the outcome of charging a payment method.
type Result struct {
	Gateway   models.PaymentGateway
	Status    models.PaymentStatus
	Reference string
	Simulated bool
}

// Registry dispatches payment methods to their gateway.
type Registry struct {
	stripe   Gateway
	razorpay Gateway
	telr     Gateway
	demoMode bool
	logger   *zap.SugaredLogger
}

func NewRegistry(stripe, razorpay, telr Gateway, demoMode bool, logger *zap.SugaredLogger) *Registry {
	return &Registry{stripe: stripe, razorpay: razorpay, telr: telr, demoMode: demoMode, logger: logger}
}

// NewRegistryFromConfig builds the production gateways from cfg.
func NewRegistryFromConfig(cfg config.Payments, logger *zap.SugaredLogger) *Registry {
	client := &http.Client{Timeout: 15 * time.Second}
	return NewRegistry(
		NewStripe(cfg.StripeAPIURL, cfg.StripeSecretKey, client, logger),
		NewRazorpay(cfg.RazorpayAPIURL, cfg.RazorpayKeyID, cfg.RazorpaySecret, client),
		NewTelr(cfg.TelrAPIURL, cfg.TelrStoreID, cfg.TelrAuthKey, client),
		cfg.DemoMode,
		logger,
	)
}

// Charge resolves the status of a payment of amount made with method.
func (r *Registry) Charge(ctx context.Context, method models.PaymentMethod, amount decimal.Decimal, meta Metadata) (Result, error) {
	switch method {
	case models.PaymentMethodCash:
		return Result{Gateway: models.GatewayCash, Status: models.PaymentStatusCompleted}, nil
	case models.PaymentMethodCard:
		return r.confirm(ctx, r.stripe, meta.StripePaymentIntentID, amount)
	case models.PaymentMethodKhalti, models.PaymentMethodEsewa:
		return r.confirm(ctx, r.razorpay, meta.RazorpayPaymentID, amount)
	case models.PaymentMethodMobileWallet:
		return r.confirm(ctx, r.telr, meta.TelrOrderRef, amount)
	}
	return Result{}, ErrUnsupported
}

func (r *Registry) confirm(ctx context.Context, gw Gateway, ref string, amount decimal.Decimal) (Result, error) {
	if ref == "" {
		if !r.demoMode {
			return Result{}, ErrConfirmationRequired
		}
		r.logger.Warnw("simulating gateway success without confirmation", "gateway", gw.Name())
		return Result{Gateway: gw.Name(), Status: models.PaymentStatusCompleted, Simulated: true}, nil
	}
	if err := gw.Verify(ctx, ref, amount); err != nil {
		return Result{}, err
	}
	return Result{Gateway: gw.Name(), Status: models.PaymentStatusCompleted, Reference: ref}, nil
}

// Refund returns amount through the gateway that took the original payment.
func (r *Registry) Refund(ctx context.Context, name models.PaymentGateway, ref string, amount decimal.Decimal) error {
	var gw Gateway
	switch name {
	case models.GatewayCash:
		return nil
	case models.GatewayStripe:
		gw = r.stripe
	case models.GatewayRazorpay:
		gw = r.razorpay
	case models.GatewayTelr:
		gw = r.telr
	default:
		return ErrUnsupported
	}

	if ref == "" {
		if !r.demoMode {
			return ErrConfirmationRequired
		}
		r.logger.Warnw("simulating gateway refund for unconfirmed payment", "gateway", name)
		return nil
	}
	return gw.Refund(ctx, ref, amount)
}

// OpenSession opens a hosted payment page on the wallet gateway. The returned
// reference is sent back later as telrOrderRef.
func (r *Registry) OpenSession(ctx context.Context, in SessionRequest) (Session, error) {
	opener, ok := r.telr.(interface {
		CreateSession(context.Context, SessionRequest) (Session, error)
	})
	if !ok {
		return Session{}, ErrUnsupported
	}
	return opener.CreateSession(ctx, in)
}

// minorUnits converts an amount to cents/paise.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
