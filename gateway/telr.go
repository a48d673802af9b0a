package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/shopspring/decimal"
)

// Telr status code for a paid order.
const telrStatusPaid = 3

// Telr serves MOBILE_WALLET payments through Telr hosted payment pages.
type Telr struct {
	apiURL  string
	storeID int
	authKey string
	client  *http.Client
}

func NewTelr(apiURL string, storeID int, authKey string, client *http.Client) *Telr {
	return &Telr{apiURL: apiURL, storeID: storeID, authKey: authKey, client: client}
}

func (t *Telr) Name() models.PaymentGateway { return models.GatewayTelr }

// telrResponse represents a Telr order.json response
type telrResponse struct {
	Order struct {
		Ref    string `json:"ref"`
		URL    string `json:"url"`
		CartID string `json:"cartid"`
		Amount string `json:"amount"`
		Status struct {
			Code int    `json:"code"` // 3 = Paid
			Text string `json:"text"`
		} `json:"status"`
	} `json:"order"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Session is a hosted payment page opened for an order.
type Session struct {
	Ref string `json:"orderRef"`
	URL string `json:"paymentUrl"`
}

// SessionRequest describes the hosted payment page to open.
type SessionRequest struct {
	CartID      string
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	Test        bool
}

// CreateSession opens a hosted payment page and returns its URL and reference.
func (t *Telr) CreateSession(ctx context.Context, in SessionRequest) (Session, error) {
	test := 0
	if in.Test {
		test = 1
	}
	payload := map[string]any{
		"method":  "create",
		"store":   t.storeID,
		"authkey": t.authKey,
		"order": map[string]any{
			"cartid":      in.CartID,
			"test":        test,
			"amount":      in.Amount.StringFixed(2),
			"currency":    in.Currency,
			"description": in.Description,
		},
		"return": map[string]string{
			"authorised": in.ReturnURL,
			"declined":   in.ReturnURL,
			"cancelled":  in.ReturnURL,
		},
	}

	resp, err := t.do(ctx, payload)
	if err != nil {
		return Session{}, err
	}
	if resp.Order.URL == "" {
		return Session{}, fmt.Errorf("telr returned empty payment URL")
	}
	return Session{Ref: resp.Order.Ref, URL: resp.Order.URL}, nil
}

// Verify runs Telr's check method against a hosted-page order reference and
// requires the paid order to match amount when Telr reports one.
func (t *Telr) Verify(ctx context.Context, ref string, amount decimal.Decimal) error {
	payload := map[string]any{
		"method":  "check",
		"store":   t.storeID,
		"authkey": t.authKey,
		"order":   map[string]string{"ref": ref},
	}

	resp, err := t.do(ctx, payload)
	if err != nil {
		return err
	}
	if resp.Order.Status.Code != telrStatusPaid {
		return fmt.Errorf("%w: telr order %s is %q", ErrDeclined, ref, resp.Order.Status.Text)
	}
	if resp.Order.Amount != "" {
		paid, err := decimal.NewFromString(resp.Order.Amount)
		if err != nil || !paid.Equal(amount) {
			return fmt.Errorf("%w: telr order %s is for %s, not %s", ErrAmountMismatch, ref, resp.Order.Amount, amount.StringFixed(2))
		}
	}
	return nil
}

// Refund is not offered over the order.json API.
func (t *Telr) Refund(ctx context.Context, ref string, amount decimal.Decimal) error {
	return ErrUnsupported
}

func (t *Telr) do(ctx context.Context, payload map[string]any) (telrResponse, error) {
	var out telrResponse
	if t.storeID == 0 || t.authKey == "" || t.apiURL == "" {
		return out, ErrNotConfigured
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return out, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return out, fmt.Errorf("failed to reach Telr: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("telr API error (%d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to parse Telr response: %w", err)
	}
	if out.Error != nil {
		return out, fmt.Errorf("telr error: %s", out.Error.Message)
	}
	return out, nil
}
