package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured means no PayPal credentials are present.
var ErrNotConfigured = errors.New("payment: paypal not configured")

// Order is the subset of a PayPal order the proxy cares about.
type Order struct {
	ID       string
	Status   string
	Currency string
	Value    string
}

// Approved reports whether the order reached a chargeable state.
func (o Order) Approved() bool {
	return o.Status == "COMPLETED" || o.Status == "APPROVED"
}

// AmountAtLeast reports whether the order was paid in the given currency
// for at least min units.
func (o Order) AmountAtLeast(currency string, min float64) bool {
	if o.Currency != currency {
		return false
	}
	value, err := strconv.ParseFloat(o.Value, 64)
	if err != nil {
		return false
	}
	return value >= min
}

// Verifier checks a payment order against the processor. One call per
// purchase-confirmation request.
type Verifier interface {
	VerifyOrder(ctx context.Context, orderID string) (*Order, error)
}

// PayPalOptions configures the live verifier.
type PayPalOptions struct {
	ClientID     string
	ClientSecret string
	// Env selects the API host: "live" or anything else for sandbox.
	Env        string
	HTTPClient *http.Client
}

// PayPalVerifier verifies orders against the PayPal Orders v2 API using a
// client-credentials token per verification.
type PayPalVerifier struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
}

func NewPayPalVerifier(opts PayPalOptions) *PayPalVerifier {
	base := "https://api-m.sandbox.paypal.com"
	if opts.Env == "live" {
		base = "https://api-m.paypal.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PayPalVerifier{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		baseURL:      base,
		httpClient:   client,
	}
}

// SetBaseURL overrides the API host. Tests only.
func (v *PayPalVerifier) SetBaseURL(base string) {
	v.baseURL = strings.TrimRight(base, "/")
}

// Configured reports whether credentials are present.
func (v *PayPalVerifier) Configured() bool {
	return v.clientID != "" && v.clientSecret != ""
}

func (v *PayPalVerifier) VerifyOrder(ctx context.Context, orderID string) (*Order, error) {
	if !v.Configured() {
		return nil, ErrNotConfigured
	}

	token, err := v.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/v2/checkout/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("payment: build order request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment: fetch order: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment: order lookup http %d", resp.StatusCode)
	}

	var body struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Amount struct {
				Value        string `json:"value"`
				CurrencyCode string `json:"currency_code"`
			} `json:"amount"`
		} `json:"purchase_units"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("payment: decode order: %w", err)
	}

	order := &Order{ID: body.ID, Status: body.Status}
	if len(body.PurchaseUnits) > 0 {
		order.Currency = body.PurchaseUnits[0].Amount.CurrencyCode
		order.Value = body.PurchaseUnits[0].Amount.Value
	}
	return order, nil
}

func (v *PayPalVerifier) accessToken(ctx context.Context) (string, error) {
	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("payment: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(v.clientID, v.clientSecret)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment: fetch token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment: token http %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("payment: decode token: %w", err)
	}
	if body.AccessToken == "" {
		return "", errors.New("payment: empty access token")
	}
	return body.AccessToken, nil
}

var _ Verifier = (*PayPalVerifier)(nil)
