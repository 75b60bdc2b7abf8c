// Package payment talks to the payment gateway and verifies its callback signatures.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// RemoteOrder is the gateway's view of an order awaiting payment.
type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type gatewayError struct {
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

type Gateway struct {
	baseURL   string
	keyID     string
	keySecret string
	currency  string
	client    *http.Client
}

func NewGateway(baseURL, keyID, keySecret, currency string) *Gateway {
	return &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// MaxReceiptLength is the longest receipt the gateway accepts.
const MaxReceiptLength = 40

// NewReceipt returns a fresh idempotency receipt that fits MaxReceiptLength.
func NewReceipt() string {
	return "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Secret is the shared secret callbacks are signed with.
func (g *Gateway) Secret() string { return g.keySecret }

// CreateOrder registers an order of amount (major units) with the gateway.
// receipt is the idempotency key the gateway deduplicates on.
func (g *Gateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*RemoteOrder, error) {
	if g.keyID == "" || g.keySecret == "" {
		return nil, errors.New("payment gateway configuration missing")
	}
	if !amount.IsPositive() {
		return nil, errors.New("amount must be positive")
	}

	payload := map[string]any{
		"amount":   amount.Shift(2).Round(0).IntPart(),
		"currency": g.currency,
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "reach payment gateway")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read payment gateway response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ge gatewayError
		if json.Unmarshal(raw, &ge) == nil && ge.Error != nil {
			return nil, errors.Errorf("payment gateway error (%d): %s", resp.StatusCode, ge.Error.Description)
		}
		return nil, errors.Errorf("payment gateway error (%d): %s", resp.StatusCode, string(raw))
	}

	var order RemoteOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, errors.Wrap(err, "parse payment gateway response")
	}
	if order.ID == "" {
		return nil, errors.New("payment gateway returned empty order id")
	}
	return &order, nil
}
