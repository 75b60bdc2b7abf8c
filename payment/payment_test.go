package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("s"))
	mac.Write([]byte("O1|P1"))
	expected := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, Sign("s", "O1", "P1"))
	assert.NoError(t, VerifySignature("s", "O1", "P1", expected))

	for _, bad := range []string{"", "deadbeef", Sign("s", "O1", "P2"), Sign("t", "O1", "P1")} {
		err := VerifySignature("s", "O1", "P1", bad)
		assert.True(t, errors.Is(err, apperror.ErrInvalidPaymentSignature), bad)
	}
}

func TestGatewayCreateOrder(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_123","amount":49950,"currency":"INR","receipt":"r-1","status":"created"}`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL+"/", "key", "secret", "INR")
	order, err := g.CreateOrder(context.Background(), decimal.RequireFromString("499.50"), "r-1")
	require.NoError(t, err)

	assert.Equal(t, "order_123", order.ID)
	assert.Equal(t, int64(49950), order.Amount)
	assert.EqualValues(t, 49950, got["amount"])
	assert.Equal(t, "r-1", got["receipt"])
	assert.Equal(t, "INR", got["currency"])
}

func TestGatewayCreateOrderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "key", "secret", "INR")
	_, err := g.CreateOrder(context.Background(), decimal.NewFromInt(1), "r-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount too small")
}

func TestGatewayRequiresConfig(t *testing.T) {
	g := NewGateway("http://example.invalid", "", "", "INR")
	_, err := g.CreateOrder(context.Background(), decimal.NewFromInt(10), "r")
	assert.Error(t, err)
}

func TestNewReceiptFitsGatewayLimit(t *testing.T) {
	a, b := NewReceipt(), NewReceipt()
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(a), MaxReceiptLength)
	assert.Regexp(t, `^rcpt_[0-9a-f]{32}$`, a)
}
