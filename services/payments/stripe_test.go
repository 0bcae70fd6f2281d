package payments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/photoproos/platform/config"
	"github.com/photoproos/platform/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *StripeClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewStripeClient(config.StripeConfig{
		SecretKey: "sk_test_123",
		BaseURL:   server.URL,
		Timeout:   2 * time.Second,
	}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestStripeClient_CreatePaymentIntent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "checkout_inv_1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "4500", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "inv-1", r.PostForm.Get("metadata[invoice_id]"))

		writeJSON(w, http.StatusOK, `{"id":"pi_1","amount":4500,"currency":"usd","status":"requires_payment_method","client_secret":"pi_1_secret"}`)
	})

	intent, err := client.CreatePaymentIntent(context.Background(), IntentParams{
		AmountCents:    4500,
		Currency:       "usd",
		Metadata:       map[string]string{"invoice_id": "inv-1"},
		IdempotencyKey: "checkout_inv_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
}

func TestStripeClient_Transfer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transfers", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "acct_9", r.PostForm.Get("destination"))
		assert.Equal(t, "12000", r.PostForm.Get("amount"))
		writeJSON(w, http.StatusOK, `{"id":"tr_1","amount":12000,"currency":"usd","destination":"acct_9"}`)
	})

	id, err := client.Transfer(context.Background(), "acct_9", 12000, "usd", "payout_item_1")
	require.NoError(t, err)
	assert.Equal(t, "tr_1", id)
}

func TestStripeClient_RefundPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_7", r.PostForm.Get("payment_intent"))
		assert.Empty(t, r.PostForm.Get("amount"))
		writeJSON(w, http.StatusOK, `{"id":"re_1","amount":3000,"status":"succeeded","payment_intent":"pi_7"}`)
	})

	refund, err := client.RefundPayment(context.Background(), "pi_7", 0, "")
	require.NoError(t, err)
	assert.Equal(t, "re_1", refund.ID)
	assert.Equal(t, int64(3000), refund.Amount)
}

func TestStripeClient_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"error":{"type":"invalid_request_error","code":"account_invalid","message":"No such destination"}}`)
		})

		_, err := client.Transfer(context.Background(), "acct_x", 100, "usd", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrProviderError)
		assert.Contains(t, err.Error(), "No such destination")
	})

	t.Run("not configured", func(t *testing.T) {
		client := NewStripeClient(config.StripeConfig{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())
		_, err := client.CreatePaymentIntent(context.Background(), IntentParams{AmountCents: 100, Currency: "usd"})
		assert.ErrorIs(t, err, services.ErrProviderUnavailable)
	})
}
