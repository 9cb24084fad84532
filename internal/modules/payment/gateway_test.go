package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"staybook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntent_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 360.0, body["amount"])

		json.NewEncoder(w).Encode(Intent{
			ID:           "pi_123",
			ClientSecret: "pi_123_secret",
			Amount:       360,
			Currency:     "USD",
			Status:       domain.IntentRequiresPayment,
		})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk_test", 3, nil)
	intent, err := gw.CreateIntent(context.Background(), 360, "USD", map[string]string{"booking_id": "7"})

	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, domain.IntentRequiresPayment, intent.Status)
}

func TestCreateIntent_RetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(Intent{ID: "pi_retry", Status: domain.IntentRequiresPayment})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk_test", 4, nil)
	intent, err := gw.CreateIntent(context.Background(), 100, "USD", nil)

	require.NoError(t, err)
	assert.Equal(t, "pi_retry", intent.ID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCreateIntent_ExhaustedRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk_test", 3, nil)
	_, err := gw.CreateIntent(context.Background(), 100, "USD", nil)

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCreateIntent_DeclinedIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"card_declined"}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk_test", 5, nil)
	_, err := gw.CreateIntent(context.Background(), 100, "USD", nil)

	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetrieveIntent_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk_test", 2, nil)
	_, err := gw.RetrieveIntent(context.Background(), "pi_missing")

	assert.ErrorIs(t, err, ErrIntentNotFound)
}

func TestRefund_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		json.NewEncoder(w).Encode(Refund{ID: "re_1", Status: "succeeded"})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk_test", 2, nil)
	refund, err := gw.Refund(context.Background(), "pi_123", 360)

	require.NoError(t, err)
	assert.Equal(t, "re_1", refund.ID)
}
