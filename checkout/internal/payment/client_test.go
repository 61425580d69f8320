package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novabook/bookify/checkout/pkg/request"
	"github.com/novabook/bookify/internal/config"
)

var testCredentials = request.PaymentCredentials{Method: "card", Token: "tok_visa"}

func TestRequestIntent_NonPositiveAmountRefusedLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the payment service for a non-positive amount")
	}))
	defer srv.Close()

	client := NewClient(config.Collaborator{BaseUrl: srv.URL})

	_, err := client.RequestIntent(context.Background(), decimal.Zero, "USD", nil)
	var intentErr *IntentError
	require.ErrorAs(t, err, &intentErr)
	require.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = client.RequestIntent(
		context.Background(),
		decimal.RequireFromString("-10"),
		"USD",
		nil,
	)
	require.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestRequestIntent_SendsAmountAndBookingIds(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment-intents", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"intentId":     "intent-1",
			"clientAmount": "160.40",
			"currency":     "USD",
		})
	}))
	defer srv.Close()

	client := NewClient(config.Collaborator{BaseUrl: srv.URL})
	intent, err := client.RequestIntent(
		context.Background(),
		decimal.RequireFromString("160.40"),
		"USD",
		[]string{"booking-1", "booking-2"},
	)

	require.NoError(t, err)
	assert.Equal(t, "intent-1", intent.ID)
	assert.Equal(t, "USD", intent.Currency)
	assert.True(t, intent.ClientAmount.Equal(decimal.RequireFromString("160.4")))

	assert.Equal(t, "160.40", got["amount"])
	assert.Equal(t, "USD", got["currency"])
	assert.Equal(t, []interface{}{"booking-1", "booking-2"}, got["bookingIds"])
}

func TestRequestIntent_RejectionIsIntentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "amount mismatch"})
	}))
	defer srv.Close()

	client := NewClient(config.Collaborator{BaseUrl: srv.URL})
	_, err := client.RequestIntent(
		context.Background(),
		decimal.RequireFromString("160.40"),
		"USD",
		nil,
	)

	var intentErr *IntentError
	require.ErrorAs(t, err, &intentErr)
	assert.Contains(t, intentErr.Error(), "amount mismatch")
}

func TestConfirm_SendsIntentAndCredentials(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment-confirmations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "settled",
			"reference": "ref-1",
		})
	}))
	defer srv.Close()

	client := NewClient(config.Collaborator{BaseUrl: srv.URL})
	settlement, err := client.Confirm(context.Background(), "intent-1", testCredentials)

	require.NoError(t, err)
	assert.Equal(t, SettlementSettled, settlement.Status)
	assert.Equal(t, "ref-1", settlement.Reference)

	assert.Equal(t, "intent-1", got["intentId"])
	credentials, ok := got["credentials"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "card", credentials["method"])
	// The real token goes on the wire; only logs redact it.
	assert.Equal(t, "tok_visa", credentials["token"])
}

func TestConfirm_DeclinedIsConfirmationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "failed",
			"reference": "",
		})
	}))
	defer srv.Close()

	client := NewClient(config.Collaborator{BaseUrl: srv.URL})
	settlement, err := client.Confirm(context.Background(), "intent-1", testCredentials)

	var confirmationErr *ConfirmationError
	require.ErrorAs(t, err, &confirmationErr)
	assert.Equal(t, "intent-1", confirmationErr.IntentID)
	assert.Equal(t, SettlementFailed, settlement.Status)
}

func TestConfirm_TransportFailureIsConfirmationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(config.Collaborator{BaseUrl: srv.URL})
	_, err := client.Confirm(context.Background(), "intent-1", testCredentials)

	var confirmationErr *ConfirmationError
	require.ErrorAs(t, err, &confirmationErr)
}
