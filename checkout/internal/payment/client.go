package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/novabook/bookify/checkout/internal/otel"
	"github.com/novabook/bookify/checkout/pkg/request"
	"github.com/novabook/bookify/internal/config"
	inHttp "github.com/novabook/bookify/internal/http"
	"github.com/novabook/bookify/internal/log"
)

const (
	SettlementSettled = "settled"
	SettlementFailed  = "failed"
)

// Intent is a payment obligation opened on the payment service. ClientAmount
// echoes what the payment service will actually charge so a mismatch with the
// quote is detectable before confirmation.
type Intent struct {
	ID           string          `json:"intentId"`
	ClientAmount decimal.Decimal `json:"clientAmount"`
	Currency     string          `json:"currency"`
}

// Settlement is the outcome of confirming an intent.
type Settlement struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

type createIntent struct {
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	BookingIds []string        `json:"bookingIds"`
}

type confirmIntent struct {
	IntentId    string                     `json:"intentId"`
	Credentials request.PaymentCredentials `json:"credentials"`
}

// Client drives the payment service through its intent and confirm endpoints.
type Client struct {
	baseUrl string
	http    *http.Client
}

func NewClient(cfg config.Collaborator) *Client {
	return &Client{
		baseUrl: cfg.BaseUrl,
		http: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// RequestIntent opens a payment intent for the given amount. The amount must
// already be currency-rounded and positive; a non-positive amount is refused
// locally without a network call.
func (cl *Client) RequestIntent(
	c context.Context,
	amount decimal.Decimal,
	currency string,
	bookingIds []string,
) (Intent, error) {
	c, span := otel.Tracer.Start(c, "PaymentClient RequestIntent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentClient RequestIntent").
		Str(log.KeyAmount, amount.String()).
		Str(log.KeyCurrency, currency).
		Strs(log.KeyBookingIDs, bookingIds).
		Logger()

	if !amount.IsPositive() {
		err := fmt.Errorf(
			"failed requesting intent for amount=%s with error=%w",
			amount.String(),
			ErrNonPositiveAmount,
		)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, &IntentError{Cause: err}
	}

	logger = logger.With().Str(log.KeyProcess, "creating intent request").Logger()
	logger.Info().Msg("creating intent request")
	bodyJson, err := json.Marshal(createIntent{
		Amount:     amount,
		Currency:   currency,
		BookingIds: bookingIds,
	})
	if err != nil {
		err = fmt.Errorf("failed marshaling intent request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, &IntentError{Cause: err}
	}
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cl.baseUrl+"/payment-intents",
		bytes.NewBuffer(bodyJson),
	)
	if err != nil {
		err = fmt.Errorf("failed creating intent request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, &IntentError{Cause: err}
	}
	req.Header.Add(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	req.Header.Add(inHttp.KEY_HEADER_REQUEST_ID, log.RequestIDFromContext(c))
	logger.Info().Msg("created intent request")

	logger = logger.With().Str(log.KeyProcess, "sending intent request").Logger()
	logger.Info().Msg("sending intent request")
	resp, err := cl.http.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending intent request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, &IntentError{Cause: err}
	}
	defer resp.Body.Close()
	logger.Info().Msg("sent intent request")

	logger = logger.With().Str(log.KeyProcess, "decoding intent response").Logger()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody := map[string]interface{}{}
		json.NewDecoder(resp.Body).Decode(&respBody)
		err = fmt.Errorf(
			"payment service returned status code=%d with message=%v",
			resp.StatusCode,
			respBody["message"],
		)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, &IntentError{Cause: err}
	}
	intent := Intent{}
	err = json.NewDecoder(resp.Body).Decode(&intent)
	if err != nil {
		err = fmt.Errorf("failed decoding intent response with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Intent{}, &IntentError{Cause: err}
	}
	logger = logger.With().Str(log.KeyIntentID, intent.ID).Logger()
	logger.Info().Msg("decoded intent response")

	return intent, nil
}

// Confirm settles an open intent with the user's credentials. A settlement
// with any status other than settled is returned as a ConfirmationError.
func (cl *Client) Confirm(
	c context.Context,
	intentId string,
	credentials request.PaymentCredentials,
) (Settlement, error) {
	c, span := otel.Tracer.Start(c, "PaymentClient Confirm")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentClient Confirm").
		Str(log.KeyIntentID, intentId).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "creating confirm request").Logger()
	logger.Info().Msg("creating confirm request")
	bodyJson, err := json.Marshal(confirmIntent{IntentId: intentId, Credentials: credentials})
	if err != nil {
		err = fmt.Errorf("failed marshaling confirm request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Settlement{}, &ConfirmationError{IntentID: intentId, Cause: err}
	}
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cl.baseUrl+"/payment-confirmations",
		bytes.NewBuffer(bodyJson),
	)
	if err != nil {
		err = fmt.Errorf("failed creating confirm request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Settlement{}, &ConfirmationError{IntentID: intentId, Cause: err}
	}
	req.Header.Add(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	req.Header.Add(inHttp.KEY_HEADER_REQUEST_ID, log.RequestIDFromContext(c))
	logger.Info().Msg("created confirm request")

	logger = logger.With().Str(log.KeyProcess, "sending confirm request").Logger()
	logger.Info().Msg("sending confirm request")
	resp, err := cl.http.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending confirm request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Settlement{}, &ConfirmationError{IntentID: intentId, Cause: err}
	}
	defer resp.Body.Close()
	logger.Info().Msg("sent confirm request")

	logger = logger.With().Str(log.KeyProcess, "decoding confirm response").Logger()
	if resp.StatusCode != http.StatusOK {
		respBody := map[string]interface{}{}
		json.NewDecoder(resp.Body).Decode(&respBody)
		err = fmt.Errorf(
			"payment service returned status code=%d with message=%v",
			resp.StatusCode,
			respBody["message"],
		)
		logger.Error().Err(err).Msg(err.Error())
		return Settlement{}, &ConfirmationError{IntentID: intentId, Cause: err}
	}
	settlement := Settlement{}
	err = json.NewDecoder(resp.Body).Decode(&settlement)
	if err != nil {
		err = fmt.Errorf("failed decoding confirm response with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Settlement{}, &ConfirmationError{IntentID: intentId, Cause: err}
	}
	logger.Info().Str("settlementStatus", settlement.Status).Msg("decoded confirm response")

	if settlement.Status != SettlementSettled {
		err = fmt.Errorf("payment not settled with status=%s", settlement.Status)
		logger.Error().Err(err).Msg(err.Error())
		return settlement, &ConfirmationError{IntentID: intentId, Cause: err}
	}

	return settlement, nil
}
