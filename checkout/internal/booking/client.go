package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/novabook/bookify/checkout/internal/cart"
	"github.com/novabook/bookify/checkout/internal/otel"
	"github.com/novabook/bookify/checkout/pkg/request"
	"github.com/novabook/bookify/internal/config"
	inHttp "github.com/novabook/bookify/internal/http"
	"github.com/novabook/bookify/internal/log"
)

// Created is the booking service's acknowledgement for one materialized line.
// The booking itself is owned by the collaborator from here on; this service
// only keeps the identifier.
type Created struct {
	BookingID   string          `json:"bookingId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
}

type contactInfo struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type createBooking struct {
	ServiceId       string          `json:"serviceId"`
	ProviderId      string          `json:"providerId"`
	BookingDate     string          `json:"bookingDate,omitempty"`
	StartTime       string          `json:"startTime,omitempty"`
	Duration        int32           `json:"duration"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ContactInfo     contactInfo     `json:"contactInfo"`
	SpecialRequests string          `json:"specialRequests,omitempty"`
	Location        string          `json:"location,omitempty"`
}

// Client materializes cart lines into bookings on the booking service.
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

// Create submits one booking-creation request for the given cart line.
// Quantity is the booking duration in units; totalAmount is the line price
// plus the flat booking fee, already currency-rounded for the wire.
func (cl *Client) Create(
	c context.Context,
	item cart.LineItem,
	contact request.ContactInfo,
	totalAmount decimal.Decimal,
) (Created, error) {
	c, span := otel.Tracer.Start(c, "BookingClient Create")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "BookingClient Create").
		Str(log.KeyServiceID, item.ServiceID.String()).
		Str(log.KeyProviderID, item.ProviderID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "creating booking request").Logger()
	logger.Info().Msg("creating booking request")
	body := createBooking{
		ServiceId:       item.ServiceID.String(),
		ProviderId:      item.ProviderID,
		BookingDate:     item.BookingDate,
		StartTime:       item.StartTime,
		Duration:        item.Quantity,
		TotalAmount:     totalAmount,
		ContactInfo:     contactInfo{Phone: contact.Phone, Email: contact.Email},
		SpecialRequests: item.SpecialRequests,
		Location:        contact.Location,
	}
	bodyJson, err := json.Marshal(body)
	if err != nil {
		err = fmt.Errorf("failed marshaling booking request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Created{}, &CreationError{ServiceID: item.ServiceID, Cause: err}
	}
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		cl.baseUrl+"/bookings",
		bytes.NewBuffer(bodyJson),
	)
	if err != nil {
		err = fmt.Errorf("failed creating booking request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Created{}, &CreationError{ServiceID: item.ServiceID, Cause: err}
	}
	req.Header.Add(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_APPLICATION_JSON)
	req.Header.Add(inHttp.KEY_HEADER_REQUEST_ID, log.RequestIDFromContext(c))
	logger.Info().Msg("created booking request")

	logger = logger.With().Str(log.KeyProcess, "sending booking request").Logger()
	logger.Info().Msg("sending booking request")
	resp, err := cl.http.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending booking request with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Created{}, &CreationError{ServiceID: item.ServiceID, Cause: err}
	}
	defer resp.Body.Close()
	logger.Info().Msg("sent booking request")

	logger = logger.With().Str(log.KeyProcess, "decoding booking response").Logger()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody := map[string]interface{}{}
		json.NewDecoder(resp.Body).Decode(&respBody)
		err = fmt.Errorf(
			"booking service returned status code=%d with message=%v",
			resp.StatusCode,
			respBody["message"],
		)
		logger.Error().Err(err).Msg(err.Error())
		return Created{}, &CreationError{ServiceID: item.ServiceID, Cause: err}
	}
	created := Created{}
	err = json.NewDecoder(resp.Body).Decode(&created)
	if err != nil {
		err = fmt.Errorf("failed decoding booking response with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return Created{}, &CreationError{ServiceID: item.ServiceID, Cause: err}
	}
	logger = logger.With().Str(log.KeyBookingID, created.BookingID).Logger()
	logger.Info().Msg("decoded booking response")

	return created, nil
}
