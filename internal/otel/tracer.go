package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/novabook/bookify/internal/constants"
)

var Tracer = otel.Tracer(constants.APP_MAIN_BOOKIFY)
