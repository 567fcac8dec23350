package framework

import (
	"context"
	"net/http"
	"time"

	"github.com/akademiaqa/api-contract-tests/config"

	"github.com/gavv/httpexpect/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/propagation"
)

const (
	jsonContentType = "application/json"
	RequestIDHeader = "X-Request-Id"
)

// LogDetail controls how much of each exchange is captured in a test's debug output.
type LogDetail string

const (
	LogAll     LogDetail = "all"
	LogCompact LogDetail = "compact"
	LogNone    LogDetail = "none"
)

// RequestContract holds the defaults applied to every outgoing request. It is built once
// per run and never modified.
type RequestContract struct {
	contentType string
	accept      string
	logDetail   LogDetail
	propagator  propagation.TextMapPropagator
}

// ResponseContract holds what happens to every response received. It is built once per
// run and never modified.
type ResponseContract struct {
	logger zerolog.Logger
}

func BuildRequestContract(cfg config.Configuration) RequestContract {
	detail := LogDetail(cfg.Logging.HTTP)
	switch detail {
	case LogAll, LogCompact, LogNone:
	default:
		detail = LogAll
	}
	return RequestContract{
		contentType: jsonContentType,
		accept:      jsonContentType,
		logDetail:   detail,
		propagator:  propagation.TraceContext{},
	}
}

func BuildResponseContract(logger zerolog.Logger) ResponseContract {
	return ResponseContract{logger: logger}
}

func (rc RequestContract) ContentType() string  { return rc.contentType }
func (rc RequestContract) Accept() string       { return rc.accept }
func (rc RequestContract) LogDetail() LogDetail { return rc.logDetail }

// apply sets the contract's headers on req and returns the request ID it assigned.
func (rc RequestContract) apply(ctx context.Context, req *httpexpect.Request) string {
	requestID := uuid.NewString()
	req.WithHeader("Content-Type", rc.contentType)
	req.WithHeader("Accept", rc.accept)
	req.WithHeader(RequestIDHeader, requestID)

	carrier := propagation.HeaderCarrier(http.Header{})
	rc.propagator.Inject(ctx, carrier)
	for _, k := range carrier.Keys() {
		req.WithHeader(k, carrier.Get(k))
	}
	req.WithContext(ctx)
	return requestID
}

// printers returns the httpexpect printers that capture traffic into a test's debug log.
func (rc RequestContract) printers(debugLogger Logger) []httpexpect.Printer {
	logger := httpexpectLogger{target: debugLogger}
	switch rc.logDetail {
	case LogNone:
		return nil
	case LogCompact:
		return []httpexpect.Printer{httpexpect.NewCompactPrinter(logger)}
	default:
		return []httpexpect.Printer{httpexpect.NewDebugPrinter(logger, true)}
	}
}

// observe logs a received response to the run logger.
func (rc ResponseContract) observe(test TestID, resp *httpexpect.Response, elapsed time.Duration) {
	raw := resp.Raw()
	if raw == nil {
		return
	}
	event := rc.logger.Info()
	if raw.StatusCode >= 400 {
		event = rc.logger.Warn()
	}
	if raw.Request != nil {
		event = event.
			Str("method", raw.Request.Method).
			Str("url", raw.Request.URL.String()).
			Str("request_id", raw.Request.Header.Get(RequestIDHeader))
	}
	event.
		Str("test", test.String()).
		Int("status", raw.StatusCode).
		Dur("elapsed", elapsed).
		Msg("response")
}
