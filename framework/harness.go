package framework

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akademiaqa/api-contract-tests/config"

	"github.com/gavv/httpexpect/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ConfigResolver supplies the run configuration. *config.Resolver implements it.
type ConfigResolver interface {
	Resolve() (config.Configuration, error)
}

type HarnessOptions struct {
	// Logger receives run-level logs. Defaults to a no-op logger.
	Logger  *zerolog.Logger
	Tracing *Tracing
}

// Harness holds everything that is fixed for a run: the configuration, the HTTP client
// and the two contracts. Nothing in it changes after GlobalSetup returns, so sessions for
// different tests can be created and used concurrently.
type Harness struct {
	config   config.Configuration
	baseURL  string
	client   *http.Client
	request  RequestContract
	response ResponseContract
	tracing  *Tracing
	logger   zerolog.Logger
}

// Session is the per-test view of the harness. Every request issued through it carries the
// run's request contract, and every response passes through the response contract.
type Session struct {
	context *Context
	expect  *httpexpect.Expect
	ctx     context.Context
	span    trace.Span
	started map[string]time.Time
}

// GlobalSetup resolves the configuration and builds the run's contracts. It must succeed
// before any test runs; an error here is a configuration failure.
func GlobalSetup(resolver ConfigResolver, opts HarnessOptions) (*Harness, error) {
	cfg, err := resolver.Resolve()
	if err != nil {
		return nil, err
	}
	tracing := opts.Tracing
	if tracing == nil {
		tracing = NoTracing()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	h := &Harness{
		config:   cfg,
		baseURL:  cfg.BaseURL(),
		client:   &http.Client{Timeout: cfg.Timeout()},
		request:  BuildRequestContract(cfg),
		response: BuildResponseContract(logger),
		tracing:  tracing,
		logger:   logger,
	}
	h.logger.Info().
		Str("base_url", h.baseURL).
		Str("environment", cfg.Environment).
		Dur("timeout", cfg.Timeout()).
		Msg("harness ready")
	return h, nil
}

func (h *Harness) Config() config.Configuration {
	return h.config
}

func (h *Harness) BaseURL() string {
	return h.baseURL
}

func (h *Harness) RequestContract() RequestContract {
	return h.request
}

func (h *Harness) Logger() zerolog.Logger {
	return h.logger
}

// NewSession prepares the transport for one test. Each call builds a new httpexpect.Expect
// from the stored contracts, so no state carries over from earlier tests.
func (h *Harness) NewSession(c *Context) *Session {
	ctx, span := h.tracing.tracer().Start(context.Background(), c.ID().String(),
		trace.WithAttributes(
			attribute.String("test.id", c.ID().String()),
			attribute.String("environment", h.config.Environment),
		))
	s := &Session{
		context: c,
		ctx:     ctx,
		span:    span,
		started: make(map[string]time.Time),
	}

	e := httpexpect.WithConfig(httpexpect.Config{
		TestName: c.ID().String(),
		BaseURL:  h.baseURL,
		Client:   h.client,
		Reporter: c,
		AssertionHandler: assertionHandler{
			context:   c,
			formatter: &httpexpect.DefaultFormatter{ColorMode: httpexpect.ColorModeNever},
		},
		Printers: h.request.printers(c.DebugLogger()),
	})
	s.expect = e.
		Builder(func(req *httpexpect.Request) {
			id := h.request.apply(s.ctx, req)
			s.started[id] = time.Now()
		}).
		Matcher(func(resp *httpexpect.Response) {
			var elapsed time.Duration
			if raw := resp.Raw(); raw != nil && raw.Request != nil {
				id := raw.Request.Header.Get(RequestIDHeader)
				if t, ok := s.started[id]; ok {
					elapsed = time.Since(t)
					delete(s.started, id)
				}
				s.span.AddEvent("response", trace.WithAttributes(
					attribute.String("http.method", raw.Request.Method),
					attribute.String("http.url", raw.Request.URL.String()),
					attribute.Int("http.status_code", raw.StatusCode),
				))
			}
			h.response.observe(c.ID(), resp, elapsed)
		})
	return s
}

// Request starts a request. path may contain {placeholders}, which are filled in from
// pathArgs in order.
func (s *Session) Request(method, path string, pathArgs ...interface{}) *httpexpect.Request {
	s.context.Debug("%s %s %v", method, path, pathArgs)
	return s.expect.Request(method, path, pathArgs...)
}

// Close ends the test's span, marking it as an error if the test failed.
func (s *Session) Close() {
	if failures := s.context.Failures(); len(failures) > 0 {
		s.span.SetAttributes(attribute.String("failure.kind", string(failures[0].Kind)))
		s.span.SetStatus(codes.Error, fmt.Sprint(failures[0].Message))
	}
	s.span.End()
}
