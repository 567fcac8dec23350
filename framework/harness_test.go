package framework

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akademiaqa/api-contract-tests/config"

	"github.com/google/uuid"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jsonHeaders = http.Header{"Content-Type": {"application/json"}}

func setupHarness(t *testing.T, baseURL string, overrides config.OverrideSource, opts HarnessOptions) *Harness {
	src := config.OverrideSource{config.KeyBaseURI: baseURL, config.KeyTimeout: "500"}
	for k, v := range overrides {
		src[k] = v
	}
	h, err := GlobalSetup(config.NewResolver(src), opts)
	require.NoError(t, err)
	return h
}

func runOne(h *Harness, logger TestLogger, action func(*Session)) TestResult {
	results := Run(nil, logger, func(c *Context) {
		c.Run("test", func(c *Context) {
			s := h.NewSession(c)
			defer s.Close()
			action(s)
		})
	})
	r, _ := results.Find("test")
	return r
}

func requireKind(t *testing.T, r TestResult, kind FailureKind) {
	t.Helper()
	require.NotEmpty(t, r.Errors, "expected a %s failure but the test passed", kind)
	assert.Equal(t, kind, r.Errors[0].Kind, "failure was: %s", r.Errors[0].Message)
}

func TestGlobalSetupFailsOnBadConfiguration(t *testing.T) {
	_, err := GlobalSetup(config.NewResolver(config.OverrideSource{config.KeyTimeout: "never"}), HarnessOptions{})
	require.Error(t, err)
	var cerr *config.Error
	assert.True(t, errors.As(err, &cerr))
}

func TestContractsAreBuiltFromConfiguration(t *testing.T) {
	h := setupHarness(t, "http://localhost:1", config.OverrideSource{
		config.KeyBasePath: "/api/",
		config.KeyLogHTTP:  "compact",
	}, HarnessOptions{})

	assert.Equal(t, "http://localhost:1/api", h.BaseURL())
	assert.Equal(t, 500*time.Millisecond, h.Config().Timeout())
	assert.Equal(t, "application/json", h.RequestContract().ContentType())
	assert.Equal(t, "application/json", h.RequestContract().Accept())
	assert.Equal(t, LogCompact, h.RequestContract().LogDetail())
}

func TestRequestCarriesContractHeaders(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`{}`)))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var traceOut bytes.Buffer
		tracing, err := NewTracing(&traceOut)
		require.NoError(t, err)
		h := setupHarness(t, server.URL, nil, HarnessOptions{Tracing: tracing})

		r := runOne(h, nil, func(s *Session) {
			s.Request("GET", "/posts/{id}", 7).Expect().Status(200)
		})
		assert.Empty(t, r.Errors)

		req := <-requestsCh
		assert.Equal(t, "/posts/7", req.Request.URL.Path)
		assert.Equal(t, "application/json", req.Request.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", req.Request.Header.Get("Accept"))
		_, err = uuid.Parse(req.Request.Header.Get(RequestIDHeader))
		assert.NoError(t, err)
		assert.NotEmpty(t, req.Request.Header.Get("traceparent"))
		assert.Contains(t, traceOut.String(), `"Name":"test"`)
	})
}

func TestEachRequestGetsItsOwnID(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`{}`)))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil, HarnessOptions{})
		runOne(h, nil, func(s *Session) {
			s.Request("GET", "/a").Expect()
			s.Request("GET", "/b").Expect()
		})
		first, second := <-requestsCh, <-requestsCh
		assert.NotEqual(t, first.Request.Header.Get(RequestIDHeader), second.Request.Header.Get(RequestIDHeader))
	})
}

func TestSessionsDoNotShareState(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`{}`)))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil, HarnessOptions{})
		runOne(h, nil, func(s *Session) {
			s.Request("GET", "/a").WithHeader("X-Extra", "yes").Expect()
		})
		runOne(h, nil, func(s *Session) {
			s.Request("GET", "/b").Expect()
		})
		first, second := <-requestsCh, <-requestsCh
		assert.Equal(t, "yes", first.Request.Header.Get("X-Extra"))
		assert.Equal(t, "", second.Request.Header.Get("X-Extra"))
		assert.Equal(t, "application/json", second.Request.Header.Get("Accept"))
	})
}

func TestUnexpectedStatusIsContractFailure(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil, HarnessOptions{})
		reachedEnd := false
		r := runOne(h, nil, func(s *Session) {
			s.Request("GET", "/posts").Expect().Status(200)
			reachedEnd = true
		})
		requireKind(t, r, KindContract)
		assert.False(t, reachedEnd)
	})
}

func TestMalformedBody(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`{"id": 1,`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil, HarnessOptions{})
		r := runOne(h, nil, func(s *Session) {
			s.Request("GET", "/posts/1").Expect().Status(200).JSON()
		})
		requireKind(t, r, KindMalformedBody)
	})
}

func TestConnectionFailureIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	url := server.URL
	server.Close()

	h := setupHarness(t, url, nil, HarnessOptions{})
	r := runOne(h, nil, func(s *Session) {
		s.Request("GET", "/posts").Expect()
	})
	requireKind(t, r, KindTransport)
}

func TestSlowResponseIsTimeoutFailure(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(200)
	})
	httphelpers.WithServer(slow, func(server *httptest.Server) {
		h := setupHarness(t, server.URL, config.OverrideSource{config.KeyTimeout: "100"}, HarnessOptions{})
		start := time.Now()
		r := runOne(h, nil, func(s *Session) {
			s.Request("GET", "/posts").Expect()
		})
		requireKind(t, r, KindTimeout)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestExchangeIsCapturedInDebugOutput(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`{"marker": "response-body"}`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		for _, tc := range []struct {
			detail   string
			captured bool
		}{
			{"all", true},
			{"none", false},
		} {
			t.Run(tc.detail, func(t *testing.T) {
				h := setupHarness(t, server.URL, config.OverrideSource{config.KeyLogHTTP: tc.detail}, HarnessOptions{})
				logger := newRecordingTestLogger()
				runOne(h, logger, func(s *Session) {
					s.Request("POST", "/posts").WithBytes([]byte(`{"marker": "request-body"}`)).Expect()
				})

				var dump bytes.Buffer
				logger.output["test"].Dump(&dump, "")
				assert.Equal(t, tc.captured, strings.Contains(dump.String(), "request-body"))
				assert.Equal(t, tc.captured, strings.Contains(dump.String(), "response-body"))
			})
		}
	})
}

func TestResponsesAreLogged(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		var out bytes.Buffer
		logger := zerolog.New(&out).Level(zerolog.DebugLevel)
		h := setupHarness(t, server.URL, nil, HarnessOptions{Logger: &logger})
		runOne(h, nil, func(s *Session) {
			s.Request("GET", "/users/999").Expect().Status(404)
		})
		assert.Contains(t, out.String(), `"status":404`)
		assert.Contains(t, out.String(), `"test":"test"`)
		assert.Contains(t, out.String(), `"request_id":"`)
	})
}

func TestSuccessfulResponsesAreLoggedAtInfo(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`[]`)), func(server *httptest.Server) {
		var out bytes.Buffer
		logger := zerolog.New(&out).Level(zerolog.InfoLevel)
		h := setupHarness(t, server.URL, nil, HarnessOptions{Logger: &logger})
		runOne(h, nil, func(s *Session) {
			s.Request("GET", "/posts").Expect().Status(200)
		})
		assert.Contains(t, out.String(), `"level":"info"`)
		assert.Contains(t, out.String(), `"status":200`)
		assert.Contains(t, out.String(), `"method":"GET"`)
	})
}
