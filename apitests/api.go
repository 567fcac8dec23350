package apitests

import (
	"encoding/json"
	"net/http"

	"github.com/akademiaqa/api-contract-tests/config"
	"github.com/akademiaqa/api-contract-tests/framework"
	"github.com/akademiaqa/api-contract-tests/random"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/require"
)

// T represents a scenario or a group of scenarios in the contract test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is outside
// of the Go test runner. Those features are provided by the lower-level framework package.
//
// Every T that issues requests gets its own framework.Session, created on first use, so nothing set on
// one scenario's requests can leak into another's. It also carries a random.Provider derived from the
// run's seed and the scenario's name.
//
// To make assertions on decoded entities, pass the *T to the assert and require packages as if it were
// a *testing.T. Assertions on the raw response are made with the httpexpect chain returned by Expect().
type T struct {
	context *framework.Context
	env     *suiteEnv
	session *framework.Session
	random  random.Provider
}

type suiteEnv struct {
	harness  *framework.Harness
	seed     uint64
	parallel int
}

// Scenario is a named scenario for RunAll.
type Scenario struct {
	Name   string
	Action func(*T)
}

func newTestScope(context *framework.Context, env *suiteEnv) *T {
	return &T{
		context: context,
		env:     env,
		random:  random.ForScenario(env.seed, context.ID().String()),
	}
}

func (t *T) close() {
	if t.session != nil {
		t.session.Close()
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a single scenario. The function receives a new T with its own session.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, t.scoped(action))
}

// Group runs a set of scenarios under a common name. Filters are applied to the scenarios
// inside it, not to the group itself.
func (t *T) Group(name string, action func(*T)) {
	t.context.Group(name, t.scoped(action))
}

// RunAll runs scenarios with the run's degree of parallelism.
func (t *T) RunAll(scenarios ...Scenario) {
	subtests := make([]framework.Subtest, 0, len(scenarios))
	for _, s := range scenarios {
		subtests = append(subtests, framework.Subtest{Name: s.Name, Action: t.scoped(s.Action)})
	}
	t.context.RunAll(t.env.parallel, subtests...)
}

func (t *T) scoped(action func(*T)) func(*framework.Context) {
	return func(c *framework.Context) {
		t1 := newTestScope(c, t.env)
		defer t1.close()
		action(t1)
	}
}

// SkipWithReason stops the scenario and records it as skipped.
func (t *T) SkipWithReason(reason string) {
	t.context.SkipWithReason(reason)
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) Config() config.Configuration {
	return t.env.harness.Config()
}

// Random returns this scenario's random data source.
func (t *T) Random() random.Provider {
	return t.random
}

// Request starts a request through this scenario's session.
func (t *T) Request(method, path string, pathArgs ...interface{}) *httpexpect.Request {
	if t.session == nil {
		t.session = t.env.harness.NewSession(t.context)
	}
	return t.session.Request(method, path, pathArgs...)
}

func (t *T) GET(path string, pathArgs ...interface{}) *httpexpect.Request {
	return t.Request(http.MethodGet, path, pathArgs...)
}

func (t *T) DELETE(path string, pathArgs ...interface{}) *httpexpect.Request {
	return t.Request(http.MethodDelete, path, pathArgs...)
}

func (t *T) POST(path string, body json.Marshaler, pathArgs ...interface{}) *httpexpect.Request {
	return t.sendJSON(http.MethodPost, path, body, pathArgs...)
}

func (t *T) PUT(path string, body json.Marshaler, pathArgs ...interface{}) *httpexpect.Request {
	return t.sendJSON(http.MethodPut, path, body, pathArgs...)
}

func (t *T) PATCH(path string, body json.Marshaler, pathArgs ...interface{}) *httpexpect.Request {
	return t.sendJSON(http.MethodPatch, path, body, pathArgs...)
}

// The body is attached as raw bytes so that the request contract's Content-Type stays in place.
func (t *T) sendJSON(method, path string, body json.Marshaler, pathArgs ...interface{}) *httpexpect.Request {
	data, err := body.MarshalJSON()
	require.NoError(t, err)
	t.Debug("request body: %s", data)
	return t.Request(method, path, pathArgs...).WithBytes(data)
}

// RequireDecoded decodes the response body into an entity. If the body does not fit the entity,
// the scenario fails with a deserialization failure and exits.
func RequireDecoded[V any](t *T, resp *httpexpect.Response, decode func([]byte) (V, error)) V {
	v, err := decode([]byte(resp.Body().Raw()))
	if err != nil {
		t.context.Fail(framework.NewFailure(framework.KindDeserialization, err))
		t.FailNow()
	}
	return v
}
