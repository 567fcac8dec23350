package apitests

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/akademiaqa/api-contract-tests/config"
	"github.com/akademiaqa/api-contract-tests/fakeapi"
	"github.com/akademiaqa/api-contract-tests/framework"
	"github.com/akademiaqa/api-contract-tests/model"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const scenarioCount = 15

var jsonHeaders = http.Header{"Content-Type": {"application/json"}}

func setupHarness(t *testing.T, baseURL string, overrides config.OverrideSource) *framework.Harness {
	src := config.OverrideSource{config.KeyBaseURI: baseURL, config.KeyTimeout: "2000"}
	for k, v := range overrides {
		src[k] = v
	}
	h, err := framework.GlobalSetup(config.NewResolver(src), framework.HarnessOptions{})
	require.NoError(t, err)
	return h
}

func onlyMatching(t *testing.T, pattern string) framework.Filter {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set(pattern))
	return filters.AsFilter
}

// fakeAPIWith serves the fake API, except that the given paths are answered by other handlers.
func fakeAPIWith(overrides map[string]http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", fakeapi.New(fakeapi.Options{}))
	for path, h := range overrides {
		mux.Handle(path, h)
	}
	return mux
}

func failureKinds(results framework.Results) map[string]framework.FailureKind {
	kinds := make(map[string]framework.FailureKind)
	for _, r := range results.Failures {
		kinds[r.TestID.String()] = r.Errors[0].Kind
	}
	return kinds
}

func TestSuitePassesAgainstFakeAPI(t *testing.T) {
	httphelpers.WithServer(fakeapi.New(fakeapi.Options{}), func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		results := RunTestSuite(h, nil, nil, SuiteOptions{Seed: 1})

		assert.Empty(t, results.FailureList())
		passed, failed, skipped := results.Counts()
		assert.Equal(t, scenarioCount, passed)
		assert.Equal(t, 0, failed)
		assert.Equal(t, 0, skipped)
		assert.True(t, results.OK())
	})
}

func TestSuitePassesInParallel(t *testing.T) {
	httphelpers.WithServer(fakeapi.New(fakeapi.Options{}), func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		results := RunTestSuite(h, nil, nil, SuiteOptions{Seed: 1, Parallel: 4})

		assert.Empty(t, results.FailureList())
		passed, _, _ := results.Counts()
		assert.Equal(t, scenarioCount, passed)
	})
}

func TestCollectionSizesComeFromConfiguration(t *testing.T) {
	data := fakeapi.NewDataset(30, 3, 7)
	httphelpers.WithServer(fakeapi.New(fakeapi.Options{Dataset: &data}), func(server *httptest.Server) {
		matching := setupHarness(t, server.URL, config.OverrideSource{
			config.KeyPostCount: "30",
			config.KeyUserCount: "3",
		})
		results := RunTestSuite(matching, nil, nil, SuiteOptions{Seed: 1})
		assert.Empty(t, results.FailureList())

		defaults := setupHarness(t, server.URL, nil)
		results = RunTestSuite(defaults, nil, nil, SuiteOptions{Seed: 1})
		kinds := failureKinds(results)
		assert.Equal(t, framework.KindContract, kinds["posts/get all posts"])
		assert.Equal(t, framework.KindContract, kinds["users/get all users"])
	})
}

func TestFilterSelectsScenarios(t *testing.T) {
	httphelpers.WithServer(fakeapi.New(fakeapi.Options{}), func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		results := RunTestSuite(h, onlyMatching(t, "^users/get user by id$"), nil, SuiteOptions{})

		passed, failed, skipped := results.Counts()
		assert.Equal(t, 1, passed)
		assert.Equal(t, 0, failed)
		assert.Equal(t, scenarioCount-1, skipped)
		r, ok := results.Find("users/get user by id")
		require.True(t, ok)
		assert.False(t, r.Skipped)
	})
}

func TestFailureKindsAreDistinguished(t *testing.T) {
	wrongTypes := httphelpers.HandlerWithResponse(200, jsonHeaders,
		[]byte(`{"id": 1, "userId": "one", "title": "t", "body": "b"}`))
	truncated := httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`[{"id": 1,`))
	found := httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`{}`))

	handler := fakeAPIWith(map[string]http.Handler{
		"/posts/1":   wrongTypes,
		"/posts":     truncated,
		"/users/999": found,
	})
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		results := RunTestSuite(h, nil, nil, SuiteOptions{Seed: 1})
		kinds := failureKinds(results)

		assert.Equal(t, framework.KindDeserialization, kinds["posts/get post by id"])
		assert.Equal(t, framework.KindMalformedBody, kinds["posts/get all posts"])
		assert.Equal(t, framework.KindContract, kinds["users/get non-existing user"])

		_, failed := kinds["users/get user by id"]
		assert.False(t, failed)
	})
}

func TestSlowServerGivesTimeoutFailures(t *testing.T) {
	httphelpers.WithServer(fakeapi.New(fakeapi.Options{Delay: 500 * time.Millisecond}), func(server *httptest.Server) {
		h := setupHarness(t, server.URL, config.OverrideSource{config.KeyTimeout: "100"})
		results := RunTestSuite(h, onlyMatching(t, "get post by id$"), nil, SuiteOptions{})

		kinds := failureKinds(results)
		assert.Equal(t, map[string]framework.FailureKind{"posts/get post by id": framework.KindTimeout}, kinds)
	})
}

func TestUnreachableServerGivesTransportFailures(t *testing.T) {
	server := httptest.NewServer(fakeapi.New(fakeapi.Options{}))
	url := server.URL
	server.Close()

	h := setupHarness(t, url, nil)
	results := RunTestSuite(h, onlyMatching(t, "^users/"), nil, SuiteOptions{})

	_, failed, _ := results.Counts()
	assert.Equal(t, 7, failed)
	assert.Equal(t, map[framework.FailureKind]int{framework.KindTransport: 7}, results.FailuresByKind())
}

func TestOutcomesDoNotDependOnOrder(t *testing.T) {
	rejectPatch := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fakeapi.New(fakeapi.Options{}).ServeHTTP(w, r)
	})
	handler := fakeAPIWith(map[string]http.Handler{"/posts/1": rejectPatch})

	scenarios := []Scenario{
		{"create post", createPost},
		{"update post", updatePost},
		{"partially update post", partiallyUpdatePost},
		{"delete post", deletePost},
		{"get post by id", getPostByID},
	}
	reversed := make([]Scenario, len(scenarios))
	for i, s := range scenarios {
		reversed[len(scenarios)-1-i] = s
	}

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		run := func(order []Scenario) map[string]string {
			env := &suiteEnv{harness: h, seed: 3}
			results := framework.Run(nil, nil, func(c *framework.Context) {
				newTestScope(c, env).Group("posts", func(t *T) { t.RunAll(order...) })
			})
			outcomes := make(map[string]string)
			for _, r := range results.Tests {
				outcome := "passed"
				if len(r.Errors) > 0 {
					outcome = string(r.Errors[0].Kind)
				}
				outcomes[r.TestID.String()] = outcome
			}
			return outcomes
		}

		forward, backward := run(scenarios), run(reversed)
		assert.Equal(t, forward, backward)
		assert.Equal(t, "contract", forward["posts/partially update post"])
		assert.Equal(t, "passed", forward["posts/update post"])
	})
}

func TestScenarioDataIsReproducibleWithSeed(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(fakeapi.New(fakeapi.Options{}))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		bodies := func() []string {
			RunTestSuite(h, onlyMatching(t, "^posts/create post$"), nil, SuiteOptions{Seed: 42})
			req := <-requestsCh
			return []string{string(req.Body)}
		}
		assert.Equal(t, bodies(), bodies())
	})
}

func runScenario(t *testing.T, h *framework.Harness, action func(*T)) framework.TestResult {
	results := framework.Run(nil, nil, func(c *framework.Context) {
		newTestScope(c, &suiteEnv{harness: h}).Run("scenario", action)
	})
	r, ok := results.Find("scenario")
	require.True(t, ok)
	return r
}

func TestCreateEchoesSubmittedPost(t *testing.T) {
	httphelpers.WithServer(fakeapi.New(fakeapi.Options{}), func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		var created model.Post
		r := runScenario(t, h, func(st *T) {
			input := model.Post{UserID: 1, Title: "T", Body: "B"}
			resp := st.POST("/posts", input).Expect().Status(http.StatusCreated)
			created = RequireDecoded(st, resp, model.DecodePost)
		})
		require.Empty(t, r.Errors)
		assert.True(t, created.ID.IsDefined())
		assert.Equal(t, 1, created.UserID)
		assert.Equal(t, "T", created.Title)
		assert.Equal(t, "B", created.Body)
	})
}

func TestPatchChangesOnlyTitle(t *testing.T) {
	httphelpers.WithServer(fakeapi.New(fakeapi.Options{}), func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		var patched model.Post
		r := runScenario(t, h, func(st *T) {
			body := ldvalue.ObjectBuild().Set("title", ldvalue.String("X")).Build()
			resp := st.PATCH("/posts/{id}", body, 1).Expect().Status(http.StatusOK)
			patched = RequireDecoded(st, resp, model.DecodePost)
		})
		require.Empty(t, r.Errors)
		assert.Equal(t, 1, patched.ID.IntValue())
		assert.Equal(t, "X", patched.Title)
		assert.NotEmpty(t, patched.Body)
	})
}

func TestRequireDecodedFailsWithDeserializationKind(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(200, jsonHeaders, []byte(`[1, 2, 3]`))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		reachedEnd := false
		r := runScenario(t, h, func(st *T) {
			resp := st.GET("/users").Expect().Status(http.StatusOK)
			RequireDecoded(st, resp, model.DecodeUsers)
			reachedEnd = true
		})
		require.Len(t, r.Errors, 1)
		assert.Equal(t, framework.KindDeserialization, r.Errors[0].Kind)
		assert.False(t, reachedEnd)
	})
}

func TestScenarioNamesAreUnique(t *testing.T) {
	httphelpers.WithServer(fakeapi.New(fakeapi.Options{}), func(server *httptest.Server) {
		h := setupHarness(t, server.URL, nil)
		results := RunTestSuite(h, nil, nil, SuiteOptions{Seed: 1})
		var ids []string
		for _, r := range results.Tests {
			ids = append(ids, r.TestID.String())
		}
		sort.Strings(ids)
		for i := 1; i < len(ids); i++ {
			assert.NotEqual(t, ids[i-1], ids[i])
		}
	})
}
