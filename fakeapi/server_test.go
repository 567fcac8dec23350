package fakeapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akademiaqa/api-contract-tests/model"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, server *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	return resp.StatusCode, data
}

func TestDefaultDatasetShape(t *testing.T) {
	ds := DefaultDataset()
	require.Len(t, ds.Posts, DefaultPostCount)
	require.Len(t, ds.Users, DefaultUserCount)

	assert.Equal(t, "Leanne Graham", ds.Users[0].Name)
	for i, p := range ds.Posts {
		assert.Equal(t, i+1, p.ID.IntValue())
		assert.Equal(t, i/10+1, p.UserID)
		assert.NoError(t, model.ValidatePost(p))
	}
	for i, u := range ds.Users {
		assert.Equal(t, i+1, u.ID.IntValue())
		assert.NoError(t, model.ValidateUser(u))
	}
}

func TestDatasetIsDeterministic(t *testing.T) {
	assert.Equal(t, NewDataset(5, 3, 9), NewDataset(5, 3, 9))
}

func TestListAndGet(t *testing.T) {
	httphelpers.WithServer(New(Options{}), func(server *httptest.Server) {
		status, body := do(t, server, "GET", "/posts", "")
		assert.Equal(t, 200, status)
		posts, err := model.DecodePosts(body)
		require.NoError(t, err)
		assert.Len(t, posts, 100)

		status, body = do(t, server, "GET", "/posts/42", "")
		assert.Equal(t, 200, status)
		post, err := model.DecodePost(body)
		require.NoError(t, err)
		assert.Equal(t, 42, post.ID.IntValue())
		assert.Equal(t, 5, post.UserID)

		status, body = do(t, server, "GET", "/users", "")
		assert.Equal(t, 200, status)
		users, err := model.DecodeUsers(body)
		require.NoError(t, err)
		assert.Len(t, users, 10)

		status, body = do(t, server, "GET", "/users/1", "")
		assert.Equal(t, 200, status)
		user, err := model.DecodeUser(body)
		require.NoError(t, err)
		assert.Equal(t, "Gwenborough", user.Address.City)
	})
}

func TestNotFound(t *testing.T) {
	httphelpers.WithServer(New(Options{}), func(server *httptest.Server) {
		for _, path := range []string{"/users/999", "/users/abc", "/posts/101", "/posts/0", "/comments"} {
			status, body := do(t, server, "GET", path, "")
			assert.Equal(t, 404, status, path)
			assert.JSONEq(t, "{}", string(body), path)
		}
		status, _ := do(t, server, "DELETE", "/posts/500", "")
		assert.Equal(t, 404, status)
	})
}

func TestFilters(t *testing.T) {
	httphelpers.WithServer(New(Options{}), func(server *httptest.Server) {
		_, body := do(t, server, "GET", "/posts?userId=1", "")
		posts, err := model.DecodePosts(body)
		require.NoError(t, err)
		require.Len(t, posts, 10)
		for _, p := range posts {
			assert.Equal(t, 1, p.UserID)
		}

		_, body = do(t, server, "GET", "/posts?userId=nope", "")
		assert.JSONEq(t, "[]", string(body))

		_, body = do(t, server, "GET", "/users?name=Leanne%20Graham", "")
		users, err := model.DecodeUsers(body)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Bret", users[0].Username)

		_, body = do(t, server, "GET", "/users?name=Nobody", "")
		assert.JSONEq(t, "[]", string(body))
	})
}

func TestWritesEcho(t *testing.T) {
	httphelpers.WithServer(New(Options{}), func(server *httptest.Server) {
		status, body := do(t, server, "POST", "/posts", `{"userId": 1, "title": "T", "body": "B"}`)
		assert.Equal(t, 201, status)
		assert.JSONEq(t, `{"id": 101, "userId": 1, "title": "T", "body": "B"}`, string(body))

		status, body = do(t, server, "PUT", "/posts/1", `{"userId": 2, "title": "new", "body": "text"}`)
		assert.Equal(t, 200, status)
		assert.JSONEq(t, `{"id": 1, "userId": 2, "title": "new", "body": "text"}`, string(body))

		status, body = do(t, server, "PATCH", "/posts/1", `{"title": "X"}`)
		assert.Equal(t, 200, status)
		patched, err := model.DecodePost(body)
		require.NoError(t, err)
		assert.Equal(t, 1, patched.ID.IntValue())
		assert.Equal(t, "X", patched.Title)
		assert.Equal(t, 1, patched.UserID)
		assert.NotEmpty(t, patched.Body)

		status, _ = do(t, server, "DELETE", "/posts/1", "")
		assert.Equal(t, 200, status)

		status, body = do(t, server, "POST", "/users", `{"name": "N", "address": {"city": "C"}}`)
		assert.Equal(t, 201, status)
		assert.JSONEq(t, `{"id": 11, "name": "N", "address": {"city": "C"}}`, string(body))

		_, body = do(t, server, "GET", "/posts/1", "")
		original, err := model.DecodePost(body)
		require.NoError(t, err)
		assert.NotEqual(t, "X", original.Title)
	})
}

func TestRejectsNonObjectBodies(t *testing.T) {
	httphelpers.WithServer(New(Options{}), func(server *httptest.Server) {
		for _, body := range []string{`not json`, `[1, 2]`, `"text"`} {
			status, _ := do(t, server, "POST", "/posts", body)
			assert.Equal(t, 400, status, body)
		}
	})
}

func TestDelay(t *testing.T) {
	httphelpers.WithServer(New(Options{Delay: 300 * time.Millisecond}), func(server *httptest.Server) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, "GET", server.URL+"/posts/1", nil)
		require.NoError(t, err)
		_, err = http.DefaultClient.Do(req)
		assert.Error(t, err)

		start := time.Now()
		status, _ := do(t, server, "GET", "/posts/1", "")
		assert.Equal(t, 200, status)
		assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
	})
}
