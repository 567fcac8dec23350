// Package fakeapi is an in-memory implementation of the posts/users REST API.
//
// It answers the same endpoints as the public reference service, with the same status
// codes and echo behavior: writes are acknowledged and echoed but never persisted. The
// harness uses it to test itself, and the fake-server command serves it for local runs.
package fakeapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/akademiaqa/api-contract-tests/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gopkg.in/launchdarkly/go-jsonstream.v1/jwriter"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxBodySize = 1 << 20

type Options struct {
	// Dataset defaults to DefaultDataset().
	Dataset *Dataset
	// Delay is added before every response.
	Delay  time.Duration
	Logger *zerolog.Logger
}

type Server struct {
	data   Dataset
	logger zerolog.Logger
	router chi.Router
}

func New(opts Options) *Server {
	s := &Server{logger: zerolog.Nop()}
	if opts.Dataset != nil {
		s.data = *opts.Dataset
	} else {
		s.data = DefaultDataset()
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	s.router = s.routes(opts.Delay)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Dataset returns the content being served.
func (s *Server) Dataset() Dataset {
	return s.data
}

func (s *Server) routes(delay time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	if delay > 0 {
		r.Use(delayResponses(delay))
	}

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", s.listPosts)
		r.Post("/", s.createPost)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getPost)
			r.Put("/", s.replacePost)
			r.Patch("/", s.patchPost)
			r.Delete("/", s.deletePost)
		})
	})
	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.listUsers)
		r.Post("/", s.createUser)
		r.Get("/{id}", s.getUser)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, []byte("{}"))
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.RequestURI()).
			Str("request_id", r.Header.Get("X-Request-Id")).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func delayResponses(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
				next.ServeHTTP(w, r)
			case <-r.Context().Done():
			}
		})
	}
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts := s.data.Posts
	if q, ok := r.URL.Query()["userId"]; ok {
		userID, _ := strconv.Atoi(q[0])
		posts = nil
		for _, p := range s.data.Posts {
			if p.UserID == userID {
				posts = append(posts, p)
			}
		}
	}
	jw := jwriter.NewWriter()
	arr := jw.Array()
	for _, p := range posts {
		p.WriteToJSONWriter(&jw)
	}
	arr.End()
	writeJSON(w, http.StatusOK, jw.Bytes())
}

func (s *Server) findPost(r *http.Request) (model.Post, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return model.Post{}, false
	}
	for _, p := range s.data.Posts {
		if p.ID.IntValue() == id {
			return p, true
		}
	}
	return model.Post{}, false
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	p, ok := s.findPost(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, []byte("{}"))
		return
	}
	data, _ := p.MarshalJSON()
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	body, ok := readObject(w, r)
	if !ok {
		return
	}
	created := withID(body, len(s.data.Posts)+1)
	writeJSON(w, http.StatusCreated, []byte(created.JSONString()))
}

func (s *Server) replacePost(w http.ResponseWriter, r *http.Request) {
	p, ok := s.findPost(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, []byte("{}"))
		return
	}
	body, ok := readObject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, []byte(withID(body, p.ID.IntValue()).JSONString()))
}

func (s *Server) patchPost(w http.ResponseWriter, r *http.Request) {
	p, ok := s.findPost(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, []byte("{}"))
		return
	}
	patch, ok := readObject(w, r)
	if !ok {
		return
	}
	current, _ := p.MarshalJSON()
	merged := merge(ldvalue.Parse(current), patch)
	writeJSON(w, http.StatusOK, []byte(withID(merged, p.ID.IntValue()).JSONString()))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.findPost(r); !ok {
		writeJSON(w, http.StatusNotFound, []byte("{}"))
		return
	}
	writeJSON(w, http.StatusOK, []byte("{}"))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users := s.data.Users
	if q, ok := r.URL.Query()["name"]; ok {
		users = nil
		for _, u := range s.data.Users {
			if u.Name == q[0] {
				users = append(users, u)
			}
		}
	}
	jw := jwriter.NewWriter()
	arr := jw.Array()
	for _, u := range users {
		u.WriteToJSONWriter(&jw)
	}
	arr.End()
	writeJSON(w, http.StatusOK, jw.Bytes())
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err == nil {
		for _, u := range s.data.Users {
			if u.ID.IntValue() == id {
				data, _ := u.MarshalJSON()
				writeJSON(w, http.StatusOK, data)
				return
			}
		}
	}
	writeJSON(w, http.StatusNotFound, []byte("{}"))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	body, ok := readObject(w, r)
	if !ok {
		return
	}
	created := withID(body, len(s.data.Users)+1)
	writeJSON(w, http.StatusCreated, []byte(created.JSONString()))
}

// readObject reads a JSON object request body, answering 400 if it is anything else.
func readObject(w http.ResponseWriter, r *http.Request) (ldvalue.Value, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return ldvalue.Null(), false
	}
	var v ldvalue.Value
	if err := v.UnmarshalJSON(data); err != nil || v.Type() != ldvalue.ObjectType {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return ldvalue.Null(), false
	}
	return v, true
}

func merge(base, patch ldvalue.Value) ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for _, k := range base.Keys() {
		b.Set(k, base.GetByKey(k))
	}
	for _, k := range patch.Keys() {
		b.Set(k, patch.GetByKey(k))
	}
	return b.Build()
}

func withID(obj ldvalue.Value, id int) ldvalue.Value {
	return merge(obj, ldvalue.ObjectBuild().Set("id", ldvalue.Int(id)).Build())
}

func writeError(w http.ResponseWriter, status int, message string) {
	body := ldvalue.ObjectBuild().Set("error", ldvalue.String(message)).Build()
	writeJSON(w, status, []byte(body.JSONString()))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
