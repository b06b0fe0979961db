package helpers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/kode4food/learnable/internal/backend"
	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/internal/session"
	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/pkg/api"
)

type (
	// FakeBackend is an httptest server standing in for the REST backend.
	// It records every request and answers from registered replies
	FakeBackend struct {
		*httptest.Server
		routes   map[string]ReplyFunc
		requests []*Request
		mu       sync.Mutex
	}

	// Request is a recorded backend request
	Request struct {
		Method string
		Path   string
		Query  string
		Auth   string
		Body   []byte
		Form   map[string]string
		Files  map[string]*api.File
	}

	// Reply is the canned answer to a request
	Reply struct {
		Status      int
		ContentType string
		Body        string
	}

	// ReplyFunc computes a Reply from a recorded Request
	ReplyFunc func(*Request) Reply
)

// TestToken is the access token held by sessions built with NewTestClient
const TestToken = "test-access"

const maxFormMemory = 32 << 20

// NewFakeBackend starts a FakeBackend that is closed when the test ends.
// Unregistered routes answer 404
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		routes: map[string]ReplyFunc{},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// JSON returns a JSON Reply with the provided status
func JSON(status int, body string) Reply {
	return Reply{
		Status:      status,
		ContentType: api.ContentJSON,
		Body:        body,
	}
}

// On registers a JSON reply for a method and path
func (b *FakeBackend) On(method, path string, status int, body string) {
	b.OnFunc(method, path, func(*Request) Reply {
		return JSON(status, body)
	})
}

// OnFunc registers a computed reply for a method and path
func (b *FakeBackend) OnFunc(method, path string, fn ReplyFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = fn
}

// Requests returns the recorded requests for a method and path
func (b *FakeBackend) Requests(method, path string) []*Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var res []*Request
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			res = append(res, r)
		}
	}
	return res
}

// Count returns the number of recorded requests for a method and path
func (b *FakeBackend) Count(method, path string) int {
	return len(b.Requests(method, path))
}

// Total returns the number of recorded requests
func (b *FakeBackend) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// JSON returns the value at a gjson path of a JSON request body
func (r *Request) JSON(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

func (b *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	req := record(r)

	b.mu.Lock()
	b.requests = append(b.requests, req)
	fn, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	reply := JSON(http.StatusNotFound, `{"detail":"Not found."}`)
	if ok {
		reply = fn(req)
	}
	if reply.ContentType != "" {
		w.Header().Set("Content-Type", reply.ContentType)
	}
	w.WriteHeader(reply.Status)
	if reply.Status != http.StatusNoContent {
		_, _ = io.WriteString(w, reply.Body)
	}
}

func record(r *http.Request) *Request {
	req := &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
		Form:   map[string]string{},
		Files:  map[string]*api.File{},
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		req.Body, _ = io.ReadAll(r.Body)
		return req
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return req
	}
	for k, v := range r.MultipartForm.Value {
		req.Form[k] = v[0]
	}
	for k, fhs := range r.MultipartForm.File {
		req.Files[k] = readFile(fhs[0])
	}
	return req
}

func readFile(fh *multipart.FileHeader) *api.File {
	f, err := fh.Open()
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()
	data, _ := io.ReadAll(f)
	return &api.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
}

// NewTestSession returns a session over an in-memory store holding the
// provided tokens
func NewTestSession(t *testing.T, access, refresh string) *session.Store {
	t.Helper()
	s := session.New(store.NewMemory())
	require.NoError(t, s.SetTokens(context.Background(), access, refresh))
	return s
}

// NewTestClient returns a backend client for b with a signed-in session
func NewTestClient(
	t *testing.T, b *FakeBackend, opts ...gateway.Option,
) *backend.Client {
	t.Helper()
	s := NewTestSession(t, TestToken, "test-refresh")
	return backend.New(gateway.New(b.URL, s, opts...), s)
}
