// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// StubResponse is one canned HTTP response for a [ScriptedServer].
type StubResponse struct {
	Status int
	Body   string
}

// ScriptedServer replays canned responses in request order and records every
// request it saw. The last response repeats if the script runs out.
type ScriptedServer struct {
	mu       sync.Mutex
	script   []StubResponse
	served   int
	requests []recordedRequest
	server   *httptest.Server
}

type recordedRequest struct {
	Path   string
	Query  map[string]string
	Header http.Header
	Form   map[string]string
}

// NewScriptedServer starts an httptest server replaying the given responses.
func NewScriptedServer(script ...StubResponse) *ScriptedServer {
	s := &ScriptedServer{script: script}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *ScriptedServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ParseForm()
	query := map[string]string{}
	for key := range r.URL.Query() {
		query[key] = r.URL.Query().Get(key)
	}
	form := map[string]string{}
	for key := range r.PostForm {
		form[key] = r.PostForm.Get(key)
	}
	s.requests = append(s.requests, recordedRequest{
		Path:   r.URL.Path,
		Query:  query,
		Header: r.Header.Clone(),
		Form:   form,
	})

	idx := s.served
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.served++

	resp := StubResponse{Status: http.StatusOK, Body: "{}"}
	if idx >= 0 {
		resp = s.script[idx]
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write([]byte(resp.Body))
}

// URL returns the server base URL.
func (s *ScriptedServer) URL() string { return s.server.URL }

// Close shuts the server down.
func (s *ScriptedServer) Close() { s.server.Close() }

// Hits returns how many requests the server handled.
func (s *ScriptedServer) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Authorization returns the Authorization header of request i.
func (s *ScriptedServer) Authorization(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i].Header.Get("Authorization")
}

// QueryParam returns a query parameter of request i.
func (s *ScriptedServer) QueryParam(i int, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i].Query[key]
}

// FormValue returns a form field of request i.
func (s *ScriptedServer) FormValue(i int, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i].Form[key]
}

// Path returns the URL path of request i.
func (s *ScriptedServer) Path(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i].Path
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

var _ io.Writer = (*FWriter)(nil)
