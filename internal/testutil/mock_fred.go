// Package testutil provides testing utilities for the FRED client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines the behavior of a mock FRED endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockFRED is a configurable mock FRED API server. It counts every
// request it serves so tests can assert how often the network was
// actually touched.
type MockFRED struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount int
	lastQuery    url.Values
}

// NewMockFRED creates a new mock FRED server.
func NewMockFRED() *MockFRED {
	mock := &MockFRED{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastQuery = r.URL.Query()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL, suitable as a client base URL.
func (m *MockFRED) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockFRED) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockFRED) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastQuery = nil
}

// SetHandler sets a custom handler for a path. The path is the URL path
// part of a request fragment, e.g. "/series/observations".
func (m *MockFRED) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockFRED) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests served so far.
func (m *MockFRED) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockFRED) LastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// defaultHandler answers like FRED does for unknown endpoints.
func (m *MockFRED) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, `<error code="404" message="Not Found"/>`)
}

// NewObservationsResponse creates a 200 response carrying an
// observations document.
func NewObservationsResponse(observations string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body: `<?xml version="1.0" encoding="utf-8"?>
<observations realtime_start="2021-04-06" realtime_end="2021-04-06" units="lin" output_type="1">
` + observations + `
</observations>`,
		Headers: map[string]string{
			"Content-Type": "text/xml; charset=utf-8",
		},
	}
}

// NewErrorResponse creates a FRED-style error response.
func NewErrorResponse(status int, message string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body: fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<error code="%d" message="%s"/>`, status, message),
		Headers: map[string]string{
			"Content-Type": "text/xml; charset=utf-8",
		},
	}
}
