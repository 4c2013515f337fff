package api

import (
	"io"
	"net/url"
	"sync"

	http "github.com/bogdanfinn/fhttp"
)

// MockResponseBody is a ReadCloser that simulates reading response data
type MockResponseBody struct {
	data []byte
	pos  int
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data, pos: 0}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	return nil
}

// mockHTTPClient records requests and answers them with doFunc
type mockHTTPClient struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	doFunc   func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()

	return m.doFunc(req)
}

func (m *mockHTTPClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockHTTPClient) request(i int) (*http.Request, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i], m.bodies[i]
}

// newMockResponse builds a response with the given status and body
func newMockResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       NewMockResponseBody([]byte(body)),
		Header:     make(http.Header),
	}
}

// respondWith returns a doFunc that always answers status/body
func respondWith(status int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return newMockResponse(status, body), nil
	}
}

// memoryJar is a host-keyed cookie jar that ignores paths and expiry
type memoryJar struct {
	mu      sync.Mutex
	cookies map[string]map[string]*http.Cookie
}

func newMemoryJar() *memoryJar {
	return &memoryJar{cookies: make(map[string]map[string]*http.Cookie)}
}

func (j *memoryJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	host := u.Host
	if j.cookies[host] == nil {
		j.cookies[host] = make(map[string]*http.Cookie)
	}
	for _, c := range cookies {
		j.cookies[host][c.Name] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
}

func (j *memoryJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*http.Cookie
	for _, c := range j.cookies[u.Host] {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}
