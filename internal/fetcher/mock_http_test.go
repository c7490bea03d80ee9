package fetcher

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

// mockHTTPClient is a mock HTTP client for testing
type mockHTTPClient struct {
	mu        sync.Mutex
	responses map[string][]mockResponse
	calls     int
}

type mockResponse struct {
	statusCode int
	body       string
	err        error
}

func newMockHTTPClient() *mockHTTPClient {
	return &mockHTTPClient{
		responses: make(map[string][]mockResponse),
	}
}

func (m *mockHTTPClient) GetClient() *http.Client {
	return &http.Client{Transport: m}
}

// addResponse queues a response; the last queued response repeats once the queue is drained
func (m *mockHTTPClient) addResponse(url string, statusCode int, body string) {
	m.responses[url] = append(m.responses[url], mockResponse{statusCode: statusCode, body: body})
}

func (m *mockHTTPClient) addError(url string, err error) {
	m.responses[url] = append(m.responses[url], mockResponse{err: err})
}

func (m *mockHTTPClient) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	queue, ok := m.responses[req.URL.String()]
	if !ok || len(queue) == 0 {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
			Body:       io.NopCloser(strings.NewReader("not found")),
			Request:    req,
		}, nil
	}

	resp := queue[0]
	if len(queue) > 1 {
		m.responses[req.URL.String()] = queue[1:]
	}
	if resp.err != nil {
		return nil, resp.err
	}

	return &http.Response{
		StatusCode: resp.statusCode,
		Status:     http.StatusText(resp.statusCode),
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Request:    req,
	}, nil
}

var errConnRefused = errors.New("connection refused")
