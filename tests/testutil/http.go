package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSecret signs every session token issued by TestTokens
const TestSecret = "test-secret-key-for-testing-only"

// TestTokens creates a SessionTokenService with test configuration
func TestTokens() *services.SessionTokenService {
	return services.NewSessionTokenService(TestSecret, time.Hour)
}

// AllowSessions accepts every session id. Handler tests use it in place of
// the database-backed SessionService.
type AllowSessions struct{}

func (AllowSessions) Validate(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

// GenerateTestToken issues a session token for a fresh session id
func GenerateTestToken(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	token, err := TestTokens().Issue(uuid.New(), userID, email, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// AuthHeader returns Authorization headers carrying a Bearer session token
func AuthHeader(t *testing.T, userID uuid.UUID, email string) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + GenerateTestToken(t, userID, email)}
}

// HTTPTestClient provides helper methods for HTTP testing
type HTTPTestClient struct {
	t       *testing.T
	handler http.Handler
}

// NewHTTPTestClient creates a new HTTP test client
func NewHTTPTestClient(t *testing.T, handler http.Handler) *HTTPTestClient {
	return &HTTPTestClient{t: t, handler: handler}
}

// Request serves one request through the handler. A non-nil body is sent
// as JSON.
func (c *HTTPTestClient) Request(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	c.t.Helper()

	req := httptest.NewRequest(method, path, encodeBody(c.t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func encodeBody(t *testing.T, body interface{}) io.Reader {
	t.Helper()
	if body == nil {
		return nil
	}
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body), "encode request body")
	return &buf
}

func (c *HTTPTestClient) GET(path string, headers map[string]string) *httptest.ResponseRecorder {
	return c.Request(http.MethodGet, path, nil, headers)
}

func (c *HTTPTestClient) POST(path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return c.Request(http.MethodPost, path, body, headers)
}

func (c *HTTPTestClient) PUT(path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return c.Request(http.MethodPut, path, body, headers)
}

func (c *HTTPTestClient) PATCH(path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return c.Request(http.MethodPatch, path, body, headers)
}

func (c *HTTPTestClient) DELETE(path string, headers map[string]string) *httptest.ResponseRecorder {
	return c.Request(http.MethodDelete, path, nil, headers)
}

// ParseJSON decodes the response body into v
func ParseJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "decode response: %s", rec.Body.String())
}

// AssertStatus checks the status code and prints the body on mismatch
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rec.Code, "body: %s", rec.Body.String())
}

// AssertJSON checks that the top-level fields of the response body equal
// expected. Numbers decode as float64.
func AssertJSON(t *testing.T, rec *httptest.ResponseRecorder, expected map[string]interface{}) {
	t.Helper()
	var actual map[string]interface{}
	ParseJSON(t, rec, &actual)
	for key, want := range expected {
		if assert.Contains(t, actual, key) {
			assert.Equal(t, want, actual[key], "field %q", key)
		}
	}
}
