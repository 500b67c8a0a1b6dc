package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cresshoe/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storefront wraps next in the order the router applies the middleware.
func storefront(next http.Handler, logger zerolog.Logger) http.Handler {
	return Recovery(logger)(RequestID(logger)(Logging(logger)(CORS(next))))
}

// logLines decodes every JSON log line written to buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func findLog(lines []map[string]interface{}, message string) map[string]interface{} {
	for _, line := range lines {
		if line["message"] == message {
			return line
		}
	}
	return nil
}

func TestStorefront_AccessLogCarriesRequestAndSession(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		path          string
		session       string
		requestID     string
		handlerStatus int
		expectedLevel string
	}{
		{
			name:          "cart read for a session",
			method:        http.MethodGet,
			path:          "/api/cart",
			session:       "shopper-7",
			requestID:     "req-42",
			handlerStatus: http.StatusOK,
			expectedLevel: "info",
		},
		{
			name:          "anonymous cart add rejected",
			method:        http.MethodPost,
			path:          "/api/cart/items",
			handlerStatus: http.StatusBadRequest,
			expectedLevel: "info",
		},
		{
			name:          "checkout channel failure",
			method:        http.MethodPost,
			path:          "/api/checkout",
			session:       "shopper-9",
			requestID:     "req-502",
			handlerStatus: http.StatusBadGateway,
			expectedLevel: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := storefront(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			}), zerolog.New(&buf))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.session != "" {
				req.Header.Set(sessionHeader, tt.session)
			}
			if tt.requestID != "" {
				req.Header.Set(RequestIDHeader, tt.requestID)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.handlerStatus, w.Code)

			entry := findLog(logLines(t, &buf), "http request")
			require.NotNil(t, entry)
			assert.Equal(t, tt.expectedLevel, entry["level"])
			assert.Equal(t, tt.path, entry["path"])
			assert.Equal(t, float64(tt.handlerStatus), entry["status"])
			assert.Equal(t, tt.session, entry["session"])
			assert.Equal(t, w.Header().Get(RequestIDHeader), entry["request_id"])
			if tt.requestID != "" {
				assert.Equal(t, tt.requestID, entry["request_id"])
			}
		})
	}
}

func TestStorefront_HandlerLogsShareRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := storefront(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("cart updated")
		w.WriteHeader(http.StatusOK)
	}), zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodPatch, "/api/cart/items", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	lines := logLines(t, &buf)
	require.NotNil(t, findLog(lines, "cart updated"))
	assert.Equal(t, id, findLog(lines, "cart updated")["request_id"])
	assert.Equal(t, id, findLog(lines, "http request")["request_id"])
}

func TestRequestID_RejectsOversizedID(t *testing.T) {
	h := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestCORS_SessionHeaderPreflight(t *testing.T) {
	called := false
	h := storefront(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodOptions, "/api/cart/items", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "content-type,x-session-id")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called, "preflight never reaches the cart handler")

	allowed := strings.Split(w.Header().Get("Access-Control-Allow-Headers"), ", ")
	assert.Contains(t, allowed, "X-Session-ID")
	assert.Contains(t, allowed, "Content-Type")
	assert.Contains(t, allowed, "X-API-Key")
	assert.Contains(t, strings.Split(w.Header().Get("Access-Control-Allow-Methods"), ", "), http.MethodPatch)
	assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAPIKeyAuth_OrderIntake(t *testing.T) {
	const intakeKey = "intake-key-123"

	tests := []struct {
		name            string
		apiKey          string
		expectedStatus  int
		expectedMessage string
	}{
		{name: "Valid key", apiKey: intakeKey, expectedStatus: http.StatusCreated},
		{name: "Missing key", expectedStatus: http.StatusUnauthorized, expectedMessage: "unauthorised: missing API key"},
		{name: "Wrong key", apiKey: "nope", expectedStatus: http.StatusUnauthorized, expectedMessage: "unauthorised: invalid API key"},
		{name: "Key prefix", apiKey: "intake-key", expectedStatus: http.StatusUnauthorized, expectedMessage: "unauthorised: invalid API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			})
			h := APIKeyAuth(intakeKey, zerolog.Nop())(orders)

			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusUnauthorized {
				return
			}
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var body model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, model.ErrCodeUnauthorised, body.Error)
			assert.Equal(t, tt.expectedMessage, body.Message)
		})
	}
}

func TestRecovery_PanickingHandlerAnswersJSON(t *testing.T) {
	var buf bytes.Buffer
	h := storefront(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("catalogue index out of range")
	}), zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodGet, "/api/products/trail-runner", nil)
	req.Header.Set(RequestIDHeader, "req-panic")
	w := httptest.NewRecorder()

	require.NotPanics(t, func() { h.ServeHTTP(w, req) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req-panic", w.Header().Get(RequestIDHeader))

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.ErrCodeInternalError, body.Error)
	assert.NotContains(t, body.Message, "catalogue index")

	entry := findLog(logLines(t, &buf), "panic recovered")
	require.NotNil(t, entry)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "req-panic", entry["request_id"])
	assert.Equal(t, "catalogue index out of range", entry["panic"])
}
