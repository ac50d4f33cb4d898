package utils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// MakeTestRequest runs one request through handler. body may be nil, raw
// bytes, or any value that is marshalled to JSON.
func MakeTestRequest(t *testing.T, handler http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		payload = b
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// ParseTestResponse decodes a StandardResponse, keeping Data as raw JSON
func ParseTestResponse(t *testing.T, w *httptest.ResponseRecorder) (StandardResponse, json.RawMessage) {
	t.Helper()

	var envelope struct {
		StandardResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	return envelope.StandardResponse, envelope.Data
}

// AuthHeader returns an Authorization header for a fresh token
func AuthHeader(t *testing.T, userID uint, role, secret string) map[string]string {
	t.Helper()

	token, err := GenerateToken(userID, role, secret, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}
