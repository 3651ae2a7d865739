package auth

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireToken(t *testing.T) {
	testCases := []struct {
		name               string
		token              string
		header             string
		expectedStatusCode int
	}{
		{name: "Valid token", token: "s3cret", header: "Bearer s3cret", expectedStatusCode: http.StatusOK},
		{name: "Scheme is case-insensitive", token: "s3cret", header: "bearer s3cret", expectedStatusCode: http.StatusOK},
		{name: "Wrong token", token: "s3cret", header: "Bearer guess", expectedStatusCode: http.StatusUnauthorized},
		{name: "Missing header", token: "s3cret", expectedStatusCode: http.StatusUnauthorized},
		{name: "Basic scheme", token: "s3cret", header: "Basic s3cret", expectedStatusCode: http.StatusUnauthorized},
		{name: "Token prefix only", token: "s3cret", header: "Bearer s3c", expectedStatusCode: http.StatusUnauthorized},
		{name: "No token configured", token: "", expectedStatusCode: http.StatusServiceUnavailable},
		{name: "No token configured with empty bearer", token: "", header: "Bearer ", expectedStatusCode: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			var logs bytes.Buffer
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireToken(tc.token, slog.New(slog.NewTextHandler(&logs, nil)))(next)
			req := httptest.NewRequest("DELETE", "/fish/1", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			assert.Equal(t, tc.expectedStatusCode == http.StatusOK, called)
			if tc.expectedStatusCode == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
			if tc.token == "" {
				assert.JSONEq(t, `{"error":"Write access is not configured"}`, rec.Body.String())
				assert.Contains(t, logs.String(), "ADMIN_TOKEN is not set")
			}
		})
	}
}
