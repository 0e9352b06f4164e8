package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bistro/internal/middleware"
	"bistro/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serve routes req through a mux so path values resolve.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{model.ErrCodeNotFound, http.StatusNotFound},
		{model.ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{model.ErrCodeUnauthorised, http.StatusUnauthorized},
		{model.ErrCodeCustomerBlocked, http.StatusForbidden},
		{model.ErrCodeSelfAction, http.StatusForbidden},
		{model.ErrCodeInvalidStatusTransition, http.StatusConflict},
		{model.ErrCodeConflict, http.StatusConflict},
		{model.ErrCodePaymentFailed, http.StatusBadGateway},
		{model.ErrCodeCartEmpty, http.StatusBadRequest},
		{model.ErrCodeValidationFailed, http.StatusBadRequest},
		{model.ErrCodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.code))
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("domain error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/x", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-42")
		w := httptest.NewRecorder()

		middleware.WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, model.ErrOrderNotFound, zerolog.Nop())
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := errorBody(t, w)
		assert.Equal(t, model.ErrCodeNotFound, resp.Error)
		assert.Equal(t, "Order not found", resp.Message)
		assert.Equal(t, "req-42", resp.CorrelationID)
	})

	t.Run("unexpected error hides detail", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection refused"), zerolog.Nop())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := errorBody(t, w)
		assert.Equal(t, model.ErrCodeInternalError, resp.Error)
		assert.NotContains(t, resp.Message, "pq")
	})
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode string
		expectedMsg  string
	}{
		{name: "valid", body: `{"username":"ada","password":"secret"}`},
		{name: "empty body", body: "", expectedCode: model.ErrCodeValidationFailed, expectedMsg: "Request body is required"},
		{name: "malformed", body: `{"username":`, expectedCode: model.ErrCodeInvalidJSON},
		{name: "missing field", body: `{"username":"ada"}`, expectedCode: model.ErrCodeValidationFailed, expectedMsg: "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			var dst model.LoginRequest

			err := decode(httptest.NewRecorder(), req, &dst)

			if tt.expectedCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "ada", dst.Username)
				return
			}
			de, ok := model.AsDomainError(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, de.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, de.Message)
			}
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x&date=2026-03-14&broken=14/03/2026", nil)

	assert.Equal(t, 3, queryInt(req, "page", 1))
	assert.Equal(t, 1, queryInt(req, "bad", 1))
	assert.Equal(t, 1, queryInt(req, "missing", 1))

	date, err := queryDate(req, "date")
	require.NoError(t, err)
	require.NotNil(t, date)
	assert.Equal(t, 14, date.Day())

	none, err := queryDate(req, "missing")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = queryDate(req, "broken")
	assert.Error(t, err)
}
