package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/gym/internal/apperrors"
)

func TestRender_JSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := map[string]any{"key1": 1, "key2": "222"}
		JSON(w, data)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222"}`+"\n", string(body))
}

func TestRender_Status(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{"validation", apperrors.Validation("firstName: must not be blank"), 400, "firstName: must not be blank"},
		{"missing parameter", apperrors.MissingParameter("active"), 400, "Required request parameter 'active' is not present"},
		{"invalid token", apperrors.InvalidToken(), 401, "Invalid Token"},
		{"expired", apperrors.Wrap(apperrors.ErrTokenExpired, "Token expired", errors.New("exp")), 401, "Token expired"},
		{"bad credentials", apperrors.New(apperrors.ErrBadCredentials, "Bad credentials"), 401, "Bad credentials"},
		{"issuance", apperrors.New(apperrors.ErrTokenIssuance, "Failed to authenticate login"), 401, "Failed to authenticate login"},
		{"forbidden", apperrors.Forbidden(), 403, "Access denied"},
		{"user not found", apperrors.UserNotFound("ghost"), 404, "User not found ghost"},
		{"entity not found", apperrors.EntityNotFound("Trainee not found %s", "x"), 404, "Trainee not found x"},
		{"method", apperrors.MethodNotSupported("PATCH"), 405, "Request method 'PATCH' not supported"},
		{"conflict", apperrors.New(apperrors.ErrUserAlreadyExists, "User already exists"), 409, "User already exists"},
		{"wrapped by fmt", fmt.Errorf("ctx: %w", apperrors.Forbidden()), 403, "Access denied"},
		{"bare sentinel", apperrors.ErrTokenNotFound, 401, "Unauthorized"},
		{"unknown", errors.New("db error: connection refused"), 500, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := Status(tc.err)

			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantMessage, msg)
		})
	}
}

func TestRender_Error(t *testing.T) {
	rec := httptest.NewRecorder()

	code := Error(rec, apperrors.UserNotFound("ghost"))

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message": "User not found ghost"}`, rec.Body.String())
}

func TestRender_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := struct {
			Key      string `json:"key"`
			Duration int    `json:"duration"`
		}{}

		err := json.NewDecoder(r.Body).Decode(&value)
		require.Error(t, err, "Please check what JSON was sent. Test expected that it is invalid")
		DecodeError(w, err)
	}))
	defer ts.Close()

	tests := []struct {
		name        string
		requestBody string
		expected    string
	}{
		{
			name:        "json parsing error",
			requestBody: `invalid-json`,
			expected:    `{"message": "Request body is missing or invalid."}`,
		},
		{
			name:        "invalid type",
			requestBody: `{"key": "valid_json", "duration": "but incorrect type"}`,
			expected:    `{"message": "Invalid data type for field 'duration'"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expected, string(body))
		})
	}
}

func TestRender_BindAndValidate(t *testing.T) {
	type Registration struct {
		FirstName   string  `json:"firstName" validate:"required,notblank"`
		LastName    string  `json:"lastName" validate:"required,notblank"`
		DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	}

	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "valid request",
			requestBody:    `{"firstName": "John", "lastName": "Smith", "dateOfBirth": "2000-01-31"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
		},
		{
			name:           "invalid json",
			requestBody:    `invalid-json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message": "Request body is missing or invalid."}`,
		},
		{
			name:           "empty body",
			requestBody:    ``,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message": "Request body is missing or invalid."}`,
		},
		{
			name:           "validation failed",
			requestBody:    `{"lastName": "  ", "dateOfBirth": "31.01.2000"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message": "dateOfBirth: must be a date in format YYYY-MM-DD, firstName: must not be blank, lastName: must not be blank"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, err := BindAndValidate[Registration](w, r)
				if err != nil {
					return // Error response already written
				}
				// Success case
				JSON(w, map[string]bool{"success": true})
			}))
			defer ts.Close()

			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, string(body))
		})
	}
}
