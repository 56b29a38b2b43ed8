package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/gecko"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/normalize"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("rank: %w", table.ErrUnknownColumn), http.StatusBadRequest, "unknown column"},
		{&table.CoercionError{Column: "x"}, http.StatusUnprocessableEntity, "column is not numeric"},
		{&gecko.HTTPError{StatusCode: http.StatusNotFound}, http.StatusNotFound, "not found upstream"},
		{&gecko.HTTPError{StatusCode: http.StatusTooManyRequests}, http.StatusBadGateway, "upstream request failed"},
		{&normalize.FieldError{Path: "data"}, http.StatusBadGateway, "upstream payload invalid"},
		{normalize.ErrInvalidJSON, http.StatusBadGateway, "upstream payload invalid"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		code, msg := statusOf(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}

func render(t *testing.T, devMode bool, err error) (int, ErrorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	JSONErrors(devMode)(err, c)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestJSONErrors_KeepsEchoMessages(t *testing.T) {
	code, out := render(t, false, echo.NewHTTPError(http.StatusUnauthorized, "missing api key"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "missing api key", out.Error)

	code, out = render(t, false, echo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Not Found", out.Error)

	code, out = render(t, false, &echo.HTTPError{Code: http.StatusBadRequest})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusText(http.StatusBadRequest), out.Error)
}

func TestJSONErrors_MapsDashboardErrors(t *testing.T) {
	code, out := render(t, false, &gecko.HTTPError{StatusCode: http.StatusServiceUnavailable})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "upstream request failed", out.Error)
	assert.Nil(t, out.Details)

	code, out = render(t, true, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", out.Error)
	assert.Equal(t, map[string]any{"cause": "boom"}, out.Details)
}
