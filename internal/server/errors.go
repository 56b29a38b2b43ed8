package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/gecko"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/normalize"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/labstack/echo/v4"
)

// JSONErrors returns the router's HTTP error handler. Echo errors keep their
// own message, dashboard errors are mapped with statusOf, and everything is
// rendered as an ErrorResponse.
func JSONErrors(devMode bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// Don't send response if already committed
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, ErrorResponse{Error: httpErrorMessage(he), Code: he.Code})
			return
		}

		code, msg := statusOf(err)
		resp := ErrorResponse{Error: msg, Code: code}
		if devMode {
			resp.Details = map[string]any{"cause": err.Error()}
		}
		_ = c.JSON(code, resp)
	}
}

func httpErrorMessage(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		if m != "" {
			return m
		}
	case error:
		return m.Error()
	case nil:
	default:
		return fmt.Sprint(m)
	}
	return http.StatusText(he.Code)
}

// statusOf maps a dashboard error onto a status code and a public message.
// Deadlines are left to the caller, which knows whether its own context ran out.
func statusOf(err error) (int, string) {
	var he *gecko.HTTPError
	switch {
	case errors.Is(err, table.ErrUnknownColumn):
		return http.StatusBadRequest, "unknown column"
	case errors.Is(err, table.ErrTypeCoercion):
		return http.StatusUnprocessableEntity, "column is not numeric"
	case errors.As(err, &he) && he.StatusCode == http.StatusNotFound:
		return http.StatusNotFound, "not found upstream"
	case errors.Is(err, gecko.ErrNetworkFailure):
		return http.StatusBadGateway, "upstream request failed"
	case errors.Is(err, normalize.ErrMissingField), errors.Is(err, normalize.ErrInvalidJSON):
		return http.StatusBadGateway, "upstream payload invalid"
	}
	return http.StatusInternalServerError, "internal server error"
}
