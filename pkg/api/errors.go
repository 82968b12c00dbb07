package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/apperr"
)

// mapServiceError turns a domain error into the matching echo.HTTPError,
// ported from the teacher's pkg/api/errors.go but keyed off apperr's
// taxonomy (spec.md §7) instead of services.*.
func mapServiceError(err error) *echo.HTTPError {
	var validErr *apperr.ValidationError
	if errors.As(err, &validErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validErr.Error())
	}

	var notFoundErr *apperr.NotFoundError
	if errors.As(err, &notFoundErr) {
		return echo.NewHTTPError(http.StatusNotFound, notFoundErr.Error())
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}

	if errors.Is(err, apperr.ErrBackendUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "backend store unavailable")
	}

	if errors.Is(err, apperr.ErrLLMTimeout) || errors.Is(err, apperr.ErrLLMMalformed) {
		return echo.NewHTTPError(http.StatusBadGateway, "language model call failed")
	}

	if errors.Is(err, apperr.ErrExtractionEmpty) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "no content could be extracted")
	}

	var fatalErr *apperr.FatalError
	if errors.As(err, &fatalErr) {
		slog.Error("fatal service error", "op", fatalErr.Op, "error", fatalErr.Err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if errors.Is(err, apperr.ErrFatal) {
		slog.Error("fatal service error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	slog.Error("unexpected service error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// bindOrBadRequest binds the request body and wraps a bind failure as a
// 400, matching the teacher handler idiom of failing fast on malformed
// JSON before touching any service.
func bindOrBadRequest(c *echo.Context, out any) error {
	if err := c.Bind(out); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
