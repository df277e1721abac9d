package http

import (
	"errors"
	"net/http"

	"procurement/internal/core/ports"
	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/saga"

	"github.com/labstack/echo/v4"
)

// statusOf maps the error taxonomy to a response status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrBusinessRule),
		errors.Is(err, ports.ErrChangeRequestNumberTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(c echo.Context, err error) error {
	code := statusOf(err)
	body := Error{Code: code, Message: err.Error()}

	var sagaErr *saga.Error
	if errors.As(err, &sagaErr) {
		body.CommittedPhases = sagaErr.Completed
	}

	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		body.Message = http.StatusText(code)
	}
	return c.JSON(code, body)
}
