package http

import (
	"errors"
	"net/http"

	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const internalMessage = "internal server error"

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := s.describe(c, err)

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, Error{Code: status, Message: message})
	}
	if writeErr != nil {
		s.log.Error(c.Request().Context(), "write error response", writeErr)
	}
}

func (s *Server) describe(c echo.Context, err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	}

	kind := errs.KindOf(err)
	status := errs.MetadataFor(kind).HTTPStatus

	if kind == errs.KindInternal {
		s.log.Error(c.Request().Context(), "unhandled request error", err)
		return status, internalMessage
	}

	var typed *errs.Error
	if errors.As(err, &typed) && typed.Message() != "" {
		return status, typed.Message()
	}
	return status, err.Error()
}
