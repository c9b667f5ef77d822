package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/pv-site-manager/internal/service"
)

// ErrorHandler renders every handler error as {"error": "<reason>"}.
// Service errors map by kind; other echo errors keep their status; anything
// else is logged and hidden behind a generic 500.
func ErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := classify(err)
		if status == http.StatusUnauthorized {
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		}
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, echo.Map{"error": msg})
		}
		if werr != nil {
			log.Warn().Err(werr).Msg("write error response")
		}
	}
}

func classify(err error) (int, string) {
	var se *service.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case service.KindValidation, service.KindExtraction:
			return http.StatusBadRequest, se.Message
		case service.KindAuthentication:
			return http.StatusUnauthorized, se.Message
		case service.KindAuthorization:
			return http.StatusForbidden, se.Message
		case service.KindNotFound:
			return http.StatusNotFound, se.Message
		}
		return http.StatusInternalServerError, "internal server error"
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, "internal server error"
		}
		if m, ok := he.Message.(string); ok {
			return he.Code, m
		}
		return he.Code, fmt.Sprint(he.Message)
	}
	return http.StatusInternalServerError, "internal server error"
}
