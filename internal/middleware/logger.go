package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const requestIDHeader = echo.HeaderXRequestID

// RequestID propagates the client's X-Request-Id or assigns a fresh UUID.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(requestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set(requestIDHeader, rid)
			c.Response().Header().Set(requestIDHeader, rid)
			return next(c)
		}
	}
}

// Logger writes one structured line per request. Handler errors are passed
// to the echo error handler first so the logged status is the one sent.
func Logger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			event := log.Info()
			if status >= 500 {
				event = log.Error().Err(err)
			} else if status >= 400 {
				event = log.Warn()
			}
			event.
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Str("client_ip", c.RealIP()).
				Str("user", username(c)).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("request_id", c.Response().Header().Get(requestIDHeader)).
				Msg("http request")
			return nil
		}
	}
}

// Recovery turns a handler panic into a 500 and logs it.
func Recovery(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("request_id", c.Response().Header().Get(requestIDHeader)).
						Msg("panic recovered")
					err = echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprint(r))
				}
			}()
			return next(c)
		}
	}
}
