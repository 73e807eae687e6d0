package middleware

import (
	"golang-portfolio/pkg/logger"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// NewRequestLoggerMiddleware attaches a request-scoped logger to the request
// context and logs every completed request.
func NewRequestLoggerMiddleware(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			reqLog := log.With(
				logger.StringField("request_id", requestID),
				logger.StringField("method", req.Method),
				logger.StringField("path", req.URL.Path),
			)
			c.SetRequest(req.WithContext(logger.NewContext(req.Context(), reqLog)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			reqLog.Info("Request completed",
				logger.IntField("status", c.Response().Status),
				logger.StringField("latency", time.Since(start).String()),
			)
			return nil
		}
	}
}
