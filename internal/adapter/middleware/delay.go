package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// ResponseDelay holds every response for the given duration before the
// handler runs. Used only for frontend demos (loading states); a zero delay
// returns the next handler untouched.
func ResponseDelay(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if d <= 0 {
			return next
		}
		return func(c echo.Context) error {
			select {
			case <-time.After(d):
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
			return next(c)
		}
	}
}
