package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"codeberg.org/parley/server/internal/errors"
	"codeberg.org/parley/server/internal/logger"
)

// Middleware builds a per-IP rate limiting middleware from a formatted
// limit like "10-M" (10 per minute) or "5-S". Intended for the abuse
// surface of the public API: chat creation and access-code joins.
func Middleware(formatted string) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		logger.FatalErr(err, "invalid rate limit format", "format", formatted)
	}

	instance := limiter.New(memory.NewStore(), rate, limiter.WithTrustForwardHeader(false))

	return mgin.NewMiddleware(instance,
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.ErrorErr(err, "rate limiter failure", "path", c.Request.URL.Path)
			c.Next()
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errors.ErrorResponse{
				Error:   errors.CodeTooManyRequests,
				Message: "too many requests, slow down",
			})
		}),
	)
}
