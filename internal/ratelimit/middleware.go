package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/grupoquokka/diagnostico/internal/errors"
	"github.com/grupoquokka/diagnostico/internal/monitoring"
)

// IPRateLimitMiddleware limits POST requests per client IP. Other methods
// pass through untouched so the handler can answer them itself.
func (l *Limiter) IPRateLimitMiddleware(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ip := c.ClientIP()
		result, err := l.AllowIP(c.Request.Context(), ip)
		if err != nil {
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if metrics != nil {
				metrics.IncrementRateLimitBlock()
			}

			retry := int(math.Ceil(result.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))

			appErr := apperrors.NewRateLimitError(strconv.Itoa(retry))
			apperrors.LogError(c, appErr)
			body := appErr.Response()
			body["retry_after"] = retry
			c.AbortWithStatusJSON(appErr.HTTPStatus, body)
			return
		}

		c.Next()
	}
}
