package middlewares

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/geocoder89/sharpexec/internal/observability"
	"github.com/geocoder89/sharpexec/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

const ctxThrottleReset = "auth.throttle_reset"

// LoginThrottle limits login attempts per client IP and lowercased
// identifier. It peeks the JSON body for the identifier and restores it for
// the handler. Limiter failures let the request through.
func LoginThrottle(limiter ratelimit.Limiter, prom *observability.Prom, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := loginThrottleKey(c)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				abortWithError(c, http.StatusRequestEntityTooLarge, "payload_too_large",
					"Request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
				return
			}
			abortWithError(c, http.StatusBadRequest, "invalid_request", "Could not read request body")
			return
		}
		ctx := c.Request.Context()

		d, err := limiter.Hit(ctx, key)
		if err != nil {
			log.WarnContext(ctx, "login throttle unavailable", "err", err)
			c.Next()
			return
		}

		if !d.Allowed {
			prom.ObserveLogin("throttled")

			retryAfter := int(d.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many login attempts. Please try again later.")
			return
		}

		c.Set(ctxThrottleReset, func() {
			if err := limiter.Reset(ctx, key); err != nil {
				log.WarnContext(ctx, "login throttle reset failed", "err", err)
			}
		})

		c.Next()
	}
}

// ResetLoginThrottle forgets the current key after a successful login.
func ResetLoginThrottle(c *gin.Context) {
	v, ok := c.Get(ctxThrottleReset)
	if !ok {
		return
	}
	if reset, ok := v.(func()); ok {
		reset()
	}
}

// loginThrottleKey fails only when the body cannot be read, which includes
// a body over the MaxBodyBytes limit.
func loginThrottleKey(c *gin.Context) (string, error) {
	key := "ip:" + clientIP(c)

	if c.Request.Body == nil {
		return key, nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var peek struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &peek) == nil {
		if id := strings.ToLower(strings.TrimSpace(peek.Email)); id != "" {
			key += "|id:" + id
		}
	}

	return key, nil
}

func clientIP(c *gin.Context) string {
	// gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
