package middlewares

import (
	"net/http"
	"time"

	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/gin-gonic/gin"
)

// SessionCookie writes and reads the session token cookie. It is HttpOnly,
// SameSite=Lax and scoped to the whole site.
type SessionCookie struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

func (sc SessionCookie) Read(c *gin.Context) string {
	v, err := c.Cookie(sc.Name)
	if err != nil {
		return ""
	}
	return v
}

func (sc SessionCookie) Set(c *gin.Context, tok auth.Token) {
	maxAge := int(tok.ExpiresAt.Sub(tok.IssuedAt).Seconds())
	if maxAge <= 0 || maxAge > int(sc.MaxAge.Seconds()) {
		maxAge = int(sc.MaxAge.Seconds())
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, tok.Raw, maxAge, "/", sc.Domain, sc.Secure, true)
}

func (sc SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sc.Name, "", -1, "/", sc.Domain, sc.Secure, true)
}
