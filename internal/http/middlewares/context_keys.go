package middlewares

import (
	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const (
	CtxRequestID = "request_id"
	ctxClaimsKey = "auth.claims"
)

// Helpers so handlers don't need to know the magic keys.

func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return "", false
	}
	return claims.Subject, claims.Subject != ""
}

func RoleFromContext(c *gin.Context) (user.Role, bool) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return "", false
	}
	return user.Role(claims.Role), claims.Role != ""
}
