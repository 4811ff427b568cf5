package middlewares

import (
	"net/http"

	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRoleAPI guards JSON endpoints behind the session guard.
func RequireRoleAPI(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if role != required {
			abortWithError(c, http.StatusForbidden, "forbidden", "Role "+string(required)+" required")
			return
		}
		c.Next()
	}
}

// RequireRolePage sends signed-in users without the role to the
// unauthorized page instead of answering 403.
func RequireRolePage(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.Redirect(http.StatusFound, LoginRedirectURL(auth.CleanPath(c.Request.URL.Path), c.Request.URL.RawQuery))
			c.Abort()
			return
		}
		if role != required {
			c.Redirect(http.StatusFound, auth.UnauthorizedPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
