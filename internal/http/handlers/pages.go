package handlers

import (
	"net/http"

	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// PagesHandler answers the admin pages with small JSON view models; the
// frontend owns rendering.
type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// LoginPage runs after the session guard. A signed-in visitor whose callback
// resolves somewhere other than the login page is sent there; otherwise the
// login form model is returned.
func (h *PagesHandler) LoginPage(ctx *gin.Context) {
	callback := ctx.Query(auth.CallbackParam)
	target := ""
	if callback != "" {
		target = auth.ResolveCallback(callback, ctx.Request.Host, auth.DefaultLandingPath)
	}

	if _, ok := middlewares.ClaimsFromContext(ctx); ok && target != "" && !auth.SamePath(target, auth.LoginPath) {
		ctx.Redirect(http.StatusFound, target)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"page":        "login",
		"callbackUrl": target,
	})
}

func (h *PagesHandler) AdminRoot(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, auth.DefaultLandingPath)
}

func (h *PagesHandler) Dashboard(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"page": "dashboard",
		"user": claims.Identity(),
	})
}

func (h *PagesHandler) Unauthorized(ctx *gin.Context) {
	ctx.JSON(http.StatusForbidden, gin.H{
		"page":    "unauthorized",
		"message": "Your account does not have access to this area.",
	})
}
