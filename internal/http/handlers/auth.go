package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/http/middlewares"
	"github.com/geocoder89/sharpexec/internal/observability"
	"github.com/gin-gonic/gin"
)

type CredentialVerifier interface {
	Verify(ctx context.Context, identifier, secret string) (auth.Identity, error)
}

type SessionIssuer interface {
	Issue(id auth.Identity) (auth.Token, error)
}

type AuthHandler struct {
	verifier CredentialVerifier
	sessions SessionIssuer
	cookie   middlewares.SessionCookie
	prom     *observability.Prom
	log      *slog.Logger
}

func NewAuthHandler(verifier CredentialVerifier, sessions SessionIssuer, cookie middlewares.SessionCookie, prom *observability.Prom, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		sessions: sessions,
		cookie:   cookie,
		prom:     prom,
		log:      log,
	}
}

// Empty fields are an authentication failure, not a validation error.
type LoginRequest struct {
	Email       string `json:"email" binding:"max=320"`
	Password    string `json:"password" binding:"max=1024"`
	CallbackURL string `json:"callbackUrl" binding:"max=2048"`
}

type LoginResponse struct {
	User       auth.Identity `json:"user"`
	RedirectTo string        `json:"redirectTo"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	identity, err := h.verifier.Verify(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.prom.ObserveLogin("invalid")
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password")
			return
		}

		h.prom.ObserveLogin("error")
		h.log.ErrorContext(ctx.Request.Context(), "login failed", "err", err)
		RespondServerError(ctx)
		return
	}

	tok, err := h.sessions.Issue(identity)
	if err != nil {
		h.prom.ObserveLogin("error")
		h.log.ErrorContext(ctx.Request.Context(), "issue session", "user_id", identity.ID, "err", err)
		RespondServerError(ctx)
		return
	}

	h.cookie.Set(ctx, tok)
	middlewares.ResetLoginThrottle(ctx)
	h.prom.ObserveLogin("success")
	h.log.InfoContext(ctx.Request.Context(), "login succeeded", "user_id", identity.ID, "role", identity.Role)

	ctx.JSON(http.StatusOK, LoginResponse{
		User:       identity,
		RedirectTo: postLoginTarget(req.CallbackURL, ctx.Request.Host),
	})
}

// postLoginTarget never points back at the login page.
func postLoginTarget(callback, host string) string {
	target := auth.ResolveCallback(callback, host, auth.DefaultLandingPath)
	if auth.SamePath(target, auth.LoginPath) {
		return auth.DefaultLandingPath
	}
	return target
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.cookie.Clear(ctx)
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Session(ctx *gin.Context) {
	claims, ok := middlewares.ClaimsFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "No active session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":      claims.Identity(),
		"issuedAt":  claims.IssuedAt.Time,
		"expiresAt": claims.ExpiresAt.Time,
	})
}
