package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/geocoder89/sharpexec/internal/actorctx"
	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type SessionTokens interface {
	Parse(raw string) (*auth.Claims, error)
	NeedsRefresh(c *auth.Claims) bool
	Refresh(c *auth.Claims) (auth.Token, error)
}

type sessionState int

const (
	stateNoToken sessionState = iota
	stateValidToken
	stateExpiredOrInvalidToken
)

// guard decisions, also the metric label values
const (
	decisionPublic          = "public"
	decisionAllow           = "allow"
	decisionRedirectLogin   = "redirect_login"
	decisionRedirectLanding = "redirect_landing"
)

type SessionGuard struct {
	tokens SessionTokens
	paths  *auth.PathClassifier
	cookie SessionCookie
	log    *slog.Logger
	prom   *observability.Prom
}

func NewSessionGuard(tokens SessionTokens, paths *auth.PathClassifier, cookie SessionCookie, log *slog.Logger, prom *observability.Prom) *SessionGuard {
	return &SessionGuard{
		tokens: tokens,
		paths:  paths,
		cookie: cookie,
		log:    log,
		prom:   prom,
	}
}

func (g *SessionGuard) inspect(c *gin.Context) (sessionState, *auth.Claims) {
	raw := g.cookie.Read(c)
	if raw == "" {
		return stateNoToken, nil
	}

	claims, err := g.tokens.Parse(raw)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, auth.ErrTokenExpired) {
			level = slog.LevelDebug
		}
		g.log.Log(c.Request.Context(), level, "session token rejected", "path", c.Request.URL.Path, "err", err)
		return stateExpiredOrInvalidToken, nil
	}

	return stateValidToken, claims
}

func (g *SessionGuard) attach(c *gin.Context, claims *auth.Claims) {
	c.Set(ctxClaimsKey, claims)
	c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), claims.Identity()))
}

// Middleware classifies the path before anything else, then runs the
// NoToken / ValidToken / ExpiredOrInvalidToken transitions for protected
// paths. A valid session on a public path is attached but never refreshed.
func (g *SessionGuard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.CleanPath(c.Request.URL.Path)
		state, claims := g.inspect(c)

		if g.paths.Classify(p) == auth.Public {
			if state == stateValidToken {
				// a callback means the login page decides where to go
				if p == auth.LoginPath && c.Query(auth.CallbackParam) == "" {
					g.decide(c, decisionRedirectLanding)
					c.Redirect(http.StatusFound, auth.DefaultLandingPath)
					c.Abort()
					return
				}
				g.attach(c, claims)
			}

			g.decide(c, decisionPublic)
			c.Next()
			return
		}

		if state != stateValidToken {
			if state == stateExpiredOrInvalidToken {
				g.cookie.Clear(c)
			}

			g.decide(c, decisionRedirectLogin)
			c.Redirect(http.StatusFound, LoginRedirectURL(p, c.Request.URL.RawQuery))
			c.Abort()
			return
		}

		if g.tokens.NeedsRefresh(claims) {
			g.refresh(c, claims)
		}

		g.attach(c, claims)
		g.decide(c, decisionAllow)
		c.Next()
	}
}

func (g *SessionGuard) refresh(c *gin.Context, claims *auth.Claims) {
	tok, err := g.tokens.Refresh(claims)
	if err != nil {
		// the current token is still valid, carry on with it
		g.log.WarnContext(c.Request.Context(), "session refresh failed", "user_id", claims.Subject, "err", err)
		return
	}

	g.cookie.Set(c, tok)
	g.prom.ObserveRefresh()
	g.log.DebugContext(c.Request.Context(), "session refreshed", "user_id", claims.Subject)
}

func (g *SessionGuard) decide(c *gin.Context, decision string) {
	g.prom.ObserveGuard(decision)
	if decision != decisionPublic {
		g.log.DebugContext(c.Request.Context(), "guard decision", "decision", decision, "path", c.Request.URL.Path)
	}
}

// LoginRedirectURL builds /admin/login?callbackUrl=<path+query>.
func LoginRedirectURL(path, rawQuery string) string {
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	q := url.Values{}
	q.Set(auth.CallbackParam, target)

	return auth.LoginPath + "?" + q.Encode()
}
