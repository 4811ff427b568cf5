package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/cache"
	"github.com/geocoder89/sharpexec/internal/config"
	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/geocoder89/sharpexec/internal/http/handlers"
	"github.com/geocoder89/sharpexec/internal/http/middlewares"
	"github.com/geocoder89/sharpexec/internal/observability"
	"github.com/geocoder89/sharpexec/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type PostsRepository interface {
	handlers.PostsStore
	handlers.PublishedPosts
	handlers.PostStats
}

type Deps struct {
	Config config.Config
	Log    *slog.Logger

	// Prom and Gatherer are optional; /metrics is mounted when both are set.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Users   auth.UserFinder
	Posts   PostsRepository
	Limiter ratelimit.Limiter

	// readiness checks by dependency name
	Checks map[string]handlers.PingFunc
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	publicPaths := d.Config.PublicPaths
	if len(publicPaths) == 0 {
		publicPaths = auth.DefaultPublicPaths
	}

	sessions := auth.NewSessionManager(d.Config.SessionSecret, d.Config.SessionMaxAge, d.Config.SessionUpdateAge)
	cookie := middlewares.SessionCookie{
		Name:   d.Config.SessionCookieName,
		Domain: d.Config.CookieDomain,
		Secure: d.Config.IsProduction(),
		MaxAge: sessions.MaxAge(),
	}
	guard := middlewares.NewSessionGuard(sessions, auth.NewPathClassifier(publicPaths), cookie, d.Log, d.Prom)

	limiter := d.Limiter
	if limiter == nil {
		limiter = ratelimit.NewMemory(d.Config.LoginRateLimit, d.Config.LoginRateWindow)
	}

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("sharpexec"))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders(d.Config.IsProduction()))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(guard.Middleware())

	// health
	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Prom != nil && d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// wire up handlers
	verifier := auth.NewVerifier(d.Users, d.Log)
	authHandler := handlers.NewAuthHandler(verifier, sessions, cookie, d.Prom, d.Log)
	pages := handlers.NewPagesHandler()

	postsCache := cache.New(30 * time.Second)
	postsHandler := handlers.NewPostsHandler(d.Posts, postsCache)
	blogHandler := handlers.NewBlogHandler(d.Posts, postsCache)
	dbCheck := handlers.NewDBCheckHandler(d.Posts, d.Log)

	// auth API
	authGroup := r.Group("/api/auth")
	authGroup.POST("/login", middlewares.RequireJSON(), middlewares.LoginThrottle(limiter, d.Prom, d.Log), authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/session", authHandler.Session)

	// admin pages
	r.GET("/admin/login", pages.LoginPage)
	r.GET("/admin", pages.AdminRoot)
	r.GET("/admin/unauthorized", pages.Unauthorized)
	r.GET("/admin/dashboard", middlewares.RequireRolePage(user.RoleAdmin), pages.Dashboard)

	// admin content API
	admin := r.Group("/api/admin", middlewares.RequireRoleAPI(user.RoleAdmin), middlewares.RequireJSON())
	admin.GET("/posts", postsHandler.ListPosts)
	admin.POST("/posts", postsHandler.CreatePost)
	admin.GET("/posts/:id", postsHandler.GetPostByID)
	admin.PUT("/posts/:id", postsHandler.UpdatePost)
	admin.DELETE("/posts/:id", postsHandler.DeletePost)

	r.GET("/api/db-check", middlewares.RequireRoleAPI(user.RoleAdmin), dbCheck.Check)

	// public blog
	r.GET("/api/blog/posts", blogHandler.ListPublished)
	r.GET("/api/blog/posts/:slug", blogHandler.GetBySlug)

	return r
}
