package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestGinHandleMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := NewProm(prometheus.NewRegistry())
	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/api/blog/posts/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, slug := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/blog/posts/"+slug, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	got := testutil.ToFloat64(p.RequestsTotal.WithLabelValues(http.MethodGet, "/api/blog/posts/:slug", "200"))
	require.Equal(t, float64(2), got)
}

func TestObserveDB_ClassifiesErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("posts.create", func() error {
		return &pgconn.PgError{Code: "23505"}
	})
	require.Error(t, err)

	require.NoError(t, p.ObserveDB("posts.create", func() error { return nil }))

	require.Equal(t, float64(1), testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("posts.create", "unique_violation")))
	require.Equal(t, "foreign_key_violation", classifyDBErr(&pgconn.PgError{Code: "23503"}))
	require.Equal(t, "timeout", classifyDBErr(fmt.Errorf("scan: %w", context.DeadlineExceeded)))
	require.Equal(t, "canceled", classifyDBErr(context.Canceled))
	require.Equal(t, "unknown", classifyDBErr(errors.New("boom")))
}

func TestObserveDB_NoRowsIsNotAnError(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("users.find_by_identifier", func() error { return pgx.ErrNoRows })
	require.ErrorIs(t, err, pgx.ErrNoRows)

	require.Zero(t, testutil.CollectAndCount(p.DbErrorsTotal))
	require.Equal(t, 1, testutil.CollectAndCount(p.DbQueryDuration))
}

func TestAuthCounters_NilSafe(t *testing.T) {
	var nilProm *Prom
	require.NotPanics(t, func() {
		nilProm.ObserveLogin("success")
		nilProm.ObserveGuard("allow")
		nilProm.ObserveRefresh()
	})

	p := NewProm(prometheus.NewRegistry())
	p.ObserveLogin("invalid")
	p.ObserveLogin("invalid")
	p.ObserveGuard("redirect_login")

	require.Equal(t, float64(2), testutil.ToFloat64(p.LoginAttempts.WithLabelValues("invalid")))
	require.Equal(t, float64(1), testutil.ToFloat64(p.GuardDecisions.WithLabelValues("redirect_login")))
}
