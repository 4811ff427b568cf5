package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/sharpexec/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestReadyz(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	tests := []struct {
		name   string
		checks map[string]handlers.PingFunc
		want   int
	}{
		{name: "no checks", checks: nil, want: http.StatusOK},
		{name: "all up", checks: map[string]handlers.PingFunc{"db": ok, "redis": ok}, want: http.StatusOK},
		{name: "db down", checks: map[string]handlers.PingFunc{"db": down, "redis": ok}, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.checks)
			r := gin.New()
			r.GET("/readyz", h.Readyz)
			r.GET("/healthz", h.Healthz)

			w := doRequest(r, http.MethodGet, "/readyz", "", "")
			if w.Code != tt.want {
				t.Fatalf("got %d, want %d", w.Code, tt.want)
			}
			if strings.Contains(w.Body.String(), "refused") {
				t.Fatalf("detail leaked: %s", w.Body.String())
			}

			if w := doRequest(r, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
				t.Fatalf("healthz: got %d", w.Code)
			}
		})
	}
}
