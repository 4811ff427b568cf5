package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/geocoder89/sharpexec/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

const cookieName = "sharpexec.session-token.v1"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCookie() middlewares.SessionCookie {
	return middlewares.SessionCookie{Name: cookieName, MaxAge: 30 * 24 * time.Hour}
}

func newSessions() *auth.SessionManager {
	return auth.NewSessionManager("handler-test-secret", 30*24*time.Hour, 24*time.Hour)
}

// guardedRouter mounts the session guard the way the real router does.
func guardedRouter(sessions *auth.SessionManager) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.Use(middlewares.NewSessionGuard(
		sessions,
		auth.NewPathClassifier(auth.DefaultPublicPaths),
		testCookie(),
		discardLogger(),
		nil,
	).Middleware())
	return r
}

func sessionToken(t *testing.T, sessions *auth.SessionManager, role string) string {
	t.Helper()
	tok, err := sessions.Issue(auth.Identity{ID: "user-1", Email: "admin@sharpexec.test", Name: "Admin", Role: user.Role(role)})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok.Raw
}

func doRequest(r http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func doRequestWithHeader(r http.Handler, target, key, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(key, value)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
