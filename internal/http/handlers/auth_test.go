package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeVerifier struct {
	verifyFn func(ctx context.Context, identifier, secret string) (auth.Identity, error)
}

func (f *fakeVerifier) Verify(ctx context.Context, identifier, secret string) (auth.Identity, error) {
	if f.verifyFn != nil {
		return f.verifyFn(ctx, identifier, secret)
	}
	return auth.Identity{}, auth.ErrInvalidCredentials
}

func adminVerifier() *fakeVerifier {
	return &fakeVerifier{verifyFn: func(_ context.Context, identifier, secret string) (auth.Identity, error) {
		if identifier == "admin@sharpexec.test" && secret == "correct-horse" {
			return auth.Identity{ID: "user-1", Email: identifier, Name: "Admin", Role: "ADMIN"}, nil
		}
		return auth.Identity{}, auth.ErrInvalidCredentials
	}}
}

func authRouter(v handlers.CredentialVerifier) (*gin.Engine, *auth.SessionManager) {
	sessions := newSessions()
	h := handlers.NewAuthHandler(v, sessions, testCookie(), nil, discardLogger())
	pages := handlers.NewPagesHandler()

	r := guardedRouter(sessions)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/logout", h.Logout)
	r.GET("/api/auth/session", h.Session)
	r.GET("/admin/login", pages.LoginPage)
	r.GET("/admin/dashboard", pages.Dashboard)
	return r, sessions
}

type loginResp struct {
	User       auth.Identity `json:"user"`
	RedirectTo string        `json:"redirectTo"`
}

type errResp struct {
	Error handlers.APIError `json:"error"`
}

// Scenario A: correct credentials with a callback land on the callback.
func TestLogin_SuccessSetsCookieAndRedirectTarget(t *testing.T) {
	r, sessions := authRouter(adminVerifier())

	w := doRequest(r, http.MethodPost, "/api/auth/login",
		`{"email":"admin@sharpexec.test","password":"correct-horse","callbackUrl":"/admin/posts?page=2"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp loginResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.RedirectTo != "/admin/posts?page=2" {
		t.Fatalf("redirectTo = %q", resp.RedirectTo)
	}
	if resp.User.ID != "user-1" || resp.User.Role != "ADMIN" {
		t.Fatalf("unexpected user %+v", resp.User)
	}

	c := findCookie(w)
	if c == nil {
		t.Fatal("expected a session cookie")
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Path != "/" {
		t.Fatalf("cookie attributes wrong: %+v", c)
	}
	if c.MaxAge != 30*24*60*60 {
		t.Fatalf("cookie max-age = %d", c.MaxAge)
	}

	claims, err := sessions.Parse(c.Value)
	if err != nil {
		t.Fatalf("issued cookie does not parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

// Scenario B: wrong secret gives the generic message and no session.
func TestLogin_InvalidCredentials(t *testing.T) {
	r, _ := authRouter(adminVerifier())

	bodies := []string{
		`{"email":"admin@sharpexec.test","password":"wrong"}`,
		`{"email":"nobody@sharpexec.test","password":"correct-horse"}`,
		`{"email":"","password":""}`,
	}

	var messages []string
	for _, body := range bodies {
		w := doRequest(r, http.MethodPost, "/api/auth/login", body, "")

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("body %s: got status %d, want 401", body, w.Code)
		}
		if findCookie(w) != nil {
			t.Fatalf("body %s: no cookie expected on failure", body)
		}

		var resp errResp
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Error.Code != "invalid_credentials" {
			t.Fatalf("code = %q", resp.Error.Code)
		}
		messages = append(messages, resp.Error.Message)
	}

	// unknown user and wrong secret must be indistinguishable
	for _, m := range messages {
		if m != "Invalid email or password" {
			t.Fatalf("unexpected message %q", m)
		}
	}
}

func TestLogin_ServerErrorHidesDetail(t *testing.T) {
	v := &fakeVerifier{verifyFn: func(context.Context, string, string) (auth.Identity, error) {
		return auth.Identity{}, fmt.Errorf("%w: lookup user: %w", auth.ErrServer, errors.New("dial tcp 10.0.0.5:5432: refused"))
	}}
	r, _ := authRouter(v)

	w := doRequest(r, http.MethodPost, "/api/auth/login", `{"email":"a@b.c","password":"x"}`, "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Fatalf("detail leaked: %s", w.Body.String())
	}

	var resp errResp
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Code != "server_error" {
		t.Fatalf("code = %q", resp.Error.Code)
	}
}

func TestLogin_CallbackResolution(t *testing.T) {
	r, _ := authRouter(adminVerifier())

	tests := []struct {
		name     string
		callback string
		want     string
	}{
		{name: "none", callback: "", want: auth.DefaultLandingPath},
		{name: "foreign host", callback: "https://evil.example/admin", want: auth.DefaultLandingPath},
		{name: "protocol relative", callback: "//evil.example", want: auth.DefaultLandingPath},
		{name: "same host absolute", callback: "http://example.com/admin/posts", want: "/admin/posts"},
		{name: "login page itself", callback: "/admin/login", want: auth.DefaultLandingPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{
				"email":       "admin@sharpexec.test",
				"password":    "correct-horse",
				"callbackUrl": tt.callback,
			})
			w := doRequest(r, http.MethodPost, "/api/auth/login", string(body), "")

			var resp loginResp
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
			}
			if resp.RedirectTo != tt.want {
				t.Fatalf("redirectTo = %q, want %q", resp.RedirectTo, tt.want)
			}
		})
	}
}

func TestLoginPage_SessionStates(t *testing.T) {
	r, sessions := authRouter(adminVerifier())
	tok := sessionToken(t, sessions, "ADMIN")

	t.Run("anonymous gets the form with resolved callback", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/admin/login?callbackUrl="+url.QueryEscape("/admin/posts"), "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"callbackUrl":"/admin/posts"`) {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
	})

	// Scenario C: a valid session with a callback goes straight there.
	t.Run("signed in with callback", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/admin/login?callbackUrl="+url.QueryEscape("/admin/posts"), "", tok)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/posts" {
			t.Fatalf("got %d to %q", w.Code, w.Header().Get("Location"))
		}
	})

	t.Run("signed in with callback to login renders", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/admin/login?callbackUrl="+url.QueryEscape("/admin/login"), "", tok)
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200 to break the loop", w.Code)
		}
	})

	t.Run("signed in without callback", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/admin/login", "", tok)
		if w.Code != http.StatusFound || w.Header().Get("Location") != auth.DefaultLandingPath {
			t.Fatalf("got %d to %q", w.Code, w.Header().Get("Location"))
		}
	})
}

func TestSessionAndLogout(t *testing.T) {
	r, sessions := authRouter(adminVerifier())
	tok := sessionToken(t, sessions, "ADMIN")

	w := doRequest(r, http.MethodGet, "/api/auth/session", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous session: got %d", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/api/auth/session", "", tok)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":"user-1"`) {
		t.Fatalf("session: got %d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodPost, "/api/auth/logout", "", tok)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout: got %d", w.Code)
	}
	c := findCookie(w)
	if c == nil || c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("logout should expire the cookie, got %+v", c)
	}
}

func TestDashboard_RequiresSession(t *testing.T) {
	r, sessions := authRouter(adminVerifier())

	w := doRequest(r, http.MethodGet, "/admin/dashboard", "", "")
	if w.Code != http.StatusFound {
		t.Fatalf("got %d, want redirect", w.Code)
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Path != auth.LoginPath || loc.Query().Get(auth.CallbackParam) != "/admin/dashboard" {
		t.Fatalf("unexpected location %s", loc)
	}

	w = doRequest(r, http.MethodGet, "/admin/dashboard", "", sessionToken(t, sessions, "ADMIN"))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"page":"dashboard"`) {
		t.Fatalf("got %d body=%s", w.Code, w.Body.String())
	}
}
