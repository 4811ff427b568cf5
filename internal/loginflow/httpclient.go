package loginflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/sharpexec/internal/auth"
)

// HTTPClient is both Authenticator and Navigator against a running API. Its
// current path is wherever the last navigation ended after redirects.
type HTTPClient struct {
	base       *url.URL
	cookieName string
	client     *http.Client

	mu      sync.RWMutex
	current string
	session *http.Cookie
}

func NewHTTPClient(baseURL, cookieName string, timeout time.Duration) (*HTTPClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		base:       base,
		cookieName: cookieName,
		client:     &http.Client{Jar: jar, Timeout: timeout},
		current:    auth.LoginPath,
	}, nil
}

type loginBody struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CallbackURL string `json:"callbackUrl,omitempty"`
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials, callbackURL string) (LoginResult, error) {
	body, err := json.Marshal(loginBody{Email: creds.Email, Password: creds.Password, CallbackURL: callbackURL})
	if err != nil {
		return LoginResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve("/api/auth/login"), bytes.NewReader(body))
	if err != nil {
		return LoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrServer, err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return LoginResult{}, ErrInvalidCredentials
	case http.StatusTooManyRequests:
		return LoginResult{}, &ThrottledError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return LoginResult{}, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	}

	var out struct {
		User       auth.Identity `json:"user"`
		RedirectTo string        `json:"redirectTo"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return LoginResult{}, fmt.Errorf("%w: decode login response: %w", ErrServer, err)
	}

	for _, ck := range resp.Cookies() {
		if ck.Name == c.cookieName {
			c.mu.Lock()
			c.session = ck
			c.mu.Unlock()
		}
	}

	return LoginResult{User: out.User, RedirectTo: out.RedirectTo}, nil
}

func (c *HTTPClient) CurrentPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Push relies on the cookie jar alone.
func (c *HTTPClient) Push(ctx context.Context, target string) error {
	return c.visit(ctx, c.client, target, nil)
}

// Assign bypasses the jar and sends the session cookie captured at login.
func (c *HTTPClient) Assign(ctx context.Context, target string) error {
	client := &http.Client{Timeout: c.client.Timeout}
	return c.visit(ctx, client, target, c.withSession)
}

// Replace is Assign with caching disabled.
func (c *HTTPClient) Replace(ctx context.Context, target string) error {
	client := &http.Client{Timeout: c.client.Timeout}
	return c.visit(ctx, client, target, func(req *http.Request) {
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")
		c.withSession(req)
	})
}

func (c *HTTPClient) withSession(req *http.Request) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	if session != nil {
		req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	}
}

func (c *HTTPClient) visit(ctx context.Context, client *http.Client, target string, decorate func(*http.Request)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(target), nil)
	if err != nil {
		return err
	}
	if decorate != nil {
		decorate(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	c.mu.Lock()
	c.current = auth.CleanPath(resp.Request.URL.Path)
	c.mu.Unlock()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("navigate %s: status %d", target, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) resolve(target string) string {
	ref, err := url.Parse(target)
	if err != nil {
		return c.base.String()
	}
	return c.base.ResolveReference(ref).String()
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// parseRetryAfter reads the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
