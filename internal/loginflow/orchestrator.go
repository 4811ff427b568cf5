package loginflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/sharpexec/internal/auth"
)

type Credentials struct {
	Email    string
	Password string
}

type LoginResult struct {
	User       auth.Identity
	RedirectTo string
}

// Authenticator calls the non-redirecting login operation.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials, callbackURL string) (LoginResult, error)
}

// Navigator is whatever owns the current location: a browser bridge, or
// the HTTP client used by sharpctl.
type Navigator interface {
	CurrentPath() string
	// Push is the soft, in-app navigation.
	Push(ctx context.Context, target string) error
	// Assign is a hard full-page navigation.
	Assign(ctx context.Context, target string) error
	// Replace reloads the target as an absolute URL, replacing history.
	Replace(ctx context.Context, target string) error
}

// Strategy is one rung of the navigation ladder.
type Strategy struct {
	Name     string
	Navigate func(ctx context.Context, target string) error
}

// DefaultLadder escalates push, then assign, then replace.
func DefaultLadder(nav Navigator) []Strategy {
	return []Strategy{
		{Name: "push", Navigate: nav.Push},
		{Name: "assign", Navigate: nav.Assign},
		{Name: "replace", Navigate: nav.Replace},
	}
}

type Outcome struct {
	User     auth.Identity
	Target   string
	Path     string
	Strategy string // empty when no navigation was needed
}

type Options struct {
	StepTimeout  time.Duration
	PollInterval time.Duration
	Ladder       []Strategy
	Limiter      *AttemptLimiter
	State        *FormState
	Now          func() time.Time
	Log          *slog.Logger
}

type Orchestrator struct {
	auth         Authenticator
	nav          Navigator
	ladder       []Strategy
	stepTimeout  time.Duration
	pollInterval time.Duration
	limiter      *AttemptLimiter
	state        *FormState
	now          func() time.Time
	log          *slog.Logger
}

func NewOrchestrator(a Authenticator, nav Navigator, opts Options) *Orchestrator {
	o := &Orchestrator{
		auth:         a,
		nav:          nav,
		ladder:       opts.Ladder,
		stepTimeout:  opts.StepTimeout,
		pollInterval: opts.PollInterval,
		limiter:      opts.Limiter,
		state:        opts.State,
		now:          opts.Now,
		log:          opts.Log,
	}

	if len(o.ladder) == 0 {
		o.ladder = DefaultLadder(nav)
	}
	if o.stepTimeout <= 0 {
		o.stepTimeout = 500 * time.Millisecond
	}
	if o.pollInterval <= 0 {
		o.pollInterval = 25 * time.Millisecond
	}
	if o.limiter == nil {
		o.limiter = NewAttemptLimiter(DefaultMaxFailures, DefaultCooldown)
	}
	if o.state == nil {
		o.state = NewFormState()
	}
	if o.now == nil {
		o.now = time.Now
	}
	o.state.setClock(o.now)
	if o.log == nil {
		o.log = slog.Default()
	}

	return o
}

func (o *Orchestrator) State() *FormState {
	return o.state
}

// Submit runs one login attempt. Credentials are sent at most once; any
// login error ends the attempt and re-enables the form.
func (o *Orchestrator) Submit(ctx context.Context, creds Credentials, callbackURL string) (Outcome, error) {
	now := o.now()
	if blocked, wait := o.limiter.Blocked(now); blocked {
		o.state.block(now.Add(wait), UserMessage(ErrBlocked))
		return Outcome{}, fmt.Errorf("%w: retry in %s", ErrBlocked, wait.Round(time.Second))
	}

	o.state.set(StatusSubmitting, "")

	res, err := o.auth.Login(ctx, creds, callbackURL)
	if err != nil {
		switch {
		case errors.Is(err, ErrThrottled):
			until := o.limiter.BlockFor(o.now(), retryAfter(err))
			o.state.block(until, UserMessage(err))
		case errors.Is(err, ErrInvalidCredentials):
			if until := o.limiter.RecordFailure(o.now()); !until.IsZero() {
				o.state.block(until, UserMessage(ErrBlocked))
			} else {
				o.state.set(StatusFailed, UserMessage(err))
			}
		default:
			o.state.set(StatusFailed, UserMessage(err))
		}
		return Outcome{}, err
	}

	o.limiter.Reset()

	target := o.resolveTarget(res.RedirectTo, callbackURL)
	out := Outcome{User: res.User, Target: target}

	current := o.nav.CurrentPath()
	if auth.SamePath(target, current) {
		// already there; navigating would only reload the same page
		out.Path = current
		o.state.landed(current)
		return out, nil
	}

	o.state.set(StatusNavigating, "")

	for _, s := range o.ladder {
		path, ok := o.step(ctx, s, target)
		if ok {
			out.Path = path
			out.Strategy = s.Name
			o.state.landed(path)
			o.log.DebugContext(ctx, "login navigation landed", "strategy", s.Name, "path", path)
			return out, nil
		}

		if ctx.Err() != nil {
			o.state.set(StatusFailed, UserMessage(ErrNavigation))
			return out, fmt.Errorf("%w: %w", ErrNavigation, ctx.Err())
		}

		o.log.DebugContext(ctx, "login navigation escalating", "strategy", s.Name, "target", target)
	}

	o.state.set(StatusFailed, UserMessage(ErrNavigation))
	return out, ErrNavigation
}

// resolveTarget never yields the login page; Submit separately refuses to
// navigate to the current path.
func (o *Orchestrator) resolveTarget(redirectTo, callbackURL string) string {
	raw := redirectTo
	if raw == "" {
		raw = callbackURL
	}

	target := auth.ResolveCallback(raw, "", auth.DefaultLandingPath)
	if auth.SamePath(target, auth.LoginPath) {
		return auth.DefaultLandingPath
	}
	return target
}

// step runs one strategy and polls until the location leaves the login
// page or the step times out.
func (o *Orchestrator) step(ctx context.Context, s Strategy, target string) (string, bool) {
	stepCtx, cancel := context.WithTimeout(ctx, o.stepTimeout)
	defer cancel()

	if err := s.Navigate(stepCtx, target); err != nil {
		o.log.DebugContext(ctx, "login navigation failed", "strategy", s.Name, "err", err)
	}

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		if p := o.nav.CurrentPath(); !auth.SamePath(p, auth.LoginPath) {
			return p, true
		}

		select {
		case <-stepCtx.Done():
			return "", false
		case <-ticker.C:
		}
	}
}
