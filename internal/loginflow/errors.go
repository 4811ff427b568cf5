package loginflow

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrThrottled          = errors.New("too many login attempts")
	ErrServer             = errors.New("login service error")

	// ErrBlocked is the advisory client-side cool-down after repeated failures.
	ErrBlocked = errors.New("login temporarily blocked")

	// ErrNavigation means the session was issued but no strategy left the login page.
	ErrNavigation = errors.New("could not leave the login page")
)

// ThrottledError is a server-side 429. RetryAfter is zero when the server
// did not say.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	if e.RetryAfter <= 0 {
		return ErrThrottled.Error()
	}
	return fmt.Sprintf("%s: retry in %s", ErrThrottled, e.RetryAfter)
}

func (e *ThrottledError) Unwrap() error { return ErrThrottled }

func retryAfter(err error) time.Duration {
	var te *ThrottledError
	if errors.As(err, &te) {
		return te.RetryAfter
	}
	return 0
}

// UserMessage maps an Orchestrator error to the one message shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrBlocked), errors.Is(err, ErrThrottled):
		return "Too many failed attempts. Please try again later."
	case errors.Is(err, ErrNavigation):
		return "Signed in, but the dashboard did not open. Please reload the page."
	default:
		return "An unexpected error occurred"
	}
}
