package observability

import (
	"io"
	"log/slog"
	"os"
)

func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// never let a credential reach the log stream
			switch a.Key {
			case "password", "secret", "token", "session_secret":
				return slog.String(a.Key, "[redacted]")
			}
			return a
		},
	})

	return slog.New(NewContextHandler(handler)).With("service", "sharpexec")
}
