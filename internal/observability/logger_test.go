package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/geocoder89/sharpexec/internal/actorctx"
	"github.com/geocoder89/sharpexec/internal/auth"
	"github.com/geocoder89/sharpexec/internal/domain/user"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestLogger_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.InfoContext(ctx, "login ok")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "sharpexec", rec["service"])
	require.Equal(t, sc.TraceID().String(), rec["trace_id"])
	require.Equal(t, sc.SpanID().String(), rec["span_id"])
}

func TestLogger_DebugOnlyInDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Debug("hidden")
	require.Zero(t, buf.Len())

	newLogger(&buf, "dev").Debug("shown")
	require.NotZero(t, buf.Len())
}

func TestLogger_AddsSignedInUser(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	ctx := actorctx.WithIdentity(context.Background(), auth.Identity{ID: "u-42", Role: user.RoleAdmin})
	log.InfoContext(ctx, "http_request")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "u-42", rec["user_id"])
	require.Equal(t, "ADMIN", rec["user_role"])
	require.NotContains(t, rec, "trace_id")
}

func TestLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Info("login", "email", "a@b.test", "password", "hunter2")

	require.NotContains(t, buf.String(), "hunter2")
	require.Contains(t, buf.String(), "a@b.test")
}
