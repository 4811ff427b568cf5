package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/geocoder89/sharpexec/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Error codes clients can switch on.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeNotFound        = "not_found"
	CodePayloadTooLarge = "payload_too_large"
	CodeInternal        = "internal_error"
	CodeServer          = "server_error"
)

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes {"error": {...}} and aborts the chain. The request id
// comes from the RequestID middleware, or the inbound header without it.
func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	reqID := ctx.GetString(middlewares.CtxRequestID)
	if reqID == "" {
		reqID = ctx.GetHeader("X-Request-Id")
	}

	ctx.AbortWithStatusJSON(status, errorEnvelope{Error: APIError{
		Code:      code,
		Message:   message,
		RequestID: reqID,
		Details:   details,
	}})
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, CodeInvalidRequest, message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, CodeNotFound, message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondTooLarge(ctx *gin.Context, limit int64) {
	RespondError(ctx, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		fmt.Sprintf("Request body exceeds %d bytes", limit), nil)
}

// RespondInternal logs err against the route and answers 500 with message
// only; the cause never reaches the client.
func RespondInternal(ctx *gin.Context, message string, err error) {
	if err != nil {
		_ = ctx.Error(err)
		slog.ErrorContext(ctx.Request.Context(), message, "route", ctx.FullPath(), "err", err)
	}
	RespondError(ctx, http.StatusInternalServerError, CodeInternal, message, nil)
}

// RespondServerError is the auth-facing 500; it never carries detail.
func RespondServerError(ctx *gin.Context) {
	RespondError(ctx, http.StatusInternalServerError, CodeServer, "An unexpected error occurred", nil)
}
