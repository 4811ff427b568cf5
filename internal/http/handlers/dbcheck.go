package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/sharpexec/internal/domain/post"
	"github.com/gin-gonic/gin"
)

type PostStats interface {
	Stats(ctx context.Context) (int, *post.Post, error)
}

type DBCheckHandler struct {
	stats PostStats
	log   *slog.Logger
}

func NewDBCheckHandler(stats PostStats, log *slog.Logger) *DBCheckHandler {
	return &DBCheckHandler{stats: stats, log: log}
}

func (h *DBCheckHandler) Check(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	count, latest, err := h.stats.Stats(cctx)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "db check failed", "err", err)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "Database connection failed",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":              "connected",
		"postCount":           count,
		"latestPublishedPost": latest,
	})
}
