package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/sharpexec/internal/cache"
	"github.com/geocoder89/sharpexec/internal/domain/post"
	"github.com/geocoder89/sharpexec/internal/http/middlewares"
	"github.com/geocoder89/sharpexec/internal/utils"
	"github.com/gin-gonic/gin"
)

type PostsStore interface {
	Create(ctx context.Context, req post.CreatePostRequest, authorID string) (post.Post, error)
	GetByID(ctx context.Context, id string) (post.Post, error)
	ListWithAuthors(ctx context.Context) ([]post.WithAuthor, error)
	Update(ctx context.Context, id string, req post.UpdatePostRequest) (post.Post, error)
	Delete(ctx context.Context, id string) error
}

type PostsHandler struct {
	repo  PostsStore
	cache *cache.Cache
}

func NewPostsHandler(repo PostsStore, c *cache.Cache) *PostsHandler {
	return &PostsHandler{repo: repo, cache: c}
}

// public payloads change whenever a post does
func (h *PostsHandler) invalidate() {
	if h.cache != nil {
		h.cache.DeletePrefix(utils.PostsCachePrefix)
	}
}

func (h *PostsHandler) CreatePost(ctx *gin.Context) {
	authorID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req post.CreatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.repo.Create(ctx.Request.Context(), req, authorID)
	if err != nil {
		if errors.Is(err, post.ErrSlugTaken) {
			RespondConflict(ctx, "slug_taken", "A post with this slug already exists")
			return
		}
		RespondInternal(ctx, "Could not create post", err)
		return
	}

	h.invalidate()
	ctx.JSON(http.StatusCreated, p)
}

func (h *PostsHandler) ListPosts(ctx *gin.Context) {
	posts, err := h.repo.ListWithAuthors(ctx.Request.Context())
	if err != nil {
		RespondInternal(ctx, "Could not list posts", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": posts,
		"count": len(posts),
	})
}

func (h *PostsHandler) GetPostByID(ctx *gin.Context) {
	p, err := h.repo.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not fetch post", err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *PostsHandler) UpdatePost(ctx *gin.Context) {
	var req post.UpdatePostRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.repo.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, post.ErrNotFound):
			RespondNotFound(ctx, "Post not found")
		case errors.Is(err, post.ErrSlugTaken):
			RespondConflict(ctx, "slug_taken", "A post with this slug already exists")
		default:
			RespondInternal(ctx, "Could not update post", err)
		}
		return
	}

	h.invalidate()
	ctx.JSON(http.StatusOK, p)
}

func (h *PostsHandler) DeletePost(ctx *gin.Context) {
	err := h.repo.Delete(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not delete post", err)
		return
	}

	h.invalidate()
	ctx.Status(http.StatusNoContent)
}
