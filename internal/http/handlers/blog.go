package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/geocoder89/sharpexec/internal/cache"
	"github.com/geocoder89/sharpexec/internal/domain/post"
	"github.com/geocoder89/sharpexec/internal/utils"
	"github.com/gin-gonic/gin"
)

type PublishedPosts interface {
	List(ctx context.Context, filter post.ListFilter) ([]post.Post, int, error)
	GetPublishedBySlug(ctx context.Context, slug string) (post.Post, error)
}

type BlogHandler struct {
	repo  PublishedPosts
	cache *cache.Cache
}

// browsers may reuse a public response for this long before revalidating
const blogMaxAge = 30 * time.Second

func NewBlogHandler(repo PublishedPosts, c *cache.Cache) *BlogHandler {
	if c == nil {
		c = cache.New(0)
	}
	return &BlogHandler{repo: repo, cache: c}
}

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

type postsPage struct {
	Items  []post.Post `json:"items"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func queryInt(ctx *gin.Context, key string, fallback int) (int, bool) {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (h *BlogHandler) ListPublished(ctx *gin.Context) {
	limit, ok := queryInt(ctx, "limit", defaultPageSize)
	if !ok || limit == 0 {
		RespondBadRequest(ctx, "Invalid limit", gin.H{"limit": "must be a positive integer"})
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset, ok := queryInt(ctx, "offset", 0)
	if !ok {
		RespondBadRequest(ctx, "Invalid offset", gin.H{"offset": "must be a non-negative integer"})
		return
	}

	key := utils.BuildPostsListCacheKey(limit, offset)
	gen := h.cache.Generation()
	if h.serveCached(ctx, key) {
		return
	}

	items, total, err := h.repo.List(ctx.Request.Context(), post.ListFilter{
		PublishedOnly: true,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		RespondInternal(ctx, "Could not list posts", err)
		return
	}

	h.store(ctx, key, gen, postsPage{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *BlogHandler) GetBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")
	if !post.ValidSlug(slug) {
		RespondNotFound(ctx, "Post not found")
		return
	}

	key := utils.BuildPostCacheKey(slug)
	gen := h.cache.Generation()
	if h.serveCached(ctx, key) {
		return
	}

	p, err := h.repo.GetPublishedBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, post.ErrNotFound) {
			RespondNotFound(ctx, "Post not found")
			return
		}
		RespondInternal(ctx, "Could not fetch post", err)
		return
	}

	h.store(ctx, key, gen, p)
}

func (h *BlogHandler) serveCached(ctx *gin.Context, key string) bool {
	v, hit := h.cache.Get(key)
	if !hit {
		return false
	}

	r, ok := v.(renderedJSON)
	if !ok {
		return false
	}

	writeCacheable(ctx, r, blogMaxAge)
	return true
}

// store renders payload and caches it unless an admin write invalidated the
// cache after gen was read.
func (h *BlogHandler) store(ctx *gin.Context, key string, gen uint64, payload any) {
	r, err := renderJSON(payload)
	if err != nil {
		RespondInternal(ctx, "Could not encode response", err)
		return
	}

	h.cache.SetIfGeneration(key, r, gen)
	writeCacheable(ctx, r, blogMaxAge)
}
