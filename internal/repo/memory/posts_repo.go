package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/sharpexec/internal/domain/post"
)

type PostsRepo struct {
	mu    sync.RWMutex
	items map[string]post.Post
}

func NewPostsRepo() *PostsRepo {
	return &PostsRepo{
		items: make(map[string]post.Post),
	}
}

func (r *PostsRepo) slugTaken(slug, exceptID string) bool {
	for id, p := range r.items {
		if p.Slug == slug && id != exceptID {
			return true
		}
	}
	return false
}

func (r *PostsRepo) Create(_ context.Context, req post.CreatePostRequest, authorID string) (post.Post, error) {
	p := post.NewFromCreateRequest(req, authorID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(p.Slug, "") {
		return post.Post{}, post.ErrSlugTaken
	}
	r.items[p.ID] = p

	return p, nil
}

func (r *PostsRepo) GetByID(_ context.Context, id string) (post.Post, error) {
	r.mu.RLock()
	p, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	return p, nil
}

func (r *PostsRepo) GetPublishedBySlug(_ context.Context, slug string) (post.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if p.Slug == slug && p.Published {
			return p, nil
		}
	}
	return post.Post{}, post.ErrNotFound
}

// sorted returns posts newest first, ties broken by id.
func (r *PostsRepo) sorted(publishedOnly bool) []post.Post {
	out := make([]post.Post, 0, len(r.items))
	for _, p := range r.items {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *PostsRepo) List(_ context.Context, filter post.ListFilter) ([]post.Post, int, error) {
	r.mu.RLock()
	all := r.sorted(filter.PublishedOnly)
	r.mu.RUnlock()

	total := len(all)
	if filter.Offset >= total {
		return []post.Post{}, total, nil
	}

	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < total {
		end = filter.Offset + filter.Limit
	}

	return all[filter.Offset:end], total, nil
}

// ListWithAuthors has no users table to join, so authors stay empty.
func (r *PostsRepo) ListWithAuthors(_ context.Context) ([]post.WithAuthor, error) {
	r.mu.RLock()
	all := r.sorted(false)
	r.mu.RUnlock()

	out := make([]post.WithAuthor, 0, len(all))
	for _, p := range all {
		out = append(out, post.WithAuthor{Post: p})
	}
	return out, nil
}

func (r *PostsRepo) Update(_ context.Context, id string, req post.UpdatePostRequest) (post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}
	if r.slugTaken(req.Slug, id) {
		return post.Post{}, post.ErrSlugTaken
	}

	p.Title = req.Title
	p.Slug = req.Slug
	p.Excerpt = req.Excerpt
	p.Content = req.Content
	p.Published = req.Published
	p.FeaturedImage = req.FeaturedImage
	p.UpdatedAt = time.Now().UTC()

	r.items[id] = p
	return p, nil
}

func (r *PostsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return post.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *PostsRepo) Stats(_ context.Context) (int, *post.Post, error) {
	r.mu.RLock()
	count := len(r.items)
	published := r.sorted(true)
	r.mu.RUnlock()

	if len(published) == 0 {
		return count, nil, nil
	}
	latest := published[0]
	return count, &latest, nil
}
