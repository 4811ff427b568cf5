package post

import (
	"errors"
	"time"
)

type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content,omitempty"`
	Published     bool      `json:"published"`
	FeaturedImage *string   `json:"featuredImage,omitempty"`
	AuthorID      string    `json:"authorId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// WithAuthor is the admin listing shape.
type WithAuthor struct {
	Post
	Author Author `json:"author"`
}

type ListFilter struct {
	PublishedOnly bool
	Limit         int
	Offset        int
}

var (
	ErrNotFound  = errors.New("post not found")
	ErrSlugTaken = errors.New("slug already in use")
)

type CreatePostRequest struct {
	Title         string  `json:"title" binding:"required,min=1,max=200"`
	Slug          string  `json:"slug" binding:"required,max=200,slug"`
	Excerpt       string  `json:"excerpt" binding:"omitempty,max=500"`
	Content       string  `json:"content" binding:"required"`
	Published     bool    `json:"published"`
	FeaturedImage *string `json:"featuredImage" binding:"omitempty,max=2048"`
}

// a full update payload, same shape as create
type UpdatePostRequest struct {
	Title         string  `json:"title" binding:"required,min=1,max=200"`
	Slug          string  `json:"slug" binding:"required,max=200,slug"`
	Excerpt       string  `json:"excerpt" binding:"omitempty,max=500"`
	Content       string  `json:"content" binding:"required"`
	Published     bool    `json:"published"`
	FeaturedImage *string `json:"featuredImage" binding:"omitempty,max=2048"`
}
