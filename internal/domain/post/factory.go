package post

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func NewFromCreateRequest(req CreatePostRequest, authorID string) Post {
	now := time.Now().UTC()

	return Post{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		Published:     req.Published,
		FeaturedImage: req.FeaturedImage,
		AuthorID:      authorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
