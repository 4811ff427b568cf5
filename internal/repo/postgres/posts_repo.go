package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/sharpexec/internal/domain/post"
	"github.com/geocoder89/sharpexec/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *PostsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const postColumns = `id, title, slug, excerpt, content, published, featured_image, author_id, created_at, updated_at`

func scanPost(row pgx.Row, p *post.Post) error {
	return row.Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Excerpt,
		&p.Content,
		&p.Published,
		&p.FeaturedImage,
		&p.AuthorID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PostsRepo) Create(ctx context.Context, req post.CreatePostRequest, authorID string) (post.Post, error) {
	p := post.NewFromCreateRequest(req, authorID)

	err := r.observe("posts.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO posts (`+postColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.Published, p.FeaturedImage, p.AuthorID, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return post.Post{}, post.ErrSlugTaken
		}
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id string) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get_by_id", func() error {
		return scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return p, nil
}

// GetPublishedBySlug never returns drafts.
func (r *PostsRepo) GetPublishedBySlug(ctx context.Context, slug string) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.get_published_by_slug", func() error {
		return scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1 AND published = TRUE`, slug), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) List(ctx context.Context, filter post.ListFilter) ([]post.Post, int, error) {
	query := `SELECT ` + postColumns + `, COUNT(*) OVER() AS total FROM posts`

	var args []interface{}
	if filter.PublishedOnly {
		query += ` WHERE published = TRUE`
	}

	// stable ordering for pagination
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	output := make([]post.Post, 0, filter.Limit)
	total := 0

	err := r.observe("posts.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p post.Post
			var t int

			err = rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Published, &p.FeaturedImage, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt, &t)
			if err != nil {
				return err
			}

			total = t
			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

// ListWithAuthors is the admin listing with author name and email joined in.
func (r *PostsRepo) ListWithAuthors(ctx context.Context) ([]post.WithAuthor, error) {
	output := make([]post.WithAuthor, 0)

	err := r.observe("posts.list_with_authors", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT p.id, p.title, p.slug, p.excerpt, p.published, p.featured_image, p.author_id,
				p.created_at, p.updated_at, u.name, u.email
			FROM posts p
			JOIN users u ON u.id = p.author_id
			ORDER BY p.created_at DESC, p.id DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p post.WithAuthor

			err = rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Published, &p.FeaturedImage, &p.AuthorID,
				&p.CreatedAt, &p.UpdatedAt, &p.Author.Name, &p.Author.Email)
			if err != nil {
				return err
			}

			output = append(output, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *PostsRepo) Update(ctx context.Context, id string, req post.UpdatePostRequest) (post.Post, error) {
	var p post.Post

	err := r.observe("posts.update", func() error {
		return scanPost(r.pool.QueryRow(
			ctx,
			`UPDATE posts
				SET title = $2,
					slug = $3,
					excerpt = $4,
					content = $5,
					published = $6,
					featured_image = $7,
					updated_at = NOW()
			WHERE id = $1
			RETURNING `+postColumns,
			id,
			req.Title,
			req.Slug,
			req.Excerpt,
			req.Content,
			req.Published,
			req.FeaturedImage,
		), &p)
	})

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		if isUniqueViolation(err) {
			return post.Post{}, post.ErrSlugTaken
		}
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("posts.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return post.ErrNotFound
	}

	return nil
}

// Stats backs the db-check endpoint.
func (r *PostsRepo) Stats(ctx context.Context) (count int, latest *post.Post, err error) {
	err = r.observe("posts.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	})
	if err != nil {
		return 0, nil, err
	}

	var p post.Post
	err = r.observe("posts.latest_published", func() error {
		return scanPost(r.pool.QueryRow(ctx,
			`SELECT `+postColumns+` FROM posts WHERE published = TRUE ORDER BY created_at DESC LIMIT 1`), &p)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return count, nil, nil
		}
		return 0, nil, err
	}

	return count, &p, nil
}
