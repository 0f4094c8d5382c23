package blog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmonia-labs/harmonia/pkg/pg"
)

// PGRepository persists posts in the posts table. Images and schema blocks
// are stored as jsonb.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const postColumns = `id, slug, title, keyword, html, excerpt, cover_url, images, schema_json,
	status, generated, published_at, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, post *Post) error {
	images, schemaJSON, err := marshalJSONB(post)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		post.ID, post.Slug, post.Title, post.Keyword, post.HTML, post.Excerpt,
		post.CoverURL, images, schemaJSON, post.Status, post.Generated,
		post.PublishedAt, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, post *Post) error {
	images, schemaJSON, err := marshalJSONB(post)
	if err != nil {
		return err
	}
	post.UpdatedAt = time.Now()

	tag, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET slug = $2, title = $3, keyword = $4, html = $5, excerpt = $6,
			cover_url = $7, images = $8, schema_json = $9, status = $10,
			published_at = $11, updated_at = $12
		WHERE id = $1`,
		post.ID, post.Slug, post.Title, post.Keyword, post.HTML, post.Excerpt,
		post.CoverURL, images, schemaJSON, post.Status, post.PublishedAt, post.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (r *PGRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

func (r *PGRepository) getOne(ctx context.Context, query string, arg any) (*Post, error) {
	var (
		post       Post
		images     []byte
		schemaJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&post.ID, &post.Slug, &post.Title, &post.Keyword, &post.HTML,
		&post.Excerpt, &post.CoverURL, &images, &schemaJSON, &post.Status,
		&post.Generated, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &post.Images); err != nil {
			return nil, err
		}
	}
	if len(schemaJSON) > 0 {
		if err := json.Unmarshal(schemaJSON, &post.Schema); err != nil {
			return nil, err
		}
	}
	return &post, nil
}

func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Summary, int, error) {
	filter = filter.normalize()

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM posts
		WHERE ($1 = '' OR status = $1)`, filter.Status).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, slug, title, keyword, excerpt, cover_url, status, generated,
			published_at, created_at
		FROM posts
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := make([]Summary, 0, filter.Limit)
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Slug, &s.Title, &s.Keyword, &s.Excerpt,
			&s.CoverURL, &s.Status, &s.Generated, &s.PublishedAt, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}
	return summaries, total, rows.Err()
}

func (r *PGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func marshalJSONB(post *Post) (images []byte, schemaJSON []byte, err error) {
	if len(post.Images) > 0 {
		images, err = json.Marshal(post.Images)
		if err != nil {
			return nil, nil, err
		}
	}
	if len(post.Schema) > 0 {
		schemaJSON, err = json.Marshal(post.Schema)
		if err != nil {
			return nil, nil, err
		}
	}
	return images, schemaJSON, nil
}
