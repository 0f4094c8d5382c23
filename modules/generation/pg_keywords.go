package generation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmonia-labs/harmonia/pkg/pg"
)

// PGKeywordRepository persists the keyword pool in the keywords table.
type PGKeywordRepository struct {
	pool *pgxpool.Pool
}

func NewPGKeywordRepository(pool *pgxpool.Pool) *PGKeywordRepository {
	return &PGKeywordRepository{pool: pool}
}

func (r *PGKeywordRepository) Add(ctx context.Context, keyword *Keyword) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO keywords (id, phrase, used_count, last_used_at)
		VALUES ($1, $2, $3, $4)`,
		keyword.ID, keyword.Phrase, keyword.UsedCount, keyword.LastUsedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateKeyword
		}
		return err
	}
	return nil
}

func (r *PGKeywordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM keywords WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}

func (r *PGKeywordRepository) List(ctx context.Context) ([]Keyword, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, phrase, used_count, last_used_at
		FROM keywords
		ORDER BY phrase`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keywords []Keyword
	for rows.Next() {
		var keyword Keyword
		if err := rows.Scan(&keyword.ID, &keyword.Phrase, &keyword.UsedCount,
			&keyword.LastUsedAt); err != nil {
			return nil, err
		}
		keywords = append(keywords, keyword)
	}
	return keywords, rows.Err()
}

func (r *PGKeywordRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE keywords
		SET used_count = used_count + 1, last_used_at = $2
		WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrKeywordNotFound
	}
	return nil
}
