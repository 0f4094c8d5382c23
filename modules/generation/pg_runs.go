package generation

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRunRepository persists run history in the generation_runs table.
type PGRunRepository struct {
	pool *pgxpool.Pool
}

func NewPGRunRepository(pool *pgxpool.Pool) *PGRunRepository {
	return &PGRunRepository{pool: pool}
}

func (r *PGRunRepository) Create(ctx context.Context, run *Run) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO generation_runs (id, keyword, post_id, status, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Keyword, run.PostID, run.Status, run.Error,
		run.StartedAt, run.FinishedAt)
	return err
}

func (r *PGRunRepository) Update(ctx context.Context, run *Run) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE generation_runs
		SET post_id = $2, status = $3, error = $4, finished_at = $5
		WHERE id = $1`,
		run.ID, run.PostID, run.Status, run.Error, run.FinishedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PGRunRepository) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, keyword, post_id, status, error, started_at, finished_at
		FROM generation_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Keyword, &run.PostID, &run.Status,
			&run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
