package quiz

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists quiz results.
type Repository interface {
	Create(ctx context.Context, result *Result) error
	List(ctx context.Context, limit, offset int) ([]Result, int, error)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// PGRepository stores quiz results in the quiz_results table, answers as
// jsonb.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, result *Result) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO quiz_results (id, email, answers, score, profile, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		result.ID, result.Email, answers, result.Score, result.Profile, result.CreatedAt)
	return err
}

func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Result, int, error) {
	limit, offset = normalizePage(limit, offset)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM quiz_results`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, answers, score, profile, created_at
		FROM quiz_results
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := make([]Result, 0, limit)
	for rows.Next() {
		var (
			result  Result
			answers []byte
		)
		if err := rows.Scan(&result.ID, &result.Email, &answers, &result.Score,
			&result.Profile, &result.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(answers) > 0 {
			if err := json.Unmarshal(answers, &result.Answers); err != nil {
				return nil, 0, err
			}
		}
		results = append(results, result)
	}
	return results, total, rows.Err()
}

// MemoryRepository is an in-memory Repository used in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	results []Result
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(ctx context.Context, result *Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, *result)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context, limit, offset int) ([]Result, int, error) {
	limit, offset = normalizePage(limit, offset)

	r.mu.RLock()
	all := make([]Result, len(r.results))
	copy(all, r.results)
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []Result{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}
