package leads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmonia-labs/harmonia/pkg/pg"
)

// PGRepository persists subscribers in the subscribers table.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const subscriberColumns = `id, email, name, first_name, last_name, source, tags, status,
	provider_synced, provider_error, created_at, updated_at`

// Upsert inserts a subscriber or refreshes an existing row with the same
// email. Re-capturing an unsubscribed address flips it back to subscribed,
// matching double-opt-in-less list semantics.
func (r *PGRepository) Upsert(ctx context.Context, subscriber *Subscriber) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO subscribers (`+subscriberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (email) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), subscribers.name),
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), subscribers.first_name),
			last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), subscribers.last_name),
			source = COALESCE(NULLIF(EXCLUDED.source, ''), subscribers.source),
			tags = EXCLUDED.tags,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		subscriber.ID, subscriber.Email, subscriber.Name, subscriber.FirstName,
		subscriber.LastName, subscriber.Source, subscriber.Tags, subscriber.Status,
		subscriber.ProviderSynced, subscriber.ProviderError,
		subscriber.CreatedAt, subscriber.UpdatedAt).
		Scan(&subscriber.ID, &subscriber.CreatedAt)
	return err
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Subscriber, error) {
	return r.getOne(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE id = $1`, id)
}

func (r *PGRepository) GetByEmail(ctx context.Context, email string) (*Subscriber, error) {
	return r.getOne(ctx, `SELECT `+subscriberColumns+` FROM subscribers WHERE email = $1`, email)
}

func (r *PGRepository) getOne(ctx context.Context, query string, arg any) (*Subscriber, error) {
	var s Subscriber
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.Email, &s.Name, &s.FirstName, &s.LastName, &s.Source, &s.Tags,
		&s.Status, &s.ProviderSynced, &s.ProviderError, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSubscriberNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Subscriber, int, error) {
	limit, offset = normalizePage(limit, offset)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM subscribers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+subscriberColumns+`
		FROM subscribers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	subscribers := make([]Subscriber, 0, limit)
	for rows.Next() {
		var s Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.FirstName, &s.LastName,
			&s.Source, &s.Tags, &s.Status, &s.ProviderSynced, &s.ProviderError,
			&s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, total, rows.Err()
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscribers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func (r *PGRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subscribers SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func (r *PGRepository) SetSyncState(ctx context.Context, id uuid.UUID, synced bool, providerError string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subscribers
		SET provider_synced = $2, provider_error = $3, updated_at = $4
		WHERE id = $1`,
		id, synced, providerError, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}
