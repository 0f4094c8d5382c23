package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStorage persists audit events into the audit_events table.
type PGStorage struct {
	pool *pgxpool.Pool
}

// NewPGStorage creates a Postgres-backed audit storage.
func NewPGStorage(pool *pgxpool.Pool) *PGStorage {
	return &PGStorage{pool: pool}
}

func (s *PGStorage) Store(ctx context.Context, event Event) error {
	var metadata []byte
	if len(event.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return errors.Join(ErrStorageFailed, err)
		}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events (id, actor, action, entity, entity_id, result, error, request_id, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		event.ID,
		event.Actor,
		event.Action,
		event.Entity,
		event.EntityID,
		string(event.Result),
		event.Error,
		event.RequestID,
		event.IP,
		metadata,
		event.CreatedAt,
	)
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}
