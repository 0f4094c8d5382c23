package tracking

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harmonia-labs/harmonia/pkg/pg"
)

// PGRepository persists links and clicks in the tracked_links and
// link_clicks tables.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) CreateLink(ctx context.Context, link *Link) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tracked_links (id, code, target_url, campaign, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		link.ID, link.Code, link.TargetURL, link.Campaign, link.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *PGRepository) GetLinkByCode(ctx context.Context, code string) (*Link, error) {
	var link Link
	err := r.pool.QueryRow(ctx, `
		SELECT id, code, target_url, campaign, created_at
		FROM tracked_links
		WHERE code = $1`, code).
		Scan(&link.ID, &link.Code, &link.TargetURL, &link.Campaign, &link.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *PGRepository) ListLinks(ctx context.Context, limit, offset int) ([]Link, int, error) {
	limit, offset = normalizePage(limit, offset)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM tracked_links`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, code, target_url, campaign, created_at
		FROM tracked_links
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	links := make([]Link, 0, limit)
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.ID, &link.Code, &link.TargetURL, &link.Campaign,
			&link.CreatedAt); err != nil {
			return nil, 0, err
		}
		links = append(links, link)
	}
	return links, total, rows.Err()
}

func (r *PGRepository) RecordClick(ctx context.Context, click *Click) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO link_clicks (id, link_id, ip, device, browser, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		click.ID, click.LinkID, click.IP, click.Device, click.Browser,
		click.Fingerprint, click.CreatedAt)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return ErrLinkNotFound
		}
		return err
	}
	return nil
}

func (r *PGRepository) Stats(ctx context.Context, linkID uuid.UUID) (*Stats, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tracked_links WHERE id = $1)`, linkID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrLinkNotFound
	}

	stats := &Stats{ByDevice: make(map[string]int), ByBrowser: make(map[string]int)}

	err = r.pool.QueryRow(ctx, `
		SELECT count(*), max(created_at)
		FROM link_clicks
		WHERE link_id = $1`, linkID).Scan(&stats.TotalClicks, &stats.LastClickAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT device, browser FROM link_clicks WHERE link_id = $1`, linkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var device, browser string
		if err := rows.Scan(&device, &browser); err != nil {
			return nil, err
		}
		if device != "" {
			stats.ByDevice[device]++
		}
		if browser != "" {
			stats.ByBrowser[browser]++
		}
	}
	return stats, rows.Err()
}
