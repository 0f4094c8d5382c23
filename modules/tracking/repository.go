package tracking

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository persists tracked links and their clicks.
type Repository interface {
	CreateLink(ctx context.Context, link *Link) error
	GetLinkByCode(ctx context.Context, code string) (*Link, error)
	ListLinks(ctx context.Context, limit, offset int) ([]Link, int, error)
	RecordClick(ctx context.Context, click *Click) error
	Stats(ctx context.Context, linkID uuid.UUID) (*Stats, error)
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

// MemoryRepository is an in-memory Repository used in tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	links  map[uuid.UUID]Link
	clicks []Click
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{links: make(map[uuid.UUID]Link)}
}

func (r *MemoryRepository) CreateLink(ctx context.Context, link *Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.links {
		if existing.Code == link.Code {
			return ErrDuplicateCode
		}
	}
	r.links[link.ID] = *link
	return nil
}

func (r *MemoryRepository) GetLinkByCode(ctx context.Context, code string) (*Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, link := range r.links {
		if link.Code == code {
			return &link, nil
		}
	}
	return nil, ErrLinkNotFound
}

func (r *MemoryRepository) ListLinks(ctx context.Context, limit, offset int) ([]Link, int, error) {
	limit, offset = normalizePage(limit, offset)

	r.mu.RLock()
	all := make([]Link, 0, len(r.links))
	for _, link := range r.links {
		all = append(all, link)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []Link{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (r *MemoryRepository) RecordClick(ctx context.Context, click *Click) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[click.LinkID]; !ok {
		return ErrLinkNotFound
	}
	r.clicks = append(r.clicks, *click)
	return nil
}

func (r *MemoryRepository) Stats(ctx context.Context, linkID uuid.UUID) (*Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.links[linkID]; !ok {
		return nil, ErrLinkNotFound
	}

	stats := &Stats{ByDevice: make(map[string]int), ByBrowser: make(map[string]int)}
	for _, click := range r.clicks {
		if click.LinkID != linkID {
			continue
		}
		stats.TotalClicks++
		if click.Device != "" {
			stats.ByDevice[click.Device]++
		}
		if click.Browser != "" {
			stats.ByBrowser[click.Browser]++
		}
		if stats.LastClickAt == nil || click.CreatedAt.After(*stats.LastClickAt) {
			at := click.CreatedAt
			stats.LastClickAt = &at
		}
	}
	return stats, nil
}
