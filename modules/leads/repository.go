package leads

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository persists subscribers.
type Repository interface {
	Upsert(ctx context.Context, subscriber *Subscriber) error
	GetByID(ctx context.Context, id uuid.UUID) (*Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
	List(ctx context.Context, limit, offset int) ([]Subscriber, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	SetSyncState(ctx context.Context, id uuid.UUID, synced bool, providerError string) error
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
	mu          sync.RWMutex
	subscribers map[uuid.UUID]Subscriber
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{subscribers: make(map[uuid.UUID]Subscriber)}
}

func (r *MemoryRepository) Upsert(ctx context.Context, subscriber *Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.subscribers {
		if existing.Email == subscriber.Email {
			subscriber.ID = id
			subscriber.CreatedAt = existing.CreatedAt
			r.subscribers[id] = *subscriber
			return nil
		}
	}
	r.subscribers[subscriber.ID] = *subscriber
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subscriber, ok := r.subscribers[id]
	if !ok {
		return nil, ErrSubscriberNotFound
	}
	return &subscriber, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, subscriber := range r.subscribers {
		if subscriber.Email == email {
			return &subscriber, nil
		}
	}
	return nil, ErrSubscriberNotFound
}

func (r *MemoryRepository) List(ctx context.Context, limit, offset int) ([]Subscriber, int, error) {
	limit, offset = normalizePage(limit, offset)

	r.mu.RLock()
	all := make([]Subscriber, 0, len(r.subscribers))
	for _, subscriber := range r.subscribers {
		all = append(all, subscriber)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return []Subscriber{}, total, nil
	}
	end := min(offset+limit, total)
	return all[offset:end], total, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subscribers[id]; !ok {
		return ErrSubscriberNotFound
	}
	delete(r.subscribers, id)
	return nil
}

func (r *MemoryRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subscriber, ok := r.subscribers[id]
	if !ok {
		return ErrSubscriberNotFound
	}
	subscriber.Status = status
	r.subscribers[id] = subscriber
	return nil
}

func (r *MemoryRepository) SetSyncState(ctx context.Context, id uuid.UUID, synced bool, providerError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subscriber, ok := r.subscribers[id]
	if !ok {
		return ErrSubscriberNotFound
	}
	subscriber.ProviderSynced = synced
	subscriber.ProviderError = providerError
	r.subscribers[id] = subscriber
	return nil
}
