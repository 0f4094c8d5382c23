package blog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ListFilter narrows and pages post listings.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

func (f ListFilter) normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Repository is the post persistence contract.
type Repository interface {
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, filter ListFilter) ([]Summary, int, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// MemoryRepository is an in-memory Repository used in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{posts: make(map[uuid.UUID]Post)}
}

func (r *MemoryRepository) Create(ctx context.Context, post *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.posts {
		if p.Slug == post.Slug {
			return ErrDuplicateSlug
		}
	}
	r.posts[post.ID] = *post
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, post *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[post.ID]; !ok {
		return ErrPostNotFound
	}
	r.posts[post.ID] = *post
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return &post, nil
}

func (r *MemoryRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, post := range r.posts {
		if post.Slug == slug {
			return &post, nil
		}
	}
	return nil, ErrPostNotFound
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]Summary, int, error) {
	filter = filter.normalize()

	r.mu.RLock()
	matched := make([]Post, 0, len(r.posts))
	for _, post := range r.posts {
		if filter.Status != "" && post.Status != strings.ToLower(filter.Status) {
			continue
		}
		matched = append(matched, post)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []Summary{}, total, nil
	}
	end := min(filter.Offset+filter.Limit, total)

	summaries := make([]Summary, 0, end-filter.Offset)
	for _, post := range matched[filter.Offset:end] {
		summaries = append(summaries, post.summary())
	}
	return summaries, total, nil
}

func (r *MemoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, post := range r.posts {
		if post.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}
