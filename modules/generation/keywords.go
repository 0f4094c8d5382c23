package generation

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrKeywordNotFound  = errors.New("keyword not found")
	ErrDuplicateKeyword = errors.New("keyword already exists")
	ErrNoKeywords       = errors.New("keyword list is empty")
)

// Keyword is one phrase from the admin-managed generation pool.
type Keyword struct {
	ID         uuid.UUID  `json:"id"`
	Phrase     string     `json:"phrase"`
	UsedCount  int        `json:"used_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// KeywordRepository persists the keyword pool.
type KeywordRepository interface {
	Add(ctx context.Context, keyword *Keyword) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]Keyword, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PickKeyword selects a pseudo-random keyword from the pool.
func PickKeyword(ctx context.Context, repo KeywordRepository) (*Keyword, error) {
	keywords, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}
	picked := keywords[rand.Intn(len(keywords))]
	return &picked, nil
}

// MemoryKeywordRepository is an in-memory KeywordRepository used in tests.
type MemoryKeywordRepository struct {
	mu       sync.RWMutex
	keywords map[uuid.UUID]Keyword
}

func NewMemoryKeywordRepository() *MemoryKeywordRepository {
	return &MemoryKeywordRepository{keywords: make(map[uuid.UUID]Keyword)}
}

func (r *MemoryKeywordRepository) Add(ctx context.Context, keyword *Keyword) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.keywords {
		if existing.Phrase == keyword.Phrase {
			return ErrDuplicateKeyword
		}
	}
	r.keywords[keyword.ID] = *keyword
	return nil
}

func (r *MemoryKeywordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keywords[id]; !ok {
		return ErrKeywordNotFound
	}
	delete(r.keywords, id)
	return nil
}

func (r *MemoryKeywordRepository) List(ctx context.Context) ([]Keyword, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keywords := make([]Keyword, 0, len(r.keywords))
	for _, keyword := range r.keywords {
		keywords = append(keywords, keyword)
	}
	sort.Slice(keywords, func(i, j int) bool {
		return keywords[i].Phrase < keywords[j].Phrase
	})
	return keywords, nil
}

func (r *MemoryKeywordRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keyword, ok := r.keywords[id]
	if !ok {
		return ErrKeywordNotFound
	}
	keyword.UsedCount++
	keyword.LastUsedAt = &at
	r.keywords[id] = keyword
	return nil
}
