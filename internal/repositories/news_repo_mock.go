package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"newsportal/internal/models"

	"github.com/google/uuid"
)

// MockNewsRepository is an in-memory implementation of NewsRepository.
type MockNewsRepository struct {
	news map[string]models.News
	mu   sync.RWMutex
}

// NewMockNewsRepository creates a new instance of MockNewsRepository.
func NewMockNewsRepository() *MockNewsRepository {
	return &MockNewsRepository{
		news: make(map[string]models.News),
	}
}

// List returns matching articles, newest published first.
func (r *MockNewsRepository) List(ctx context.Context, filter models.NewsFilter) ([]models.News, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.News, 0, len(r.news))
	for _, n := range r.news {
		if filter.Language != "" && n.Language != filter.Language {
			continue
		}
		if filter.Category != "" && filter.Category != "all" && n.Category != filter.Category {
			continue
		}
		matched = append(matched, n)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PublishedDate.After(matched[j].PublishedDate)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = models.DefaultNewsLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// GetByID returns an article by its ID.
func (r *MockNewsRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	news, ok := r.news[id]
	if !ok {
		return nil, ErrNewsNotFound
	}
	return &news, nil
}

// Create adds a new article.
func (r *MockNewsRepository) Create(ctx context.Context, news *models.News) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if news.ID == "" {
		news.ID = uuid.New().String()
	}
	now := time.Now()
	if news.CreatedAt.IsZero() {
		news.CreatedAt = now
	}
	news.UpdatedAt = now
	r.news[news.ID] = *news
	return nil
}

// Update replaces an existing article.
func (r *MockNewsRepository) Update(ctx context.Context, news *models.News) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.news[news.ID]; !ok {
		return ErrNewsNotFound
	}
	news.UpdatedAt = time.Now()
	r.news[news.ID] = *news
	return nil
}

// Delete removes an article by its ID.
func (r *MockNewsRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.news[id]; !ok {
		return ErrNewsNotFound
	}
	delete(r.news, id)
	return nil
}
