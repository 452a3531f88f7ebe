package services

import (
	"context"
	"log"

	"newsportal/internal/models"
	"newsportal/internal/repositories"
)

// EventPublisher publishes article lifecycle events to the message broker.
// *rabbitmq.Client satisfies it; tests substitute a mock.
type EventPublisher interface {
	PublishNewsEvent(event string, article *models.News) error
}

// NewsService handles business logic related to news articles.
type NewsService struct {
	repo   repositories.NewsRepository
	events EventPublisher // may be nil when no broker is configured
}

// NewNewsService creates a new NewsService.
func NewNewsService(repo repositories.NewsRepository, events EventPublisher) *NewsService {
	return &NewsService{
		repo:   repo,
		events: events,
	}
}

// ListNews retrieves articles matching the filter, newest published first.
func (s *NewsService) ListNews(ctx context.Context, filter models.NewsFilter) ([]models.News, error) {
	return s.repo.List(ctx, filter)
}

// GetNewsByID retrieves a single article by its ID.
func (s *NewsService) GetNewsByID(ctx context.Context, id string) (*models.News, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateNews fills defaults, persists the article and publishes a
// news.created event. Publishing is best-effort: a broker failure is logged
// and never fails the request.
func (s *NewsService) CreateNews(ctx context.Context, news *models.News) error {
	news.ApplyDefaults()
	if err := s.repo.Create(ctx, news); err != nil {
		return err
	}
	s.publish("news.created", news)
	return nil
}

// UpdateNews replaces an existing article and publishes a news.updated event.
func (s *NewsService) UpdateNews(ctx context.Context, news *models.News) error {
	news.ApplyDefaults()
	if err := s.repo.Update(ctx, news); err != nil {
		return err
	}
	s.publish("news.updated", news)
	return nil
}

// DeleteNews removes an article and publishes a news.deleted event.
func (s *NewsService) DeleteNews(ctx context.Context, id string) error {
	news, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish("news.deleted", news)
	return nil
}

func (s *NewsService) publish(event string, news *models.News) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishNewsEvent(event, news); err != nil {
		log.Printf("Warning: failed to publish %s event for article %s: %v", event, news.ID, err)
	}
}
