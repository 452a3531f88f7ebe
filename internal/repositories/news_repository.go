package repositories

import (
	"context"
	"errors"

	"newsportal/internal/models"
)

// ErrNewsNotFound is returned when no article exists for the given ID.
var ErrNewsNotFound = errors.New("news article not found")

// NewsRepository defines the interface for news article data access.
type NewsRepository interface {
	// List returns articles matching the filter, newest published first.
	List(ctx context.Context, filter models.NewsFilter) ([]models.News, error)
	GetByID(ctx context.Context, id string) (*models.News, error)
	Create(ctx context.Context, news *models.News) error
	// Update replaces the stored article with the given one, keyed by its ID.
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, id string) error
}
