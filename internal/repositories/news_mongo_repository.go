package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"newsportal/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNewsRepository is a MongoDB implementation of NewsRepository.
type MongoNewsRepository struct {
	collection *mongo.Collection
}

// NewMongoNewsRepository creates a new instance of MongoNewsRepository.
func NewMongoNewsRepository(db *mongo.Database) *MongoNewsRepository {
	return &MongoNewsRepository{
		collection: db.Collection("news"),
	}
}

// List returns articles matching the filter, sorted by published date
// descending.
func (r *MongoNewsRepository) List(ctx context.Context, filter models.NewsFilter) ([]models.News, error) {
	query := bson.M{}
	if filter.Language != "" {
		query["language"] = filter.Language
	}
	if filter.Category != "" && filter.Category != "all" {
		query["category"] = filter.Category
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = models.DefaultNewsLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_date", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list news: %w", err)
	}
	defer cursor.Close(ctx)

	news := make([]models.News, 0, limit)
	if err := cursor.All(ctx, &news); err != nil {
		return nil, fmt.Errorf("failed to decode news: %w", err)
	}
	return news, nil
}

// GetByID retrieves a single article by its ID.
func (r *MongoNewsRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	var news models.News
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&news); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to get news by ID %s: %w", id, err)
	}
	return &news, nil
}

// Create inserts a new article document.
func (r *MongoNewsRepository) Create(ctx context.Context, news *models.News) error {
	if news.ID == "" {
		news.ID = uuid.New().String()
	}
	now := time.Now()
	if news.CreatedAt.IsZero() {
		news.CreatedAt = now
	}
	news.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, news); err != nil {
		return fmt.Errorf("failed to create news: %w", err)
	}
	return nil
}

// Update replaces the stored article, refreshing its updated timestamp.
func (r *MongoNewsRepository) Update(ctx context.Context, news *models.News) error {
	news.UpdatedAt = time.Now()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": news.ID}, news)
	if err != nil {
		return fmt.Errorf("failed to update news %s: %w", news.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNewsNotFound
	}
	return nil
}

// Delete removes an article by its ID.
func (r *MongoNewsRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete news %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNewsNotFound
	}
	return nil
}
