package mongodb

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client wraps the MongoDB connection for the portal's database.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// Config holds MongoDB connection details.
type Config struct {
	URI      string
	Database string
}

// NewClient connects to MongoDB, verifies the connection with a ping, and
// creates the unique indexes the registration flow relies on. Two concurrent
// registrations with the same email or username are serialized here, not in
// application code.
func NewClient(cfg Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	c := &Client{
		client:   client,
		database: client.Database(cfg.Database),
	}
	if err := c.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	log.Printf("MongoDB connected, database %q ready", cfg.Database)
	return c, nil
}

// Database returns the portal database handle.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Close disconnects from MongoDB.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

func (c *Client) ensureIndexes(ctx context.Context) error {
	users := c.database.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_1"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	news := c.database.Collection("news")
	_, err = news.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "published_date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create news indexes: %w", err)
	}
	return nil
}
