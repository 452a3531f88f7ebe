package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsportal/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

// Create inserts a new user document. Identity fields are normalized to
// lowercase first; the unique indexes on email and username reject the loser
// of a concurrent duplicate registration.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Normalize()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeyField(err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// duplicateKeyField maps a mongo duplicate-key error onto the violated field.
// The index name appears in the server's error message (email_1 / username_1).
func duplicateKeyField(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "username") {
		return ErrDuplicateUsername
	}
	return ErrDuplicateEmail
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// GetByUsername retrieves a user by username (case-insensitive).
func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": strings.ToLower(username)})
}

// GetByIdentifier retrieves a user by either email or username.
func (r *MongoUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.ToLower(identifier)
	return r.findOne(ctx, bson.M{"$or": []bson.M{
		{"email": identifier},
		{"username": identifier},
	}})
}

// GetByID retrieves a user by their ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SetResetOTP stores a pending reset code and its expiry on the user document.
func (r *MongoUserRepository) SetResetOTP(ctx context.Context, id, otp string, expiry time.Time) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"reset_otp":        otp,
			"reset_otp_expiry": expiry,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set reset OTP: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CommitPasswordReset writes the new password digest and removes both reset
// fields in one document update, so the reset code can never outlive the
// password change it authorized.
func (r *MongoUserRepository) CommitPasswordReset(ctx context.Context, id, passwordHash string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"password": passwordHash},
			"$unset": bson.M{"reset_otp": "", "reset_otp_expiry": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to commit password reset: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
