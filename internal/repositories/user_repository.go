package repositories

import (
	"context"
	"errors"
	"time"

	"newsportal/internal/models"
)

// Storage-layer errors. Handlers and services branch on these with errors.Is.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

// UserRepository defines the interface for user data access.
//
// The write paths are deliberately narrow: the only operation that may touch
// the password digest is CommitPasswordReset, so a password is rehashed
// exactly when it changes and never as a side effect of another update.
type UserRepository interface {
	// Create persists a new user. Email and username are stored lowercased;
	// a uniqueness collision on either yields ErrDuplicateEmail or
	// ErrDuplicateUsername. The storage layer is the authority here: two
	// concurrent registrations race on its unique constraints, not on any
	// handler-side pre-check.
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByIdentifier looks a user up by email or username, case-insensitively.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// SetResetOTP stores a pending reset code and its expiry, overwriting any
	// previous pending code.
	SetResetOTP(ctx context.Context, id, otp string, expiry time.Time) error
	// CommitPasswordReset atomically writes the new password digest and
	// clears both reset-code fields in a single update.
	CommitPasswordReset(ctx context.Context, id, passwordHash string) error
}
