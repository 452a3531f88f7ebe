package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"newsportal/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository. It
// enforces the same contract as the MongoDB implementation (lowercase
// normalization, uniqueness on email and username) so tests and local runs
// exercise the real storage semantics.
type MockUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user, rejecting duplicate emails and usernames.
func (r *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Normalize()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
		if existing.Username == user.Username {
			return ErrDuplicateUsername
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.ID] = *user
	return nil
}

// GetByEmail returns the user with the given email.
func (r *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == strings.ToLower(email) })
}

// GetByUsername returns the user with the given username.
func (r *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == strings.ToLower(username) })
}

// GetByIdentifier returns the user whose email or username matches.
func (r *MockUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	id := strings.ToLower(identifier)
	return r.find(func(u models.User) bool { return u.Email == id || u.Username == id })
}

// GetByID returns the user with the given ID.
func (r *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// SetResetOTP stores a pending reset code on the user.
func (r *MockUserRepository) SetResetOTP(ctx context.Context, id, otp string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.ResetOTP = otp
	user.ResetOTPExpiry = &expiry
	r.users[id] = user
	return nil
}

// CommitPasswordReset swaps in the new digest and clears both reset fields.
func (r *MockUserRepository) CommitPasswordReset(ctx context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = passwordHash
	user.ClearResetOTP()
	r.users[id] = user
	return nil
}

func (r *MockUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}
