package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"newsportal/internal/models"
	"newsportal/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both an unknown identifier and a
// wrong password, so a caller can never tell which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError carries the schema-level field violations found before a
// user is persisted. Its message is the first violated rule's.
type ValidationError struct {
	Violations []models.FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return e.Violations[0].Message
}

// AuthService handles business logic for authentication and the
// password-reset flow.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 7 * 24 * time.Hour, // Token valid for 7 days
	}
}

// RegisterUser registers a new user, hashes their password, and saves them to
// the database. The pre-checks give friendly messages; the store's unique
// indexes remain the authority if two registrations race.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	user.Normalize()

	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return repositories.ErrDuplicateEmail
	} else if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil && existing != nil {
		return repositories.ErrDuplicateUsername
	} else if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	// Schema-level rules run last, mirroring a store that validates at save
	// time. Password is still plaintext here, so its length rule applies.
	if violations := models.ValidateUser(user); len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	return nil
}

// LoginUser authenticates a user by email or username and returns the user
// with a signed token. Both unknown-identifier and wrong-password collapse to
// ErrInvalidCredentials.
func (s *AuthService) LoginUser(ctx context.Context, identifier, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateToken issues a signed JWT embedding the user's identity.
func (s *AuthService) GenerateToken(userID, username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// GetUserByID fetches the current user record for an already-verified token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// RequestPasswordReset issues a reset code for the account with the given
// email, overwriting any code still pending. The returned code is what the
// caller delivers to the user.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	otp, err := user.GenerateResetOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset OTP: %w", err)
	}
	if err := s.userRepo.SetResetOTP(ctx, user.ID, user.ResetOTP, *user.ResetOTPExpiry); err != nil {
		return "", err
	}
	return otp, nil
}

// VerifyPasswordResetOTP checks a supplied reset code without consuming it;
// the code stays pending until ResetPassword commits.
func (s *AuthService) VerifyPasswordResetOTP(ctx context.Context, email, otp string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return user.VerifyResetOTP(otp)
}

// ResetPassword re-verifies the code, hashes the new password and commits it,
// clearing both reset fields in the same store update. This is the only path
// besides registration that writes the password digest.
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := user.VerifyResetOTP(otp); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.CommitPasswordReset(ctx, user.ID, string(hashedPassword))
}
