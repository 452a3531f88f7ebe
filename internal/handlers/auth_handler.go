package handlers

import (
	"errors"
	"log"

	"newsportal/internal/models"
	"newsportal/internal/repositories"
	"newsportal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication and the
// password-reset flow.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the authentication routes. authRequired is the
// bearer-token middleware applied to the protected ones.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
	router.Get("/user/:id", authRequired, h.HandleGetUser)
	router.Get("/verify", authRequired, h.HandleVerify)
	router.Post("/forgot-password", h.HandleForgotPassword)
	router.Post("/verify-otp", h.HandleVerifyOTP)
	router.Post("/reset-password", h.HandleResetPassword)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if req.FullName == "" || req.Email == "" || req.Username == "" ||
		req.Password == "" || req.ConfirmPassword == "" {
		return fail(c, fiber.StatusBadRequest, "Please provide all required fields")
	}
	if req.Password != req.ConfirmPassword {
		return fail(c, fiber.StatusBadRequest, "Passwords do not match")
	}
	if len(req.Password) < 6 {
		return fail(c, fiber.StatusBadRequest, "Password must be at least 6 characters long")
	}

	user := models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	}

	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return fail(c, fiber.StatusBadRequest, "Email already registered")
		case errors.Is(err, repositories.ErrDuplicateUsername):
			return fail(c, fiber.StatusBadRequest, "Username already taken")
		case errors.As(err, &vErr):
			return fail(c, fiber.StatusBadRequest, vErr.Error())
		}
		log.Printf("Registration error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Server error during registration")
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username)
	if err != nil {
		log.Printf("Registration token error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Server error during registration")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful!",
		"token":   token,
		"user":    user.Profile(),
	})
}

// LoginRequest represents the request body for login. The identifier may be
// an email address or a username.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Identifier == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Please provide username/email and password")
	}

	user, token, err := h.authService.LoginUser(c.UserContext(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		log.Printf("Login error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Server error during login")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful!",
		"token":   token,
		"user":    user.Profile(),
	})
}

// HandleGetUser returns the identity summary for the user with the given ID.
func (h *AuthHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.authService.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		log.Printf("Get user error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Server error")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Profile(),
	})
}

// HandleVerify re-fetches the authenticated user's record and returns the
// current identity summary. The token can outlive the record, so a 404 is
// still possible here.
func (h *AuthHandler) HandleVerify(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	user, err := h.authService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		log.Printf("Verify error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Server error")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user.Profile(),
	})
}

// HandleForgotPassword issues a password-reset code for the given email. The
// response message is the same whether or not the email is registered; the
// code itself rides along in the response until a mail sender exists.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" {
		return fail(c, fiber.StatusBadRequest, "Email is required")
	}

	resp := fiber.Map{
		"success": true,
		"message": "If that email is registered, a reset code has been issued",
	}

	otp, err := h.authService.RequestPasswordReset(c.UserContext(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return c.JSON(resp)
		}
		log.Printf("Forgot password error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Server error")
	}

	resp["otp"] = otp
	return c.JSON(resp)
}

// HandleVerifyOTP checks a reset code without consuming it; the code stays
// pending until the password is actually reset.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.OTP == "" {
		return fail(c, fiber.StatusBadRequest, "Please provide email and OTP")
	}

	if err := h.authService.VerifyPasswordResetOTP(c.UserContext(), req.Email, req.OTP); err != nil {
		return h.resetFlowError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP verified successfully",
	})
}

// HandleResetPassword commits a new password after re-verifying the reset
// code, clearing the code in the same store update.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req struct {
		Email           string `json:"email"`
		OTP             string `json:"otp"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return fail(c, fiber.StatusBadRequest, "Please provide all required fields")
	}
	if req.NewPassword != req.ConfirmPassword {
		return fail(c, fiber.StatusBadRequest, "Passwords do not match")
	}
	if len(req.NewPassword) < 6 {
		return fail(c, fiber.StatusBadRequest, "Password must be at least 6 characters long")
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Email, req.OTP, req.NewPassword); err != nil {
		return h.resetFlowError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password reset successful!",
	})
}

func (h *AuthHandler) resetFlowError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "User not found")
	case errors.Is(err, models.ErrNoResetPending),
		errors.Is(err, models.ErrResetOTPExpired),
		errors.Is(err, models.ErrResetOTPMismatch):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	log.Printf("Password reset error: %v", err)
	return fail(c, fiber.StatusInternalServerError, "Server error")
}

// fail writes the portal's standard error envelope.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
