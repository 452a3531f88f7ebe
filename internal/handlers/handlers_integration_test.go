package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"newsportal/internal/handlers"
	"newsportal/internal/middleware"
	"newsportal/internal/repositories"
	"newsportal/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

// setupApp builds the full Fiber app over in-memory repositories, wired the
// same way main is.
func setupApp() (*fiber.App, *services.AuthService) {
	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	userRepo := repositories.NewMockUserRepository()
	newsRepo := repositories.NewMockNewsRepository()

	authService := services.NewAuthService(userRepo, jwtSecret)
	newsService := services.NewNewsService(newsRepo, nil) // nil for RabbitMQ client

	authHandler := handlers.NewAuthHandler(authService)
	newsHandler := handlers.NewNewsHandler(newsService)

	app := fiber.New()
	api := app.Group("/api")
	authRequired := middleware.AuthRequired(authService)
	authHandler.RegisterRoutes(api, authRequired)
	newsHandler.RegisterRoutes(api, authRequired)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success":   true,
			"message":   "Server is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	api.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "API endpoint not found",
		})
	})

	return app, authService
}

// doJSON performs a request with an optional JSON body and bearer token,
// returning the response and its decoded body.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		assert.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func registerAda(t *testing.T, app *fiber.App) (token string) {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/register", map[string]string{
		"full_name":        "Ada L",
		"email":            "ADA@X.COM",
		"username":         "Ada1",
		"password":         "secret1",
		"confirm_password": "secret1",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ = body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRegisterAndVerify(t *testing.T) {
	app, _ := setupApp()

	resp, body := doJSON(t, app, http.MethodPost, "/api/register", map[string]string{
		"full_name":        "Ada L",
		"email":            "ADA@X.COM",
		"username":         "Ada1",
		"password":         "secret1",
		"confirm_password": "secret1",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Registration successful!", body["message"])

	user, ok := body["user"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "ada@x.com", user["email"])
	assert.Equal(t, "ada1", user["username"])
	assert.Equal(t, "Ada L", user["full_name"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "reset_otp")

	// The returned token authenticates /verify and yields the same identity
	token := body["token"].(string)
	resp, body = doJSON(t, app, http.MethodGet, "/api/verify", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	verified := body["user"].(map[string]any)
	assert.Equal(t, user["id"], verified["id"])
	assert.Equal(t, "ada@x.com", verified["email"])
	assert.Equal(t, "ada1", verified["username"])
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setupApp()

	base := func() map[string]string {
		return map[string]string{
			"full_name":        "Ada L",
			"email":            "ada@x.com",
			"username":         "ada1",
			"password":         "secret1",
			"confirm_password": "secret1",
		}
	}

	tests := []struct {
		name    string
		mutate  func(map[string]string)
		message string
	}{
		{"missing field", func(m map[string]string) { delete(m, "email") }, "Please provide all required fields"},
		{"password mismatch", func(m map[string]string) { m["confirm_password"] = "secret2" }, "Passwords do not match"},
		{"short password", func(m map[string]string) {
			m["password"] = "12345"
			m["confirm_password"] = "12345"
		}, "Password must be at least 6 characters long"},
		{"invalid email", func(m map[string]string) { m["email"] = "not-an-email" }, "Please enter a valid email address"},
		{"bad username", func(m map[string]string) { m["username"] = "ada !" }, "Username can only contain letters, numbers, and underscores"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := base()
			tt.mutate(payload)
			resp, body := doJSON(t, app, http.MethodPost, "/api/register", payload, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	app, _ := setupApp()
	registerAda(t, app)

	// Same email, different case
	resp, body := doJSON(t, app, http.MethodPost, "/api/register", map[string]string{
		"full_name":        "Other",
		"email":            "ada@X.com",
		"username":         "other",
		"password":         "secret1",
		"confirm_password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", body["message"])

	// Same username, different case
	resp, body = doJSON(t, app, http.MethodPost, "/api/register", map[string]string{
		"full_name":        "Other",
		"email":            "other@x.com",
		"username":         "ADA1",
		"password":         "secret1",
		"confirm_password": "secret1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already taken", body["message"])
}

func TestLogin(t *testing.T) {
	app, _ := setupApp()
	registerAda(t, app)

	// By username, any case
	resp, body := doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "ADA1",
		"password":   "secret1",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful!", body["message"])
	assert.NotEmpty(t, body["token"])

	// By email
	resp, body = doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "ada@x.com",
		"password":   "secret1",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada1", user["username"])

	// Missing fields
	resp, body = doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "ada1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please provide username/email and password", body["message"])
}

func TestLoginInvalidCredentialParity(t *testing.T) {
	app, _ := setupApp()
	registerAda(t, app)

	respWrongPassword, bodyWrongPassword := doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "ada1",
		"password":   "wrongpassword",
	}, "")
	respUnknownUser, bodyUnknownUser := doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "nobody",
		"password":   "secret1",
	}, "")

	// Wrong password and unknown identifier must be indistinguishable
	assert.Equal(t, http.StatusUnauthorized, respWrongPassword.StatusCode)
	assert.Equal(t, respWrongPassword.StatusCode, respUnknownUser.StatusCode)
	assert.Equal(t, bodyWrongPassword, bodyUnknownUser)
	assert.Equal(t, "Invalid credentials", bodyWrongPassword["message"])
}

func TestAuthGateParity(t *testing.T) {
	app, _ := setupApp()
	registerAda(t, app)

	expiredToken := func() string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id":  "user-123",
			"username": "ada1",
			"exp":      time.Now().Add(-time.Hour).Unix(),
		})
		signed, _ := token.SignedString([]byte("test_jwt_secret"))
		return signed
	}()

	requests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no header", func(r *http.Request) {}},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }},
		{"malformed token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.jwt") }},
		{"expired token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expiredToken) }},
	}

	var bodies []string
	for _, tt := range requests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/verify", nil)
			tt.setup(req)
			resp, err := app.Test(req, -1)
			assert.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			bodies = append(bodies, string(raw))
		})
	}

	// Every failure mode produces the identical response body
	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}

func TestGetUserByID(t *testing.T) {
	app, _ := setupApp()
	token := registerAda(t, app)

	_, body := doJSON(t, app, http.MethodGet, "/api/verify", nil, token)
	id := body["user"].(map[string]any)["id"].(string)

	resp, body := doJSON(t, app, http.MethodGet, "/api/user/"+id, nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada1", body["user"].(map[string]any)["username"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/user/no-such-id", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", body["message"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/user/"+id, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetFlow(t *testing.T) {
	app, _ := setupApp()
	registerAda(t, app)

	// Issue a reset code
	resp, body := doJSON(t, app, http.MethodPost, "/api/forgot-password", map[string]string{
		"email": "ada@x.com",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	otp, _ := body["otp"].(string)
	assert.Len(t, otp, 6)

	// Wrong code
	resp, body = doJSON(t, app, http.MethodPost, "/api/verify-otp", map[string]string{
		"email": "ada@x.com",
		"otp":   "000000",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid OTP", body["message"])

	// Right code verifies, and verifies again: it is not consumed
	for i := 0; i < 2; i++ {
		resp, body = doJSON(t, app, http.MethodPost, "/api/verify-otp", map[string]string{
			"email": "ada@x.com",
			"otp":   otp,
		}, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "OTP verified successfully", body["message"])
	}

	// Commit the new password
	resp, body = doJSON(t, app, http.MethodPost, "/api/reset-password", map[string]string{
		"email":            "ada@x.com",
		"otp":              otp,
		"new_password":     "newsecret",
		"confirm_password": "newsecret",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Password reset successful!", body["message"])

	// The code was cleared together with the commit
	resp, body = doJSON(t, app, http.MethodPost, "/api/verify-otp", map[string]string{
		"email": "ada@x.com",
		"otp":   otp,
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No OTP has been generated for this account", body["message"])

	// Old password no longer works, the new one does
	resp, _ = doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "ada1",
		"password":   "secret1",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "ada1",
		"password":   "newsecret",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Unknown email gets the same success message, without a code
	resp, body = doJSON(t, app, http.MethodPost, "/api/forgot-password", map[string]string{
		"email": "ghost@x.com",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "otp")
}

func TestNewsEndpoints(t *testing.T) {
	app, _ := setupApp()
	token := registerAda(t, app)

	article := map[string]any{
		"title":       "Go 1.25 released",
		"description": "New release",
		"content":     "Release notes...",
		"source":      "golang.org",
		"category":    "technology",
	}

	// Writes require a token
	resp, _ := doJSON(t, app, http.MethodPost, "/api/news", article, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Create applies defaults and stamps the author account
	resp, body := doJSON(t, app, http.MethodPost, "/api/news", article, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := body["data"].(map[string]any)
	assert.Equal(t, "Unknown", created["author"])
	assert.Equal(t, "en", created["language"])
	assert.NotEmpty(t, created["created_by"])
	newsID := created["id"].(string)

	// Invalid category is rejected
	bad := map[string]any{
		"title": "x", "description": "x", "content": "x", "source": "x",
		"category": "gossip",
	}
	resp, body = doJSON(t, app, http.MethodPost, "/api/news", bad, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "Category must be one of")

	// A second article in another category and language
	second := map[string]any{
		"title":       "Election coverage",
		"description": "Politics news",
		"content":     "...",
		"source":      "example.com",
		"category":    "politics",
		"language":    "fr",
	}
	resp, _ = doJSON(t, app, http.MethodPost, "/api/news", second, token)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Public list, then filtered list
	resp, body = doJSON(t, app, http.MethodGet, "/api/news", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/news?category=politics&language=fr", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/news?limit=1", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	// Single article, public
	resp, body = doJSON(t, app, http.MethodGet, "/api/news/"+newsID, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Go 1.25 released", body["data"].(map[string]any)["title"])

	// Partial update keeps unmentioned fields
	resp, body = doJSON(t, app, http.MethodPut, "/api/news/"+newsID, map[string]any{
		"title": "Go 1.25 is out",
	}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := body["data"].(map[string]any)
	assert.Equal(t, "Go 1.25 is out", updated["title"])
	assert.Equal(t, "New release", updated["description"])

	// Delete, then the article is gone
	resp, body = doJSON(t, app, http.MethodDelete, "/api/news/"+newsID, nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "News article deleted successfully", body["message"])

	resp, body = doJSON(t, app, http.MethodDelete, "/api/news/"+newsID, nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "News article not found", body["message"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/news/"+newsID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndAPINotFound(t *testing.T) {
	app, _ := setupApp()

	resp, body := doJSON(t, app, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Server is running", body["message"])
	assert.NotEmpty(t, body["timestamp"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/no-such-endpoint", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "API endpoint not found", body["message"])
}
