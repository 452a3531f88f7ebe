package handlers

import (
	"errors"
	"log"

	"newsportal/internal/models"
	"newsportal/internal/repositories"
	"newsportal/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NewsHandler handles HTTP requests for news articles.
type NewsHandler struct {
	newsService *services.NewsService
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(newsService *services.NewsService) *NewsHandler {
	return &NewsHandler{
		newsService: newsService,
	}
}

// RegisterRoutes registers the news routes. Reads are public; writes require
// a bearer token.
func (h *NewsHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/news", h.HandleListNews)
	router.Get("/news/:id", h.HandleGetNews)
	router.Post("/news", authRequired, h.HandleCreateNews)
	router.Put("/news/:id", authRequired, h.HandleUpdateNews)
	router.Delete("/news/:id", authRequired, h.HandleDeleteNews)
}

// HandleListNews returns articles filtered by language and category, newest
// published first.
func (h *NewsHandler) HandleListNews(c *fiber.Ctx) error {
	filter := models.NewsFilter{
		Language: c.Query("language"),
		Category: c.Query("category"),
		Limit:    c.QueryInt("limit", models.DefaultNewsLimit),
	}

	news, err := h.newsService.ListNews(c.UserContext(), filter)
	if err != nil {
		log.Printf("Error listing news: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Error fetching news articles")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(news),
		"data":    news,
	})
}

// HandleGetNews returns a single article by ID.
func (h *NewsHandler) HandleGetNews(c *fiber.Ctx) error {
	news, err := h.newsService.GetNewsByID(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return fail(c, fiber.StatusNotFound, "News article not found")
		}
		log.Printf("Error getting news: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Error fetching news article")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    news,
	})
}

// HandleCreateNews creates a new article owned by the authenticated user.
func (h *NewsHandler) HandleCreateNews(c *fiber.Ctx) error {
	var news models.News
	if err := c.BodyParser(&news); err != nil {
		log.Printf("Error parsing news request body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if news.Title == "" || news.Description == "" || news.Content == "" ||
		news.Source == "" || news.Category == "" {
		return fail(c, fiber.StatusBadRequest, "Please provide all required fields")
	}
	if violations := models.ValidateNews(&news); len(violations) > 0 {
		return fail(c, fiber.StatusBadRequest, violations[0].Message)
	}

	news.ID = ""
	news.CreatedBy, _ = c.Locals("user_id").(string)

	if err := h.newsService.CreateNews(c.UserContext(), &news); err != nil {
		log.Printf("Error creating news: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Error creating news article")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "News article created successfully",
		"data":    news,
	})
}

// HandleUpdateNews applies the request body on top of the stored article and
// saves the result.
func (h *NewsHandler) HandleUpdateNews(c *fiber.Ctx) error {
	id := c.Params("id")

	news, err := h.newsService.GetNewsByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return fail(c, fiber.StatusNotFound, "News article not found")
		}
		log.Printf("Error loading news for update: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Error updating news article")
	}

	// Partial update: absent body fields keep their stored values.
	if err := c.BodyParser(news); err != nil {
		log.Printf("Error parsing news update body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	news.ID = id

	if violations := models.ValidateNews(news); len(violations) > 0 {
		return fail(c, fiber.StatusBadRequest, violations[0].Message)
	}

	if err := h.newsService.UpdateNews(c.UserContext(), news); err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return fail(c, fiber.StatusNotFound, "News article not found")
		}
		log.Printf("Error updating news: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Error updating news article")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "News article updated successfully",
		"data":    news,
	})
}

// HandleDeleteNews removes an article by ID.
func (h *NewsHandler) HandleDeleteNews(c *fiber.Ctx) error {
	if err := h.newsService.DeleteNews(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return fail(c, fiber.StatusNotFound, "News article not found")
		}
		log.Printf("Error deleting news: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Error deleting news article")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "News article deleted successfully",
	})
}
