package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/elotech/helpdesk/internal/api/dto"
	"github.com/elotech/helpdesk/internal/auth"
	"github.com/elotech/helpdesk/internal/service"
	"github.com/elotech/helpdesk/pkg/util"
)

// ArticlesHandler serves the knowledge base.
type ArticlesHandler struct {
	articles *service.ArticleService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(articleService *service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{articles: articleService}
}

// List GET /articles.
func (h *ArticlesHandler) List(c *fiber.Ctx) error {
	var category *string
	if raw := c.Query("category"); raw != "" {
		category = &raw
	}
	articles, err := h.articles.List(c.UserContext(), category)
	if err != nil {
		return err
	}
	items := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		items = append(items, dto.ArticleResponseFrom(&articles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /admin/articles.
func (h *ArticlesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	article, err := h.articles.Publish(c.UserContext(), principal.User, service.ArticleInput{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ArticleResponseFrom(article)})
}
