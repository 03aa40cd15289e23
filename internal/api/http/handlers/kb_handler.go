package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/kb"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// KBHandler serves knowledge base endpoints.
type KBHandler struct {
	kb *service.KnowledgeService
}

func NewKBHandler(knowledge *service.KnowledgeService) *KBHandler {
	return &KBHandler{kb: knowledge}
}

// List GET /kb and GET /staff/kb.
func (h *KBHandler) List(c *fiber.Ctx) error {
	q := kb.Query{
		Text:     c.Query("q"),
		Category: c.Query("category"),
		Status:   parseArticleStatus(c.Query("status")),
	}
	articles := h.kb.Search(optionalUser(c), q)
	items := make([]dto.ArticleResponse, 0, len(articles))
	for _, a := range articles {
		items = append(items, dto.NewArticleResponse(a))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Categories GET /kb/categories.
func (h *KBHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.kb.Categories(optionalUser(c))})
}

// Get GET /kb/:id.
func (h *KBHandler) Get(c *fiber.Ctx) error {
	rendered, err := h.kb.Get(optionalUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ArticleDetailResponse{
		ArticleResponse: dto.NewArticleResponse(rendered.Article),
		Content:         rendered.Article.Content,
		HTML:            rendered.HTML,
	}})
}

// Helpful POST /kb/:id/helpful.
func (h *KBHandler) Helpful(c *fiber.Ctx) error {
	article, err := h.kb.MarkHelpful(c.UserContext(), optionalUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Create POST /staff/kb.
func (h *KBHandler) Create(c *fiber.Ctx) error {
	return h.upsert(c, "", http.StatusCreated)
}

// Update PUT /staff/kb/:id.
func (h *KBHandler) Update(c *fiber.Ctx) error {
	return h.upsert(c, c.Params("id"), http.StatusOK)
}

// Delete DELETE /staff/kb/:id.
func (h *KBHandler) Delete(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.kb.Delete(c.UserContext(), staff, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Stats GET /staff/kb/stats.
func (h *KBHandler) Stats(c *fiber.Ctx) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	stats, err := h.kb.Stats(staff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewKBStatsResponse(stats)})
}

func (h *KBHandler) upsert(c *fiber.Ctx, id string, status int) error {
	staff, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	article, err := h.kb.Upsert(c.UserContext(), staff, id, service.ArticleInput{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		Category: strings.TrimSpace(req.Category),
		Keywords: req.Keywords,
		Status:   parseArticleStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}
