package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/kb"
	"github.com/spec-kit/helpdesk-service/internal/store"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// KnowledgeService serves the knowledge base. Staff see drafts; everyone
// else only sees published articles.
type KnowledgeService struct {
	store    *store.Store
	renderer *kb.Renderer
	logger   *zap.Logger
}

// RenderedArticle pairs an article with its sanitized HTML body.
type RenderedArticle struct {
	Article *domain.Article
	HTML    string
}

// ArticleInput is the editable part of an article.
type ArticleInput struct {
	Title    string
	Content  string
	Category string
	Keywords []string
	Status   domain.ArticleStatus
}

func NewKnowledgeService(st *store.Store, renderer *kb.Renderer, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{store: st, renderer: renderer, logger: logger}
}

// Search lists articles. Drafts are only included for staff.
func (s *KnowledgeService) Search(actor *domain.User, q kb.Query) []*domain.Article {
	q.IncludeDrafts = actor.IsStaff()
	return kb.Search(s.store.Snapshot().KnowledgeBase, q)
}

// Categories lists the categories of the visible articles.
func (s *KnowledgeService) Categories(actor *domain.User) []string {
	return kb.Categories(s.Search(actor, kb.Query{}))
}

// Get returns one article with its rendered body.
func (s *KnowledgeService) Get(actor *domain.User, id string) (*RenderedArticle, error) {
	article, ok := s.store.Article(id)
	if !ok || (article.Status != domain.ArticleStatusPublished && !actor.IsStaff()) {
		return nil, apperrors.NewNotFound("article", map[string]any{"id": id})
	}
	html, err := s.renderer.ToHTML(article.Content)
	if err != nil {
		s.logger.Warn("article render failed", zap.String("article_id", id), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}
	return &RenderedArticle{Article: article, HTML: html}, nil
}

// Upsert creates an article when id is empty and replaces it otherwise.
func (s *KnowledgeService) Upsert(ctx context.Context, actor *domain.User, id string, input ArticleInput) (*domain.Article, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.store.UpsertArticle(ctx, store.UpsertArticleInput{
		ID:       id,
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
		Keywords: input.Keywords,
		AuthorID: actor.ID,
		Status:   input.Status,
	})
}

func (s *KnowledgeService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	return s.store.DeleteArticle(ctx, id)
}

// MarkHelpful records a helpful vote on a published article.
func (s *KnowledgeService) MarkHelpful(ctx context.Context, actor *domain.User, id string) (*domain.Article, error) {
	article, ok := s.store.Article(id)
	if !ok || (article.Status != domain.ArticleStatusPublished && !actor.IsStaff()) {
		return nil, apperrors.NewNotFound("article", map[string]any{"id": id})
	}
	return s.store.MarkArticleHelpful(ctx, id)
}

// Stats summarizes the knowledge base for staff.
func (s *KnowledgeService) Stats(actor *domain.User) (*kb.Stats, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	stats := kb.Summarize(s.store.Snapshot().KnowledgeBase)
	return &stats, nil
}
