package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/kb"
)

// ArticleRequest payload for create and update.
type ArticleRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	Status   string   `json:"status"`
}

// ArticleResponse is the list view of an article.
type ArticleResponse struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Category     string               `json:"category"`
	Keywords     []string             `json:"keywords"`
	Status       domain.ArticleStatus `json:"status"`
	HelpfulCount int                  `json:"helpful_count"`
	AuthorID     domain.UserID        `json:"author_id"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ArticleDetailResponse adds the Markdown source and rendered HTML.
type ArticleDetailResponse struct {
	ArticleResponse
	Content string `json:"content"`
	HTML    string `json:"html"`
}

// KBStatsResponse summarizes the knowledge base.
type KBStatsResponse struct {
	Total       int              `json:"total"`
	Published   int              `json:"published"`
	Draft       int              `json:"draft"`
	MostHelpful *ArticleResponse `json:"most_helpful"`
}

func NewArticleResponse(a *domain.Article) ArticleResponse {
	return ArticleResponse{
		ID:           a.ID,
		Title:        a.Title,
		Category:     a.Category,
		Keywords:     a.Keywords,
		Status:       a.Status,
		HelpfulCount: a.HelpfulCount,
		AuthorID:     a.AuthorID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func NewKBStatsResponse(s *kb.Stats) KBStatsResponse {
	resp := KBStatsResponse{Total: s.Total, Published: s.Published, Draft: s.Draft}
	if s.MostHelpful != nil {
		top := NewArticleResponse(s.MostHelpful)
		resp.MostHelpful = &top
	}
	return resp
}
