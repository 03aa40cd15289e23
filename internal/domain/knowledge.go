package domain

import "time"

// ArticleStatus tracks the publication state of a knowledge base article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "Draft"
	ArticleStatusPublished ArticleStatus = "Published"
)

// IsValid reports whether s is a known article status.
func (s ArticleStatus) IsValid() bool {
	return s == ArticleStatusDraft || s == ArticleStatusPublished
}

// Article is a self-service help document.
type Article struct {
	ID           string
	Title        string
	Content      string
	Category     string
	Keywords     []string
	Status       ArticleStatus
	HelpfulCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	AuthorID     UserID
}

// Clone returns a deep copy of the article.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Keywords = append([]string(nil), a.Keywords...)
	return &cp
}
