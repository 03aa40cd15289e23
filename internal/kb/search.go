// Package kb holds the read side of the knowledge base: search, category
// listing and Markdown rendering.
package kb

import (
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// Query filters articles. Empty fields match everything.
type Query struct {
	Text          string
	Category      string
	Status        domain.ArticleStatus
	IncludeDrafts bool
}

// Search returns matching articles in their stored order. Drafts are hidden
// unless IncludeDrafts is set; Status narrows further when given.
func Search(articles []*domain.Article, q Query) []*domain.Article {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	category := strings.TrimSpace(q.Category)

	out := make([]*domain.Article, 0, len(articles))
	for _, a := range articles {
		if !q.IncludeDrafts && a.Status != domain.ArticleStatusPublished {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		if category != "" && category != AllCategories && a.Category != category {
			continue
		}
		if text != "" && !matchesText(a, text) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesText(a *domain.Article, text string) bool {
	if strings.Contains(strings.ToLower(a.Title), text) {
		return true
	}
	for _, kw := range a.Keywords {
		if strings.Contains(strings.ToLower(kw), text) {
			return true
		}
	}
	return false
}

// Categories lists distinct categories in first-seen order.
func Categories(articles []*domain.Article) []string {
	seen := make(map[string]struct{}, len(articles))
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.Category == "" {
			continue
		}
		if _, ok := seen[a.Category]; ok {
			continue
		}
		seen[a.Category] = struct{}{}
		out = append(out, a.Category)
	}
	return out
}

// MostHelpful returns the published article with the most helpful votes.
func MostHelpful(articles []*domain.Article) (*domain.Article, bool) {
	published := Search(articles, Query{})
	if len(published) == 0 {
		return nil, false
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].HelpfulCount > published[j].HelpfulCount
	})
	return published[0], true
}

// Stats summarizes the knowledge base for the admin overview.
type Stats struct {
	Total       int
	Published   int
	Draft       int
	MostHelpful *domain.Article
}

// Summarize counts articles by status.
func Summarize(articles []*domain.Article) Stats {
	stats := Stats{Total: len(articles)}
	for _, a := range articles {
		switch a.Status {
		case domain.ArticleStatusPublished:
			stats.Published++
		case domain.ArticleStatusDraft:
			stats.Draft++
		}
	}
	if top, ok := MostHelpful(articles); ok {
		stats.MostHelpful = top
	}
	return stats
}
