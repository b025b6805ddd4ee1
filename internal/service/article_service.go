package service

import (
	"context"
	"strings"

	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/pkg/util"
)

// ArticleService manages the knowledge base. Articles are readable by
// everyone authenticated; publishing is admin-only.
type ArticleService struct {
	articles repository.ArticleRepository
}

// NewArticleService constructs the service.
func NewArticleService(repo repository.ArticleRepository) *ArticleService {
	return &ArticleService{articles: repo}
}

// ArticleInput describes a new article.
type ArticleInput struct {
	Title    string
	Category string
	Content  string
}

// Publish stores a new article authored by the caller.
func (s *ArticleService) Publish(ctx context.Context, caller *domain.User, input ArticleInput) (*domain.KnowledgeArticle, error) {
	if !caller.IsAdmin() {
		return nil, util.NewForbidden("administrator role required")
	}
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, util.NewValidationError("title and content required", nil)
	}
	article := &domain.KnowledgeArticle{
		Title:       title,
		Category:    strings.TrimSpace(input.Category),
		Content:     content,
		AuthorID:    caller.ID,
		AuthorName:  caller.Name,
		AuthorEmail: caller.Email,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, storeError(err)
	}
	return article, nil
}

// List returns articles, optionally filtered by category.
func (s *ArticleService) List(ctx context.Context, category *string) ([]domain.KnowledgeArticle, error) {
	articles, err := s.articles.List(ctx, category)
	if err != nil {
		return nil, storeError(err)
	}
	return articles, nil
}
