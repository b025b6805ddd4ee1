package dto

import (
	"time"

	"github.com/elotech/helpdesk/internal/domain"
)

// ArticleRequest payload.
type ArticleRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// ArticleResponse response.
type ArticleResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	Content     string    `json:"content"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArticleResponseFrom maps a domain article.
func ArticleResponseFrom(article *domain.KnowledgeArticle) ArticleResponse {
	return ArticleResponse{
		ID:          article.ID,
		Title:       article.Title,
		Category:    article.Category,
		Content:     article.Content,
		AuthorName:  article.AuthorName,
		AuthorEmail: article.AuthorEmail,
		CreatedAt:   article.CreatedAt,
	}
}
