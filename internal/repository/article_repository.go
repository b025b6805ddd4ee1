package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elotech/helpdesk/internal/domain"
)

// ArticleRepository persists knowledge-base articles.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.KnowledgeArticle) error
	List(ctx context.Context, category *string) ([]domain.KnowledgeArticle, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository returns a Postgres-backed implementation.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

func (r *articleRepository) Create(ctx context.Context, article *domain.KnowledgeArticle) error {
	const query = `
        INSERT INTO knowledge_articles (title, category, content, author_id, author_name, author_email)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		article.Title,
		article.Category,
		article.Content,
		article.AuthorID,
		article.AuthorName,
		article.AuthorEmail,
	).Scan(&article.ID, &article.CreatedAt)
}

func (r *articleRepository) List(ctx context.Context, category *string) ([]domain.KnowledgeArticle, error) {
	query := `
        SELECT id, title, category, content, author_id, author_name, author_email, created_at
        FROM knowledge_articles`
	args := []any{}
	if category != nil && *category != "" {
		query += ` WHERE category=$1`
		args = append(args, *category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KnowledgeArticle
	for rows.Next() {
		var article domain.KnowledgeArticle
		if err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Category,
			&article.Content,
			&article.AuthorID,
			&article.AuthorName,
			&article.AuthorEmail,
			&article.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, article)
	}
	return result, rows.Err()
}
