package domain

import "time"

// KnowledgeArticle is a self-service documentation entry. Articles only
// support create and list; there is no lifecycle beyond that.
type KnowledgeArticle struct {
	ID          string
	Title       string
	Category    string
	Content     string
	AuthorID    string
	AuthorName  string
	AuthorEmail string
	CreatedAt   time.Time
}
