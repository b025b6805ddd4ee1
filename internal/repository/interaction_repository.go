package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elotech/helpdesk/internal/domain"
)

// InteractionRepository persists the append-only conversation log. There
// is deliberately no update or single-row delete; entries are immutable.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *domain.TicketInteraction) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketInteraction, error)
}

type interactionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository instantiates repository.
func NewInteractionRepository(pool *pgxpool.Pool) InteractionRepository {
	return &interactionRepository{pool: pool}
}

func (r *interactionRepository) Create(ctx context.Context, interaction *domain.TicketInteraction) error {
	const query = `
        INSERT INTO ticket_interactions (ticket_id, author_kind, author_id, author_name, author_email, author_avatar_url, author_role, content, is_internal)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		interaction.TicketID,
		interaction.Author.Kind,
		interaction.Author.ID,
		interaction.Author.Name,
		interaction.Author.Email,
		interaction.Author.AvatarURL,
		interaction.Author.Role,
		interaction.Content,
		interaction.IsInternal,
	).Scan(&interaction.ID, &interaction.CreatedAt)
}

func (r *interactionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketInteraction, error) {
	const query = `
        SELECT id, ticket_id, author_kind, author_id, author_name, author_email, author_avatar_url, author_role, content, is_internal, created_at
        FROM ticket_interactions WHERE ticket_id=$1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketInteraction
	for rows.Next() {
		var interaction domain.TicketInteraction
		if err := rows.Scan(
			&interaction.ID,
			&interaction.TicketID,
			&interaction.Author.Kind,
			&interaction.Author.ID,
			&interaction.Author.Name,
			&interaction.Author.Email,
			&interaction.Author.AvatarURL,
			&interaction.Author.Role,
			&interaction.Content,
			&interaction.IsInternal,
			&interaction.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, interaction)
	}
	return result, rows.Err()
}
