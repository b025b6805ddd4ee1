package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elotech/helpdesk/internal/domain"
)

// TechnicianRepository defines persistence access for technicians.
type TechnicianRepository interface {
	Create(ctx context.Context, technician *domain.Technician) error
	Update(ctx context.Context, technician *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	List(ctx context.Context) ([]domain.Technician, error)
	// AdjustWorkload applies a relative delta to the workload counter.
	// The update is a single SQL increment; counters can still drift if
	// assignments happen outside this service.
	AdjustWorkload(ctx context.Context, id string, delta int) error
}

type technicianRepository struct {
	pool *pgxpool.Pool
}

// NewTechnicianRepository returns a Postgres-backed implementation.
func NewTechnicianRepository(pool *pgxpool.Pool) TechnicianRepository {
	return &technicianRepository{pool: pool}
}

func (r *technicianRepository) Create(ctx context.Context, technician *domain.Technician) error {
	const query = `
        INSERT INTO technicians (name, email, avatar_url, skills, workload)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		technician.Name,
		technician.Email,
		technician.AvatarURL,
		skillStrings(technician.Skills),
		technician.Workload,
	).Scan(&technician.ID, &technician.CreatedAt, &technician.UpdatedAt)
}

func (r *technicianRepository) Update(ctx context.Context, technician *domain.Technician) error {
	const query = `
        UPDATE technicians SET name=$1, email=$2, avatar_url=$3, skills=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		technician.Name,
		technician.Email,
		technician.AvatarURL,
		skillStrings(technician.Skills),
		technician.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	const query = `
        SELECT id, name, email, avatar_url, skills, workload, created_at, updated_at
        FROM technicians WHERE id=$1`
	return scanTechnicianRow(r.pool.QueryRow(ctx, query, id))
}

func (r *technicianRepository) List(ctx context.Context) ([]domain.Technician, error) {
	const query = `
        SELECT id, name, email, avatar_url, skills, workload, created_at, updated_at
        FROM technicians ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Technician
	for rows.Next() {
		technician, err := scanTechnicianRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *technician)
	}
	return result, rows.Err()
}

func (r *technicianRepository) AdjustWorkload(ctx context.Context, id string, delta int) error {
	const query = `
        UPDATE technicians SET workload = GREATEST(workload + $1, 0), updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, delta, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTechnicianRow(row rowScanner) (*domain.Technician, error) {
	var technician domain.Technician
	var skills []string
	if err := row.Scan(
		&technician.ID,
		&technician.Name,
		&technician.Email,
		&technician.AvatarURL,
		&skills,
		&technician.Workload,
		&technician.CreatedAt,
		&technician.UpdatedAt,
	); err != nil {
		return nil, err
	}
	technician.Skills = make([]domain.TicketCategory, 0, len(skills))
	for _, skill := range skills {
		technician.Skills = append(technician.Skills, domain.TicketCategory(skill))
	}
	return &technician, nil
}

func skillStrings(skills []domain.TicketCategory) []string {
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		result = append(result, string(skill))
	}
	return result
}
