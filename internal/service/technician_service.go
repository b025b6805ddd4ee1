package service

import (
	"context"
	"strings"

	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/pkg/util"
)

// TechnicianService manages the assignable staff roster. Mutations are
// admin-only; the roster itself is readable by any authenticated caller
// because ticket views embed technician names.
type TechnicianService struct {
	technicians repository.TechnicianRepository
}

// NewTechnicianService constructs the service.
func NewTechnicianService(repo repository.TechnicianRepository) *TechnicianService {
	return &TechnicianService{technicians: repo}
}

// TechnicianInput describes create/update payload.
type TechnicianInput struct {
	Name      string
	Email     string
	AvatarURL string
	Skills    []domain.TicketCategory
}

func (input TechnicianInput) validate() error {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" {
		return util.NewValidationError("name and email required", nil)
	}
	for _, skill := range input.Skills {
		if !skill.IsValid() {
			return util.NewValidationError("unknown skill category", map[string]any{"skill": skill})
		}
	}
	return nil
}

// Create registers a technician with zero workload.
func (s *TechnicianService) Create(ctx context.Context, caller *domain.User, input TechnicianInput) (*domain.Technician, error) {
	if !caller.IsAdmin() {
		return nil, util.NewForbidden("administrator role required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	technician := &domain.Technician{
		Name:      strings.TrimSpace(input.Name),
		Email:     normalizeEmail(input.Email),
		AvatarURL: strings.TrimSpace(input.AvatarURL),
		Skills:    input.Skills,
	}
	if err := s.technicians.Create(ctx, technician); err != nil {
		return nil, storeError(err)
	}
	return technician, nil
}

// Update replaces profile fields and skills. Workload is never set
// directly; it moves only through assignment changes.
func (s *TechnicianService) Update(ctx context.Context, caller *domain.User, id string, input TechnicianInput) (*domain.Technician, error) {
	if !caller.IsAdmin() {
		return nil, util.NewForbidden("administrator role required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "technician")
	}
	technician.Name = strings.TrimSpace(input.Name)
	technician.Email = normalizeEmail(input.Email)
	technician.AvatarURL = strings.TrimSpace(input.AvatarURL)
	technician.Skills = input.Skills
	if err := s.technicians.Update(ctx, technician); err != nil {
		return nil, storeError(err)
	}
	return technician, nil
}

// Get returns one technician.
func (s *TechnicianService) Get(ctx context.Context, id string) (*domain.Technician, error) {
	technician, err := s.technicians.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "technician")
	}
	return technician, nil
}

// List returns the full roster.
func (s *TechnicianService) List(ctx context.Context) ([]domain.Technician, error) {
	technicians, err := s.technicians.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return technicians, nil
}
