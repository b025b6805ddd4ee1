package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/elotech/helpdesk/internal/ai"
	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/pkg/util"
)

// SuggestionService exposes the model-backed advisory flows. Suggestions
// never mutate tickets; callers decide whether to apply them. When no
// model is configured the technician flow falls back to a deterministic
// ranking and classification is unavailable.
type SuggestionService struct {
	client      *ai.Client
	technicians repository.TechnicianRepository
	logger      *zap.Logger
}

// NewSuggestionService constructs the service. client may be nil when no
// model credentials are configured.
func NewSuggestionService(client *ai.Client, technicians repository.TechnicianRepository, logger *zap.Logger) *SuggestionService {
	return &SuggestionService{client: client, technicians: technicians, logger: logger}
}

// ClassifyTicket suggests a category and priority for a free-text
// problem description.
func (s *SuggestionService) ClassifyTicket(ctx context.Context, description string) (ai.Classification, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return ai.Classification{}, util.NewValidationError("description required", nil)
	}
	if s.client == nil {
		return ai.Classification{}, util.NewSuggestionFailed(nil)
	}
	classification, err := s.client.SuggestCategoryAndPriority(ctx, description)
	if err != nil {
		s.logger.Warn("ticket classification failed", zap.Error(err))
		return ai.Classification{}, err
	}
	return classification, nil
}

// SuggestTechnician recommends an assignee for a ticket, considering the
// roster's skills and current workload.
func (s *SuggestionService) SuggestTechnician(ctx context.Context, category domain.TicketCategory, description string) (ai.TechnicianSuggestion, error) {
	if !category.IsValid() {
		return ai.TechnicianSuggestion{}, util.NewValidationError("unknown category", map[string]any{"category": category})
	}
	roster, err := s.technicians.List(ctx)
	if err != nil {
		return ai.TechnicianSuggestion{}, storeError(err)
	}
	candidates := make([]ai.Candidate, 0, len(roster))
	for _, technician := range roster {
		candidates = append(candidates, ai.Candidate{
			ID:       technician.ID,
			Name:     technician.Name,
			Skills:   technician.Skills,
			Workload: technician.Workload,
		})
	}

	if s.client == nil {
		return ai.RankFallback(category, candidates)
	}
	suggestion, err := s.client.SuggestTechnician(ctx, category, description, candidates)
	if err != nil {
		s.logger.Warn("technician suggestion failed", zap.Error(err))
		return ai.TechnicianSuggestion{}, err
	}
	return suggestion, nil
}
