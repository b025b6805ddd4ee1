package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/pkg/util"
)

// Classification is the result of the category/priority suggestion.
type Classification struct {
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// Candidate describes one technician offered to the ranking model.
type Candidate struct {
	ID       string                  `json:"technicianId"`
	Name     string                  `json:"name"`
	Skills   []domain.TicketCategory `json:"skills"`
	Workload int                     `json:"workload"`
}

// TechnicianSuggestion is the result of the assignment suggestion.
type TechnicianSuggestion struct {
	TechnicianID string `json:"technicianId"`
	Reason       string `json:"reason"`
}

const classifyPrompt = `You are an AI assistant helping to categorize IT support tickets.
Based on the ticket description, suggest a category and a priority.
Respond with a JSON object: {"category": "...", "priority": "..."}.`

const rankPrompt = `You are an AI assistant helping to assign IT support tickets to the most
appropriate technician. Consider the ticket category, each technician's skills
and their current workload. Respond with a JSON object:
{"technicianId": "...", "reason": "..."}.`

// SuggestCategoryAndPriority classifies a free-text description onto the
// fixed category and priority enumerations. The raw model strings are
// mapped by exact case-insensitive match, then substring containment,
// then the final enumeration value.
func (c *Client) SuggestCategoryAndPriority(ctx context.Context, description string) (Classification, error) {
	if strings.TrimSpace(description) == "" {
		return Classification{}, util.NewValidationError("description required", nil)
	}

	var raw struct {
		Category string `json:"category"`
		Priority string `json:"priority"`
	}
	if err := c.complete(ctx, classifyPrompt, "Description: "+description, &raw); err != nil {
		return Classification{}, err
	}

	return Classification{
		Category: domain.TicketCategory(closestMatch(raw.Category, categoryStrings())),
		Priority: domain.TicketPriority(closestMatch(raw.Priority, priorityStrings())),
	}, nil
}

// SuggestTechnician asks the model to rank candidates for a ticket. The
// ranking policy is the model's; this side only validates that the chosen
// id is one of the offered candidates.
func (c *Client) SuggestTechnician(ctx context.Context, category domain.TicketCategory, description string, candidates []Candidate) (TechnicianSuggestion, error) {
	if len(candidates) == 0 {
		return TechnicianSuggestion{}, util.NewValidationError("no technicians available", nil)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Ticket Category: %s\nTicket Description: %s\nTechnicians:\n", category, description)
	for _, candidate := range candidates {
		fmt.Fprintf(&prompt, "- Technician ID: %s, Name: %s, Workload: %d, Skills: %s\n",
			candidate.ID, candidate.Name, candidate.Workload, joinSkills(candidate.Skills))
	}

	var suggestion TechnicianSuggestion
	if err := c.complete(ctx, rankPrompt, prompt.String(), &suggestion); err != nil {
		return TechnicianSuggestion{}, err
	}

	for _, candidate := range candidates {
		if candidate.ID == suggestion.TechnicianID {
			return suggestion, nil
		}
	}
	return TechnicianSuggestion{}, util.NewSuggestionFailed(
		fmt.Errorf("model suggested unknown technician %q", suggestion.TechnicianID))
}

// RankFallback is the deterministic ranking used when no model is
// configured: skill match first, then least workload, then name for a
// stable order.
func RankFallback(category domain.TicketCategory, candidates []Candidate) (TechnicianSuggestion, error) {
	if len(candidates) == 0 {
		return TechnicianSuggestion{}, util.NewValidationError("no technicians available", nil)
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		iSkilled := hasSkill(ranked[i], category)
		jSkilled := hasSkill(ranked[j], category)
		if iSkilled != jSkilled {
			return iSkilled
		}
		if ranked[i].Workload != ranked[j].Workload {
			return ranked[i].Workload < ranked[j].Workload
		}
		return ranked[i].Name < ranked[j].Name
	})

	best := ranked[0]
	reason := fmt.Sprintf("menor carga de trabalho (%d chamados)", best.Workload)
	if hasSkill(best, category) {
		reason = fmt.Sprintf("habilidade em %s e menor carga de trabalho (%d chamados)", category, best.Workload)
	}
	return TechnicianSuggestion{TechnicianID: best.ID, Reason: reason}, nil
}

func hasSkill(candidate Candidate, category domain.TicketCategory) bool {
	for _, skill := range candidate.Skills {
		if skill == category {
			return true
		}
	}
	return false
}

// closestMatch maps a raw model string onto an allowed enumeration:
// exact case-insensitive match, then substring containment, then the last
// allowed value as the catch-all.
func closestMatch(value string, allowed []string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if strings.ToLower(candidate) == lower {
			return candidate
		}
	}
	if lower != "" {
		for _, candidate := range allowed {
			if strings.Contains(strings.ToLower(candidate), lower) {
				return candidate
			}
		}
	}
	return allowed[len(allowed)-1]
}

func categoryStrings() []string {
	result := make([]string, 0, len(domain.TicketCategories))
	for _, category := range domain.TicketCategories {
		result = append(result, string(category))
	}
	return result
}

func priorityStrings() []string {
	result := make([]string, 0, len(domain.TicketPriorities))
	for _, priority := range domain.TicketPriorities {
		result = append(result, string(priority))
	}
	return result
}

func joinSkills(skills []domain.TicketCategory) string {
	parts := make([]string, 0, len(skills))
	for _, skill := range skills {
		parts = append(parts, string(skill))
	}
	return strings.Join(parts, ", ")
}
