package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/events"
	"github.com/elotech/helpdesk/internal/lifecycle"
	"github.com/elotech/helpdesk/internal/presence"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/pkg/util"
)

// TicketService coordinates the ticket lifecycle: creation, the
// interaction log, explicit administrative mutations, deletion and the
// typing presence signals. Status decisions are delegated to the pure
// rules in the lifecycle package.
type TicketService struct {
	tickets      repository.TicketRepository
	interactions repository.InteractionRepository
	users        repository.UserRepository
	technicians  repository.TechnicianRepository
	presence     presence.Store
	dispatcher   events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	InteractionRepo repository.InteractionRepository
	UserRepo        repository.UserRepository
	TechnicianRepo  repository.TechnicianRepository
	Presence        presence.Store
	Dispatcher      events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []domain.TicketCategory
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:      deps.TicketRepo,
		interactions: deps.InteractionRepo,
		users:        deps.UserRepo,
		technicians:  deps.TechnicianRepo,
		presence:     deps.Presence,
		dispatcher:   deps.Dispatcher,
	}
}

// CreateTicket files a new ticket for the requester. The ticket starts in
// "Aberto" with no assignee, both typing flags clear and a single
// system-authored genesis interaction.
func (s *TicketService) CreateTicket(ctx context.Context, requester *domain.User, input TicketCreateInput) (*domain.TicketSnapshot, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, util.NewValidationError("title and description required", nil)
	}
	if !input.Category.IsValid() {
		return nil, util.NewValidationError("unknown category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, util.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Category:    input.Category,
		Priority:    priority,
		Status:      domain.StatusOpen,
		RequesterID: requester.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, storeError(err)
	}

	genesis := &domain.TicketInteraction{
		TicketID:   ticket.ID,
		Author:     domain.UserAuthor(requester),
		Content:    domain.GenesisContent,
		IsInternal: false,
	}
	if err := s.interactions.Create(ctx, genesis); err != nil {
		return nil, storeError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketCreated,
		TicketID:    ticket.ID,
		RequesterID: ticket.RequesterID,
		Actor:       events.Actor{Kind: domain.AuthorKindUser, ID: requester.ID},
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Category: ticket.Category,
			Priority: ticket.Priority,
		},
	})
	return s.Snapshot(ctx, ticket.ID)
}

// GetTicket returns the current snapshot, enforcing ownership for
// non-admin callers and stripping internal interactions from their view.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.TicketSnapshot, error) {
	snapshot, err := s.Snapshot(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		if snapshot.RequesterID != caller.ID {
			return nil, util.NewForbidden("access denied")
		}
		redacted := snapshot.WithoutInternal()
		return &redacted, nil
	}
	return snapshot, nil
}

// ListTickets returns tickets visible to the caller: everything for
// admins, own tickets for requesters.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Categories:  filter.Categories,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if !caller.IsAdmin() {
		requesterID := caller.ID
		repoFilter.RequesterID = &requesterID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, storeError(err)
	}
	return tickets, nil
}

// AddInteraction appends an entry authored by the caller. The append is
// unconditional; the resulting status follows the lifecycle rules.
func (s *TicketService) AddInteraction(ctx context.Context, caller *domain.User, ticketID, content string, isInternal bool) (*domain.TicketSnapshot, error) {
	if !caller.IsAdmin() && isInternal {
		return nil, util.NewForbidden("internal comments require administrator role")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && ticket.RequesterID != caller.ID {
		return nil, util.NewForbidden("access denied")
	}
	return s.appendInteraction(ctx, ticket, domain.UserAuthor(caller), content, isInternal)
}

// AddTechnicianInteraction records a reply authored by a technician.
// Technicians have no accounts, so an administrator files it on their
// behalf; the authorship snapshot still carries the technician identity
// and the lifecycle treats it as a non-admin reply.
func (s *TicketService) AddTechnicianInteraction(ctx context.Context, caller *domain.User, technicianID, ticketID, content string, isInternal bool) (*domain.TicketSnapshot, error) {
	if !caller.IsAdmin() {
		return nil, util.NewForbidden("administrator role required")
	}
	technician, err := s.technicians.GetByID(ctx, technicianID)
	if err != nil {
		return nil, notFoundOr(err, "technician")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.appendInteraction(ctx, ticket, domain.TechnicianAuthor(technician), content, isInternal)
}

func (s *TicketService) appendInteraction(ctx context.Context, ticket *domain.Ticket, author domain.InteractionAuthor, content string, isInternal bool) (*domain.TicketSnapshot, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.NewValidationError("content required", nil)
	}

	interaction := &domain.TicketInteraction{
		TicketID:   ticket.ID,
		Author:     author,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, storeError(err)
	}

	ticket.Status = lifecycle.NextStatus(ticket.Status, author, isInternal)
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, storeError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketInteractionAdded,
		TicketID:    ticket.ID,
		RequesterID: ticket.RequesterID,
		Actor:       events.Actor{Kind: author.Kind, ID: author.ID},
		Payload: events.TicketInteractionAddedPayload{
			InteractionID: interaction.ID,
			IsInternal:    isInternal,
			NewStatus:     ticket.Status,
			BodyPreview:   stringPreview(content, 120),
		},
	})
	return s.Snapshot(ctx, ticket.ID)
}

// SetStatus is an explicit administrative overwrite. It bypasses the
// automatic rules; resolved and cancelled tickets can be re-opened here.
func (s *TicketService) SetStatus(ctx context.Context, caller *domain.User, ticketID string, status domain.TicketStatus) (*domain.TicketSnapshot, error) {
	if !caller.IsAdmin() {
		return nil, util.NewForbidden("administrator role required")
	}
	if !status.IsValid() {
		return nil, util.NewValidationError("unknown status", map[string]any{"status": status})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	old := ticket.Status
	ticket.Status = status
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, storeError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketStatusChanged,
		TicketID:    ticket.ID,
		RequesterID: ticket.RequesterID,
		Actor:       events.Actor{Kind: domain.AuthorKindUser, ID: caller.ID},
		Payload:     events.TicketStatusChangedPayload{OldStatus: old, NewStatus: status},
	})
	return s.Snapshot(ctx, ticket.ID)
}

// SetPriority is an explicit administrative overwrite.
func (s *TicketService) SetPriority(ctx context.Context, caller *domain.User, ticketID string, priority domain.TicketPriority) (*domain.TicketSnapshot, error) {
	if !caller.IsAdmin() {
		return nil, util.NewForbidden("administrator role required")
	}
	if !priority.IsValid() {
		return nil, util.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	old := ticket.Priority
	ticket.Priority = priority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, storeError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketPriorityChanged,
		TicketID:    ticket.ID,
		RequesterID: ticket.RequesterID,
		Actor:       events.Actor{Kind: domain.AuthorKindUser, ID: caller.ID},
		Payload:     events.TicketPriorityChangedPayload{OldPriority: old, NewPriority: priority},
	})
	return s.Snapshot(ctx, ticket.ID)
}

// AssignTechnician sets or clears the assignment. Workload counters are
// adjusted by one in each direction; the adjustment is best effort and
// not transactional with the ticket update.
func (s *TicketService) AssignTechnician(ctx context.Context, caller *domain.User, ticketID string, technicianID *string) (*domain.TicketSnapshot, error) {
	if !caller.IsAdmin() {
		return nil, util.NewForbidden("administrator role required")
	}
	if technicianID != nil {
		if _, err := s.technicians.GetByID(ctx, *technicianID); err != nil {
			return nil, notFoundOr(err, "technician")
		}
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	previous := ticket.TechnicianID
	ticket.TechnicianID = technicianID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, storeError(err)
	}

	if previous != nil && (technicianID == nil || *previous != *technicianID) {
		_ = s.technicians.AdjustWorkload(ctx, *previous, -1)
	}
	if technicianID != nil && (previous == nil || *previous != *technicianID) {
		_ = s.technicians.AdjustWorkload(ctx, *technicianID, 1)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketAssigned,
		TicketID:    ticket.ID,
		RequesterID: ticket.RequesterID,
		Actor:       events.Actor{Kind: domain.AuthorKindUser, ID: caller.ID},
		Payload:     events.TicketAssignedPayload{TechnicianID: technicianID},
	})
	return s.Snapshot(ctx, ticket.ID)
}

// DeleteTicket permanently removes a resolved ticket and its interaction
// log. Any other status fails the precondition and mutates nothing.
func (s *TicketService) DeleteTicket(ctx context.Context, caller *domain.User, ticketID string) error {
	if !caller.IsAdmin() {
		return util.NewForbidden("administrator role required")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !lifecycle.IsDeletable(ticket.Status) {
		return util.NewPreconditionFailed("only resolved tickets can be deleted", map[string]any{"status": ticket.Status})
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return storeError(err)
	}
	_ = s.presence.Clear(ctx, ticketID)

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketDeleted,
		TicketID:    ticket.ID,
		RequesterID: ticket.RequesterID,
		Actor:       events.Actor{Kind: domain.AuthorKindUser, ID: caller.ID},
	})
	return nil
}

// SetTyping records a typing presence flag. Accepted in any status;
// setting the same value twice is a no-op at the store level but still
// publishes a snapshot, keeping delivery at-least-once.
func (s *TicketService) SetTyping(ctx context.Context, ticketID string, side presence.Side, typing bool) error {
	if !side.IsValid() {
		return util.NewValidationError("unknown typing side", map[string]any{"side": side})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.presence.SetTyping(ctx, ticketID, side, typing); err != nil {
		return storeError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketTypingChanged,
		TicketID:    ticket.ID,
		RequesterID: ticket.RequesterID,
		Payload:     events.TicketTypingChangedPayload{Side: string(side), Typing: typing},
	})
	return nil
}

// Snapshot assembles the full observable state of one ticket. The result
// includes internal interactions; callers redact for non-admin viewers.
func (s *TicketService) Snapshot(ctx context.Context, ticketID string) (*domain.TicketSnapshot, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	interactions, err := s.interactions.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, storeError(err)
	}
	typing, err := s.presence.GetTyping(ctx, ticketID)
	if err != nil {
		return nil, storeError(err)
	}
	requester, err := s.users.GetByID(ctx, ticket.RequesterID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, storeError(err)
	}

	return &domain.TicketSnapshot{
		Ticket:             *ticket,
		Requester:          requester,
		Interactions:       interactions,
		UserIsTyping:       typing.User,
		TechnicianIsTyping: typing.Technician,
	}, nil
}

// Tombstone builds the final snapshot emitted after deletion.
func Tombstone(ticketID, requesterID string) domain.TicketSnapshot {
	return domain.TicketSnapshot{
		Ticket:  domain.Ticket{ID: ticketID, RequesterID: requesterID},
		Deleted: true,
	}
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket")
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(resource, nil)
	}
	return util.NewStoreUnavailable(err)
}

func storeError(err error) error {
	var domainErr *util.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound("resource", nil)
	}
	return util.NewStoreUnavailable(err)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
