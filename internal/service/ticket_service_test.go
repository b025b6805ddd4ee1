package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/events"
	"github.com/elotech/helpdesk/internal/presence"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/pkg/util"
)

type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(strings.ToLower(ticket.Title), strings.ToLower(*filter.SearchTerm)) {
			continue
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memInteractionRepo struct {
	mu           sync.Mutex
	interactions []domain.TicketInteraction
	seq          int
}

func (r *memInteractionRepo) Create(_ context.Context, interaction *domain.TicketInteraction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	interaction.ID = fmt.Sprintf("interaction-%04d", r.seq)
	interaction.CreatedAt = time.Now()
	r.interactions = append(r.interactions, *interaction)
	return nil
}

func (r *memInteractionRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketInteraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketInteraction
	for _, interaction := range r.interactions {
		if interaction.TicketID == ticketID {
			out = append(out, interaction)
		}
	}
	return out, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) CountAdmins(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, user := range r.users {
		if user.Role == domain.RoleAdmin {
			count++
		}
	}
	return count, nil
}

type memTechnicianRepo struct {
	mu          sync.Mutex
	technicians map[string]domain.Technician
}

func newMemTechnicianRepo() *memTechnicianRepo {
	return &memTechnicianRepo{technicians: map[string]domain.Technician{}}
}

func (r *memTechnicianRepo) Create(_ context.Context, technician *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if technician.ID == "" {
		technician.ID = uuid.NewString()
	}
	technician.CreatedAt = time.Now()
	technician.UpdatedAt = technician.CreatedAt
	r.technicians[technician.ID] = *technician
	return nil
}

func (r *memTechnicianRepo) Update(_ context.Context, technician *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.technicians[technician.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.technicians[technician.ID] = *technician
	return nil
}

func (r *memTechnicianRepo) GetByID(_ context.Context, id string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	technician, ok := r.technicians[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := technician
	return &copied, nil
}

func (r *memTechnicianRepo) List(_ context.Context) ([]domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Technician
	for _, technician := range r.technicians {
		out = append(out, technician)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memTechnicianRepo) AdjustWorkload(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	technician, ok := r.technicians[id]
	if !ok {
		return pgx.ErrNoRows
	}
	technician.Workload += delta
	if technician.Workload < 0 {
		technician.Workload = 0
	}
	r.technicians[id] = technician
	return nil
}

type ticketFixture struct {
	service     *TicketService
	tickets     *memTicketRepo
	technicians *memTechnicianRepo
	users       *memUserRepo
	dispatcher  events.Dispatcher
	requester   *domain.User
	admin       *domain.User
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()

	users := newMemUserRepo()
	requester := &domain.User{Name: "Carlos Silva", Email: "carlos@elotech.com", Role: domain.RoleUser}
	admin := &domain.User{Name: "Ana Souza", Email: "ana@elotech.com", Role: domain.RoleAdmin}
	require.NoError(t, users.Create(context.Background(), requester))
	require.NoError(t, users.Create(context.Background(), admin))

	tickets := newMemTicketRepo()
	technicians := newMemTechnicianRepo()
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewTicketService(TicketDependencies{
		TicketRepo:      tickets,
		InteractionRepo: &memInteractionRepo{},
		UserRepo:        users,
		TechnicianRepo:  technicians,
		Presence:        presence.NewMemoryStore(),
		Dispatcher:      dispatcher,
	})
	return &ticketFixture{
		service:     svc,
		tickets:     tickets,
		technicians: technicians,
		users:       users,
		dispatcher:  dispatcher,
		requester:   requester,
		admin:       admin,
	}
}

func (f *ticketFixture) createTicket(t *testing.T) *domain.TicketSnapshot {
	t.Helper()
	snapshot, err := f.service.CreateTicket(context.Background(), f.requester, TicketCreateInput{
		Title:       "Impressora não funciona",
		Description: "A impressora do setor financeiro parou de imprimir.",
		Category:    domain.CategoryHardware,
		Priority:    domain.PriorityMedium,
	})
	require.NoError(t, err)
	return snapshot
}

func TestCreateTicket(t *testing.T) {
	f := newTicketFixture(t)
	snapshot := f.createTicket(t)

	assert.Equal(t, domain.StatusOpen, snapshot.Status)
	assert.Nil(t, snapshot.TechnicianID)
	assert.False(t, snapshot.UserIsTyping)
	assert.False(t, snapshot.TechnicianIsTyping)
	require.Len(t, snapshot.Interactions, 1)

	genesis := snapshot.Interactions[0]
	assert.Equal(t, domain.GenesisContent, genesis.Content)
	assert.Equal(t, domain.AuthorKindUser, genesis.Author.Kind)
	assert.Equal(t, f.requester.ID, genesis.Author.ID)
	assert.False(t, genesis.IsInternal)

	require.NotNil(t, snapshot.Requester)
	assert.Equal(t, f.requester.Email, snapshot.Requester.Email)
}

func TestCreateTicketValidation(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateTicket(ctx, f.requester, TicketCreateInput{
		Title: "Sem descrição", Category: domain.CategoryNetwork,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)

	_, err = f.service.CreateTicket(ctx, f.requester, TicketCreateInput{
		Title: "x", Description: "y", Category: domain.TicketCategory("Banco de Dados"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

func TestInteractionLifecycle(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	// The log starts with the genesis entry and grows by exactly one
	// per append, regardless of status outcome.
	snapshot, err := f.service.AddInteraction(ctx, f.admin, ticket.ID, "Já estamos verificando.", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingUser, snapshot.Status)
	assert.Len(t, snapshot.Interactions, 2)

	snapshot, err = f.service.AddInteraction(ctx, f.requester, ticket.ID, "Continua sem imprimir.", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, snapshot.Status)
	assert.Len(t, snapshot.Interactions, 3)

	// A second requester reply while already in progress changes nothing.
	snapshot, err = f.service.AddInteraction(ctx, f.requester, ticket.ID, "Alguma novidade?", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, snapshot.Status)
	assert.Len(t, snapshot.Interactions, 4)

	// Internal notes never move the status but still land in the log.
	snapshot, err = f.service.AddInteraction(ctx, f.admin, ticket.ID, "Aguardando peça do fornecedor.", true)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, snapshot.Status)
	assert.Len(t, snapshot.Interactions, 5)
}

func TestInteractionOnResolvedTicketKeepsStatus(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	_, err := f.service.SetStatus(ctx, f.admin, ticket.ID, domain.StatusResolved)
	require.NoError(t, err)

	snapshot, err := f.service.AddInteraction(ctx, f.requester, ticket.ID, "Obrigado!", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, snapshot.Status)
	assert.Len(t, snapshot.Interactions, 2)
}

func TestTechnicianReplyMovesAwaitingUserToInProgress(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	technician := &domain.Technician{Name: "Beto Lima", Email: "beto@elotech.com", Skills: []domain.TicketCategory{domain.CategoryHardware}}
	require.NoError(t, f.technicians.Create(ctx, technician))

	_, err := f.service.AddInteraction(ctx, f.admin, ticket.ID, "Poderia testar de novo?", false)
	require.NoError(t, err)

	snapshot, err := f.service.AddTechnicianInteraction(ctx, f.admin, technician.ID, ticket.ID, "Troquei o cabo no local.", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, snapshot.Status)

	last := snapshot.Interactions[len(snapshot.Interactions)-1]
	assert.Equal(t, domain.AuthorKindTechnician, last.Author.Kind)
	assert.Equal(t, technician.ID, last.Author.ID)
	assert.Nil(t, last.Author.Role)
}

func TestInternalNoteAuthorization(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	_, err := f.service.AddInteraction(ctx, f.requester, ticket.ID, "nota", true)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)
}

func TestInternalNotesRedactedForRequester(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	_, err := f.service.AddInteraction(ctx, f.admin, ticket.ID, "nota interna", true)
	require.NoError(t, err)

	adminView, err := f.service.GetTicket(ctx, f.admin, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, adminView.Interactions, 2)

	userView, err := f.service.GetTicket(ctx, f.requester, ticket.ID)
	require.NoError(t, err)
	require.Len(t, userView.Interactions, 1)
	assert.Equal(t, domain.GenesisContent, userView.Interactions[0].Content)
}

func TestOwnershipEnforcement(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	stranger := &domain.User{Name: "Outro", Email: "outro@elotech.com", Role: domain.RoleUser}
	require.NoError(t, f.users.Create(ctx, stranger))

	_, err := f.service.GetTicket(ctx, stranger, ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)

	_, err = f.service.AddInteraction(ctx, stranger, ticket.ID, "oi", false)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)
}

func TestAdminMutationsRequireAdminRole(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	_, err := f.service.SetStatus(ctx, f.requester, ticket.ID, domain.StatusResolved)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)

	_, err = f.service.SetPriority(ctx, f.requester, ticket.ID, domain.PriorityCritical)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)

	_, err = f.service.AssignTechnician(ctx, f.requester, ticket.ID, nil)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)

	err = f.service.DeleteTicket(ctx, f.requester, ticket.ID)
	assert.Equal(t, "FORBIDDEN", util.ToDomainError(err).Code)
}

func TestSetStatusReopensResolvedTicket(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	_, err := f.service.SetStatus(ctx, f.admin, ticket.ID, domain.StatusResolved)
	require.NoError(t, err)

	snapshot, err := f.service.SetStatus(ctx, f.admin, ticket.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, snapshot.Status)
}

func TestAssignTechnicianAdjustsWorkload(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	first := &domain.Technician{Name: "Beto", Email: "beto@elotech.com"}
	second := &domain.Technician{Name: "Carla", Email: "carla@elotech.com"}
	require.NoError(t, f.technicians.Create(ctx, first))
	require.NoError(t, f.technicians.Create(ctx, second))

	snapshot, err := f.service.AssignTechnician(ctx, f.admin, ticket.ID, &first.ID)
	require.NoError(t, err)
	require.NotNil(t, snapshot.TechnicianID)
	assert.Equal(t, first.ID, *snapshot.TechnicianID)

	got, _ := f.technicians.GetByID(ctx, first.ID)
	assert.Equal(t, 1, got.Workload)

	// Reassignment moves the count between technicians.
	_, err = f.service.AssignTechnician(ctx, f.admin, ticket.ID, &second.ID)
	require.NoError(t, err)
	got, _ = f.technicians.GetByID(ctx, first.ID)
	assert.Equal(t, 0, got.Workload)
	got, _ = f.technicians.GetByID(ctx, second.ID)
	assert.Equal(t, 1, got.Workload)

	// Unassigning releases the count.
	snapshot, err = f.service.AssignTechnician(ctx, f.admin, ticket.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, snapshot.TechnicianID)
	got, _ = f.technicians.GetByID(ctx, second.ID)
	assert.Equal(t, 0, got.Workload)
}

func TestAssignUnknownTechnician(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	unknown := uuid.NewString()
	_, err := f.service.AssignTechnician(ctx, f.admin, ticket.ID, &unknown)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestDeleteTicket(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	t.Run("rejects non-resolved status", func(t *testing.T) {
		ticket := f.createTicket(t)
		err := f.service.DeleteTicket(ctx, f.admin, ticket.ID)
		require.Error(t, err)
		assert.Equal(t, "PRECONDITION_FAILED", util.ToDomainError(err).Code)

		// Nothing was mutated.
		snapshot, err := f.service.GetTicket(ctx, f.admin, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusOpen, snapshot.Status)
	})

	t.Run("removes resolved ticket", func(t *testing.T) {
		ticket := f.createTicket(t)
		_, err := f.service.SetStatus(ctx, f.admin, ticket.ID, domain.StatusResolved)
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteTicket(ctx, f.admin, ticket.ID))

		_, err = f.service.GetTicket(ctx, f.admin, ticket.ID)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
	})

	t.Run("cancelled tickets cannot be deleted", func(t *testing.T) {
		ticket := f.createTicket(t)
		_, err := f.service.SetStatus(ctx, f.admin, ticket.ID, domain.StatusCancelled)
		require.NoError(t, err)

		err = f.service.DeleteTicket(ctx, f.admin, ticket.ID)
		require.Error(t, err)
		assert.Equal(t, "PRECONDITION_FAILED", util.ToDomainError(err).Code)
	})
}

func TestListTicketsScopedByRole(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	f.createTicket(t)

	other := &domain.User{Name: "Outra", Email: "outra@elotech.com", Role: domain.RoleUser}
	require.NoError(t, f.users.Create(ctx, other))
	_, err := f.service.CreateTicket(ctx, other, TicketCreateInput{
		Title:       "VPN fora do ar",
		Description: "Não consigo conectar na VPN.",
		Category:    domain.CategoryNetwork,
	})
	require.NoError(t, err)

	mine, err := f.service.ListTickets(ctx, f.requester, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.service.ListTickets(ctx, f.admin, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTypingFlagsInSnapshots(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	require.NoError(t, f.service.SetTyping(ctx, ticket.ID, presence.SideUser, true))
	snapshot, err := f.service.Snapshot(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.UserIsTyping)
	assert.False(t, snapshot.TechnicianIsTyping)

	require.NoError(t, f.service.SetTyping(ctx, ticket.ID, presence.SideTechnician, true))
	snapshot, err = f.service.Snapshot(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.UserIsTyping)
	assert.True(t, snapshot.TechnicianIsTyping)

	require.NoError(t, f.service.SetTyping(ctx, ticket.ID, presence.SideUser, false))
	snapshot, err = f.service.Snapshot(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, snapshot.UserIsTyping)
	assert.True(t, snapshot.TechnicianIsTyping)
}

func TestSetTypingUnknownTicket(t *testing.T) {
	f := newTicketFixture(t)
	err := f.service.SetTyping(context.Background(), uuid.NewString(), presence.SideUser, true)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", util.ToDomainError(err).Code)
}

func TestStringPreviewKeepsRuneBoundaries(t *testing.T) {
	assert.Equal(t, "Médio", stringPreview("  Médio  ", 120))

	long := strings.Repeat("ã", 200)
	preview := stringPreview(long, 120)
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, strings.Repeat("ã", 117)+"...", preview)

	// Tiny limits truncate without the ellipsis, still on a rune boundary.
	assert.Equal(t, "çã", stringPreview("çãs", 2))
	assert.True(t, utf8.ValidString(stringPreview("não imprime más páginas", 3)))
}
