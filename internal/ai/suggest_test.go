package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elotech/helpdesk/internal/config"
	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/pkg/util"
)

// modelServer fakes the chat completions endpoint, returning content as
// the first choice's message body.
func modelServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if status >= 300 {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(config.AIConfig{
		APIKey:         "test-key",
		Model:          "test-model",
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
	})
}

func TestNewClientDisabledWithoutKey(t *testing.T) {
	assert.Nil(t, NewClient(config.AIConfig{}))
}

func TestSuggestCategoryAndPriorityExactMatch(t *testing.T) {
	server := modelServer(t, 200, `{"category":"hardware","priority":"alta"}`)
	defer server.Close()

	result, err := newTestClient(server.URL).SuggestCategoryAndPriority(context.Background(), "computador não liga")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryHardware, result.Category)
	assert.Equal(t, domain.PriorityHigh, result.Priority)
}

func TestSuggestCategoryAndPriorityFallsBackToLastValue(t *testing.T) {
	server := modelServer(t, 200, `{"category":"impressora","priority":"urgentíssima"}`)
	defer server.Close()

	result, err := newTestClient(server.URL).SuggestCategoryAndPriority(context.Background(), "qualquer coisa")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOther, result.Category)
	assert.Equal(t, domain.PriorityCritical, result.Priority)
}

func TestSuggestCategoryAndPrioritySubstringMatch(t *testing.T) {
	server := modelServer(t, 200, `{"category":"soft","priority":"médi"}`)
	defer server.Close()

	result, err := newTestClient(server.URL).SuggestCategoryAndPriority(context.Background(), "erro no sistema")
	require.NoError(t, err)
	assert.Equal(t, domain.CategorySoftware, result.Category)
	assert.Equal(t, domain.PriorityMedium, result.Priority)
}

func TestSuggestCategoryAndPriorityAlwaysInEnum(t *testing.T) {
	raws := []string{
		`{"category":"NETWORK ISSUES","priority":"P1"}`,
		`{"category":"","priority":""}`,
		`{"category":"ACESSO","priority":"BAIXA"}`,
	}
	for _, raw := range raws {
		server := modelServer(t, 200, raw)
		result, err := newTestClient(server.URL).SuggestCategoryAndPriority(context.Background(), "descrição")
		server.Close()
		require.NoError(t, err, raw)
		assert.True(t, result.Category.IsValid(), raw)
		assert.True(t, result.Priority.IsValid(), raw)
	}
}

func TestSuggestCategoryAndPriorityServerError(t *testing.T) {
	server := modelServer(t, 500, "")
	defer server.Close()

	_, err := newTestClient(server.URL).SuggestCategoryAndPriority(context.Background(), "descrição")
	require.Error(t, err)
	assert.Equal(t, "SUGGESTION_FAILED", util.ToDomainError(err).Code)
}

func TestSuggestCategoryAndPriorityMalformedOutput(t *testing.T) {
	server := modelServer(t, 200, `not json at all`)
	defer server.Close()

	_, err := newTestClient(server.URL).SuggestCategoryAndPriority(context.Background(), "descrição")
	require.Error(t, err)
	assert.Equal(t, "SUGGESTION_FAILED", util.ToDomainError(err).Code)
}

func TestSuggestCategoryAndPriorityEmptyDescription(t *testing.T) {
	_, err := newTestClient("http://unused").SuggestCategoryAndPriority(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

func testCandidates() []Candidate {
	return []Candidate{
		{ID: "tech-1", Name: "Roberto", Skills: []domain.TicketCategory{domain.CategoryHardware, domain.CategoryNetwork}, Workload: 3},
		{ID: "tech-2", Name: "Fernanda", Skills: []domain.TicketCategory{domain.CategorySoftware, domain.CategoryAccess}, Workload: 5},
		{ID: "tech-3", Name: "Gabriel", Skills: []domain.TicketCategory{domain.CategoryNetwork, domain.CategorySoftware}, Workload: 2},
	}
}

func TestSuggestTechnicianAcceptsKnownID(t *testing.T) {
	server := modelServer(t, 200, `{"technicianId":"tech-2","reason":"skill match"}`)
	defer server.Close()

	suggestion, err := newTestClient(server.URL).SuggestTechnician(
		context.Background(), domain.CategorySoftware, "erro no sistema", testCandidates())
	require.NoError(t, err)
	assert.Equal(t, "tech-2", suggestion.TechnicianID)
	assert.Equal(t, "skill match", suggestion.Reason)
}

func TestSuggestTechnicianRejectsUnknownID(t *testing.T) {
	server := modelServer(t, 200, fmt.Sprintf(`{"technicianId":%q,"reason":"?"}`, "tech-99"))
	defer server.Close()

	_, err := newTestClient(server.URL).SuggestTechnician(
		context.Background(), domain.CategorySoftware, "erro", testCandidates())
	require.Error(t, err)
	assert.Equal(t, "SUGGESTION_FAILED", util.ToDomainError(err).Code)
}

func TestRankFallbackPrefersSkillThenWorkload(t *testing.T) {
	suggestion, err := RankFallback(domain.CategoryNetwork, testCandidates())
	require.NoError(t, err)
	// tech-1 and tech-3 both know Rede; tech-3 has less workload
	assert.Equal(t, "tech-3", suggestion.TechnicianID)
	assert.NotEmpty(t, suggestion.Reason)
}

func TestRankFallbackNoSkillMatchUsesLeastWorkload(t *testing.T) {
	candidates := []Candidate{
		{ID: "tech-1", Name: "A", Skills: []domain.TicketCategory{domain.CategoryHardware}, Workload: 4},
		{ID: "tech-2", Name: "B", Skills: []domain.TicketCategory{domain.CategorySoftware}, Workload: 1},
	}
	suggestion, err := RankFallback(domain.CategoryAccess, candidates)
	require.NoError(t, err)
	assert.Equal(t, "tech-2", suggestion.TechnicianID)
}

func TestRankFallbackEmptyCandidates(t *testing.T) {
	_, err := RankFallback(domain.CategoryNetwork, nil)
	require.Error(t, err)
}
