package rule_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	ruleHandler "github.com/MrJamesThe3rd/kontoflyt/internal/http/rule"
	"github.com/MrJamesThe3rd/kontoflyt/internal/rule"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

func newRouter(repo *rule.MockRepository, txs *rule.MockTransactionStore) http.Handler {
	router := chi.NewRouter()
	ruleHandler.NewHandler(rule.NewService(repo, txs, rule.DefaultInstantPaymentCategory)).Routes(router)

	return router
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	return rec
}

func TestCreate(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMocks func(repo *rule.MockRepository)
		wantCode   int
	}

	tests := []testCase{
		{
			name: "Valid rule",
			body: `{"name":"Dagligvarer","priority":10,"enabled":true,"match_field":"merchant",
				"match_type":"contains","match_value":"kiwi","action_type":"set_category","action_value":"Mat"}`,
			setupMocks: func(repo *rule.MockRepository) {
				repo.EXPECT().CreateRule(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, r *rule.Rule) error {
						r.ID = uuid.New()
						return nil
					})
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "Numeric match on text field",
			body: `{"name":"x","match_field":"description","match_type":"greater_than",
				"match_value":"10","action_type":"set_category","action_value":"Mat"}`,
			setupMocks: func(*rule.MockRepository) {},
			wantCode:   http.StatusBadRequest,
		},
		{
			name:       "Malformed body",
			body:       `{`,
			setupMocks: func(*rule.MockRepository) {},
			wantCode:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := rule.NewMockRepository(ctrl)
			tt.setupMocks(repo)

			rec := do(newRouter(repo, rule.NewMockTransactionStore(ctrl)), http.MethodPost, "/", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := rule.NewMockRepository(ctrl)
	id := uuid.New()
	repo.EXPECT().GetRule(gomock.Any(), id).Return(nil, rule.ErrNotFound)

	rec := do(newRouter(repo, rule.NewMockTransactionStore(ctrl)), http.MethodGet, "/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApply(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := rule.NewMockRepository(ctrl)
	txs := rule.NewMockTransactionStore(ctrl)

	repo.EXPECT().ListRules(gomock.Any(), true).Return([]rule.Rule{{
		ID: uuid.New(), Name: "Mat", Priority: 1, Enabled: true,
		MatchField: rule.FieldDescription, MatchType: rule.MatchContains, MatchValue: "kiwi",
		ActionType: rule.ActionSetCategory, ActionValue: "Mat",
	}}, nil)
	txs.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, f transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, f.StartDate)
			return []*transaction.Transaction{
				{ID: uuid.New(), Description: "KIWI 505"},
				{ID: uuid.New(), Description: "KIWI 606"},
			}, nil
		})
	txs.EXPECT().UpdateMetadata(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	txs.EXPECT().UpdateMetadata(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	rec := do(newRouter(repo, txs), http.MethodPost, "/apply", `{"start_date":"2026-01-01"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got rule.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, rule.BatchResult{Processed: 2, Matched: 1, Updated: 1, CategoryCandidates: 1, Errors: 1}, got)
}

func TestPreview(t *testing.T) {
	ctrl := gomock.NewController(t)

	body := `{
		"transaction": {"date":"2026-03-02","description":"VISA 100021 ELKJOP.NO","amount":-99900,"source_type":"pdf"},
		"rules": [
			{"name":"Elektronikk","priority":2,"enabled":true,"match_field":"merchant","match_type":"exact",
			 "match_value":"elkjop","action_type":"set_category","action_value":"Elektronikk"},
			{"name":"Stort","priority":1,"enabled":true,"match_field":"amount","match_type":"greater_than",
			 "match_value":"500","action_type":"add_tag","action_value":"stort kjøp"}
		]
	}`

	rec := do(newRouter(rule.NewMockRepository(ctrl), rule.NewMockTransactionStore(ctrl)), http.MethodPost, "/preview", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Actions []struct {
			RuleName string `json:"rule_name"`
		} `json:"actions"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
		Updated  bool     `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	require.Len(t, got.Actions, 2)
	assert.Equal(t, "Stort", got.Actions[0].RuleName)
	assert.Equal(t, "Elektronikk", got.Category)
	assert.Equal(t, []string{"stort kjøp"}, got.Tags)
	assert.True(t, got.Updated)
}
