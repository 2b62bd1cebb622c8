package rule

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/kontoflyt/internal/rule"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
)

type Handler struct {
	svc *rule.Service
}

func NewHandler(svc *rule.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/apply", h.apply)
	r.Post("/preview", h.preview)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type ruleDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Priority            int             `json:"priority"`
	Enabled             bool            `json:"enabled"`
	MatchField          rule.MatchField `json:"match_field"`
	MatchType           rule.MatchType  `json:"match_type"`
	MatchValue          string          `json:"match_value"`
	MatchValueSecondary string          `json:"match_value_secondary,omitempty"`
	ActionType          rule.ActionType `json:"action_type"`
	ActionValue         string          `json:"action_value"`
	CreatedAt           *time.Time      `json:"created_at,omitempty"`
	UpdatedAt           *time.Time      `json:"updated_at,omitempty"`
}

func (d ruleDTO) toRule() rule.Rule {
	return rule.Rule{
		ID:                  d.ID,
		Name:                d.Name,
		Priority:            d.Priority,
		Enabled:             d.Enabled,
		MatchField:          d.MatchField,
		MatchType:           d.MatchType,
		MatchValue:          d.MatchValue,
		MatchValueSecondary: d.MatchValueSecondary,
		ActionType:          d.ActionType,
		ActionValue:         d.ActionValue,
	}
}

func toDTO(r rule.Rule) ruleDTO {
	d := ruleDTO{
		ID:                  r.ID,
		Name:                r.Name,
		Priority:            r.Priority,
		Enabled:             r.Enabled,
		MatchField:          r.MatchField,
		MatchType:           r.MatchType,
		MatchValue:          r.MatchValue,
		MatchValueSecondary: r.MatchValueSecondary,
		ActionType:          r.ActionType,
		ActionValue:         r.ActionValue,
		UpdatedAt:           r.UpdatedAt,
	}

	if !r.CreatedAt.IsZero() {
		d.CreatedAt = new(r.CreatedAt)
	}

	return d
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]ruleDTO, len(rules))
	for i, rl := range rules {
		resp[i] = toDTO(rl)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	rl, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, rule.ErrNotFound) {
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toDTO(*rl))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req ruleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rl := req.toRule()
	if err := rl.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Create(r.Context(), &rl); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toDTO(rl))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req ruleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rl := req.toRule()
	rl.ID = id

	if err := rl.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Update(r.Context(), &rl); err != nil {
		if errors.Is(err, rule.ErrNotFound) {
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toDTO(rl))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, rule.ErrNotFound) {
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type applyRequest struct {
	DryRun    bool                    `json:"dry_run"`
	Source    *transaction.SourceType `json:"source_type,omitempty"`
	FlowType  *transaction.FlowType   `json:"flow_type,omitempty"`
	StartDate string                  `json:"start_date,omitempty"`
	EndDate   string                  `json:"end_date,omitempty"`
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	filter := transaction.ListFilter{Source: req.Source, FlowType: req.FlowType}

	if req.StartDate != "" {
		t, err := time.Parse(time.DateOnly, req.StartDate)
		if err != nil {
			http.Error(w, "invalid start_date", http.StatusBadRequest)
			return
		}

		filter.StartDate = &t
	}

	if req.EndDate != "" {
		t, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			http.Error(w, "invalid end_date", http.StatusBadRequest)
			return
		}

		filter.EndDate = &t
	}

	res, err := h.svc.ApplyAll(r.Context(), rule.ApplyOptions{Filter: filter, DryRun: req.DryRun})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type previewTransaction struct {
	Date        string                 `json:"date"`
	Description string                 `json:"description"`
	Merchant    string                 `json:"merchant"`
	Amount      int64                  `json:"amount"`
	Status      transaction.Status     `json:"status"`
	Source      transaction.SourceType `json:"source_type"`
}

type previewRequest struct {
	Transaction previewTransaction `json:"transaction"`
	Rules       []ruleDTO          `json:"rules"`
}

type previewAction struct {
	Type     rule.ActionType `json:"type"`
	Value    string          `json:"value"`
	RuleID   uuid.UUID       `json:"rule_id"`
	RuleName string          `json:"rule_name"`
}

type previewResponse struct {
	Actions  []previewAction `json:"actions"`
	Matched  bool            `json:"matched"`
	Updated  bool            `json:"updated"`
	Category string          `json:"category,omitempty"`
	Tags     []string        `json:"tags"`
	Override string          `json:"merchant_override,omitempty"`
	Notes    string          `json:"notes,omitempty"`
	Recurs   bool            `json:"is_recurring"`
}

// preview runs the posted rules against one posted transaction without
// touching storage. When no rules are posted the stored rule set is used.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := &transaction.Transaction{
		Description: req.Transaction.Description,
		Merchant:    req.Transaction.Merchant,
		Amount:      req.Transaction.Amount,
		Status:      req.Transaction.Status,
		Source:      req.Transaction.Source,
	}

	if req.Transaction.Date != "" {
		if t, err := time.Parse(time.DateOnly, req.Transaction.Date); err == nil {
			tx.Date = t
		}
	}

	var rules []rule.Rule

	if req.Rules == nil {
		stored, err := h.svc.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		rules = stored
	}

	for _, d := range req.Rules {
		rules = append(rules, d.toRule())
	}

	actions, out := h.svc.Preview(tx, rules)

	resp := previewResponse{
		Actions:  make([]previewAction, 0, len(actions)),
		Matched:  out.Matched,
		Updated:  out.Updated,
		Category: out.Metadata.Category,
		Tags:     out.Metadata.Tags,
		Override: out.Metadata.MerchantOverride,
		Notes:    out.Metadata.Notes,
		Recurs:   out.Metadata.IsRecurring,
	}

	if resp.Tags == nil {
		resp.Tags = []string{}
	}

	for _, a := range actions {
		resp.Actions = append(resp.Actions, previewAction{
			Type: a.Type, Value: a.Value, RuleID: a.RuleID, RuleName: a.RuleName,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
