package merchant

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
)

type Handler struct {
	svc *merchant.Service
}

func NewHandler(svc *merchant.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/normalize", h.normalize)
	r.Post("/aliases", h.learn)
}

type normalizeResponse struct {
	Raw      string        `json:"raw"`
	Merchant string        `json:"merchant"`
	Kind     merchant.Kind `json:"kind"`
}

func (h *Handler) normalize(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("raw")
	if raw == "" {
		http.Error(w, "raw query parameter is required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Resolve(r.Context(), raw, r.URL.Query()["fallback"]...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(normalizeResponse{
		Raw:      res.Raw,
		Merchant: res.Merchant,
		Kind:     res.Kind,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type learnRequest struct {
	RawPattern        string `json:"raw_pattern"`
	PreferredMerchant string `json:"preferred_merchant"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.RawPattern == "" || req.PreferredMerchant == "" {
		http.Error(w, "raw_pattern and preferred_merchant are required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Learn(r.Context(), req.RawPattern, req.PreferredMerchant); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
