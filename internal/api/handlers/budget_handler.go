package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fintrack/fintrack-be/internal/auth"
	"github.com/fintrack/fintrack-be/internal/models"
	"github.com/fintrack/fintrack-be/internal/services"
)

// BudgetHandler handles HTTP requests for budgets.
type BudgetHandler struct {
	service services.BudgetServiceProvider
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(service services.BudgetServiceProvider) *BudgetHandler {
	return &BudgetHandler{service: service}
}

// BudgetPayload defines the structure for budget create requests.
type BudgetPayload struct {
	Category string   `json:"category" validate:"required"`
	Limit    *float64 `json:"limit" validate:"required,gte=0"`
	Month    string   `json:"month" validate:"required"`
}

// BudgetUpdatePayload defines the structure for limit updates. Category and
// month are immutable and therefore absent.
type BudgetUpdatePayload struct {
	Limit *float64 `json:"limit" validate:"required,gte=0"`
}

// List returns the caller's budgets with spend-derived fields, optionally
// filtered by ?month=YYYY-MM.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())

	statuses, err := h.service.List(claims.UserID, r.URL.Query().Get("month"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if statuses == nil {
		statuses = []models.BudgetStatus{}
	}
	WriteData(w, http.StatusOK, statuses)
}

// Create stores a new budget.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())

	var payload BudgetPayload
	if !decodeValid(w, r, &payload) {
		return
	}

	budget, err := h.service.Create(claims.UserID, models.Budget{
		Category: payload.Category,
		Limit:    *payload.Limit,
		Month:    payload.Month,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, budget)
}

// Update changes a budget's limit.
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	var payload BudgetUpdatePayload
	if !decodeValid(w, r, &payload) {
		return
	}

	budget, err := h.service.UpdateLimit(claims.UserID, id, *payload.Limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, budget)
}

// Delete removes a budget.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(claims.UserID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{})
}
