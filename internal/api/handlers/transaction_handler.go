package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fintrack/fintrack-be/internal/auth"
	"github.com/fintrack/fintrack-be/internal/models"
	"github.com/fintrack/fintrack-be/internal/services"
)

// TransactionHandler handles HTTP requests for transactions.
type TransactionHandler struct {
	service services.TransactionServiceProvider
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service services.TransactionServiceProvider) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// TransactionPayload defines the structure for create requests.
type TransactionPayload struct {
	Text     string   `json:"text" validate:"required"`
	Amount   *float64 `json:"amount" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Date     *string  `json:"date"` // RFC3339 or "2006-01-02"; empty means now
}

// TransactionUpdatePayload defines the structure for partial updates.
type TransactionUpdatePayload struct {
	Text     *string  `json:"text"`
	Amount   *float64 `json:"amount"`
	Category *string  `json:"category"`
	Date     *string  `json:"date"`
}

func parseDateParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// parseFilter reads the optional query parameters of the listing endpoint.
func parseFilter(r *http.Request) (models.TransactionFilter, error) {
	q := r.URL.Query()
	filter := models.TransactionFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		SortBy:   q.Get("sortBy"),
	}

	if v := q.Get("minAmount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid minAmount")
		}
		filter.MinAmount = &f
	}
	if v := q.Get("maxAmount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid maxAmount")
		}
		filter.MaxAmount = &f
	}
	if v := q.Get("startDate"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseDateParam(v)
		if err != nil {
			return filter, err
		}
		// A bare date as upper bound means "through that whole day".
		if len(v) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		filter.EndDate = &t
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("invalid page")
		}
		filter.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("invalid limit")
		}
		filter.Limit = n
	}
	return filter, nil
}

// List returns one page of the caller's transactions.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		WriteErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.List(claims.UserID, filter)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":  page.Items,
		"count": page.Count,
		"total": page.Total,
		"page":  page.Page,
		"limit": page.Limit,
		"pages": page.Pages,
	})
}

// Create records a new transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())

	var payload TransactionPayload
	if !decodeValid(w, r, &payload) {
		return
	}

	tx := models.Transaction{
		Text:     payload.Text,
		Amount:   *payload.Amount,
		Category: payload.Category,
	}
	if payload.Date != nil && *payload.Date != "" {
		t, err := parseDateParam(*payload.Date)
		if err != nil {
			WriteErrorMsg(w, http.StatusBadRequest, err.Error())
			return
		}
		tx.Date = t
	}

	created, err := h.service.Create(claims.UserID, tx)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, created)
}

// Update partially replaces fields of a transaction.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	var payload TransactionUpdatePayload
	if !decodeValid(w, r, &payload) {
		return
	}

	upd := services.TransactionUpdate{
		Text:     payload.Text,
		Amount:   payload.Amount,
		Category: payload.Category,
	}
	if payload.Date != nil && *payload.Date != "" {
		t, err := parseDateParam(*payload.Date)
		if err != nil {
			WriteErrorMsg(w, http.StatusBadRequest, err.Error())
			return
		}
		upd.Date = &t
	}

	updated, err := h.service.Update(claims.UserID, id, upd)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, updated)
}

// Delete removes a transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(claims.UserID, id); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, map[string]interface{}{})
}

// Export streams all of the caller's transactions matching the filter as CSV.
func (h *TransactionHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		WriteErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Page = 1
	filter.Limit = 100

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "text", "amount", "category", "date"})

	for {
		page, err := h.service.List(claims.UserID, filter)
		if err != nil {
			// Headers are already out; just stop the stream.
			return
		}
		for _, tx := range page.Items {
			cw.Write([]string{
				tx.ID,
				tx.Text,
				strconv.FormatFloat(tx.Amount, 'f', 2, 64),
				tx.Category,
				tx.Date.UTC().Format(time.RFC3339),
			})
		}
		if filter.Page >= page.Pages {
			break
		}
		filter.Page++
	}
	cw.Flush()
}
