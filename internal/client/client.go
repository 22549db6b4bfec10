package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fintrack/fintrack-be/internal/apperr"
	"github.com/fintrack/fintrack-be/internal/models"
)

// Client talks to a fintrack server. The session file is its source of
// truth for the credential: a 401 clears it so the caller can re-prompt.
type Client struct {
	baseURL     string
	http        *http.Client
	sessionPath string
	session     Session
}

// New creates a Client, loading any session stored at sessionPath.
func New(baseURL, sessionPath string) (*Client, error) {
	session, err := LoadSession(sessionPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 30 * time.Second},
		sessionPath: sessionPath,
		session:     session,
	}, nil
}

// Session returns the current session snapshot.
func (c *Client) Session() Session { return c.session }

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`

	Count int `json:"count"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session.Active() {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Stale credential: drop it so the next attempt re-prompts login.
		c.session = Session{}
		_ = ClearSession(c.sessionPath)
		return nil, apperr.New(apperr.KindAuth, env.Error)
	}
	if !env.Success {
		return nil, apperr.New(kindForStatus(resp.StatusCode), env.Error)
	}
	return &env, nil
}

func kindForStatus(status int) apperr.Kind {
	switch status {
	case http.StatusBadRequest:
		return apperr.KindValidation
	case http.StatusForbidden:
		return apperr.KindForbidden
	case http.StatusNotFound:
		return apperr.KindNotFound
	case http.StatusConflict:
		return apperr.KindConflict
	default:
		return apperr.KindInternal
	}
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	env, err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":            name,
		"email":           email,
		"password":        password,
		"passwordConfirm": password,
	})
	if err != nil {
		return err
	}
	return c.adoptSession(env)
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	env, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	return c.adoptSession(env)
}

func (c *Client) adoptSession(env *envelope) error {
	if env.Token == "" || env.User == nil {
		return fmt.Errorf("server response missing token or user")
	}
	c.session = Session{Token: env.Token, User: *env.User}
	return c.session.Save(c.sessionPath)
}

// Logout clears the stored session.
func (c *Client) Logout() error {
	c.session = Session{}
	return ClearSession(c.sessionPath)
}

// Me fetches the user behind the current credential.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil)
	if err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func filterQuery(f models.TransactionFilter) string {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.MinAmount != nil {
		q.Set("minAmount", strconv.FormatFloat(*f.MinAmount, 'f', -1, 64))
	}
	if f.MaxAmount != nil {
		q.Set("maxAmount", strconv.FormatFloat(*f.MaxAmount, 'f', -1, 64))
	}
	if f.StartDate != nil {
		q.Set("startDate", f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		q.Set("endDate", f.EndDate.UTC().Format(time.RFC3339))
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListTransactions fetches one page.
func (c *Client) ListTransactions(ctx context.Context, f models.TransactionFilter) (models.TransactionPage, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/transactions"+filterQuery(f), nil)
	if err != nil {
		return models.TransactionPage{}, err
	}
	var items []models.Transaction
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return models.TransactionPage{}, err
	}
	return models.TransactionPage{
		Items: items,
		Count: env.Count,
		Total: env.Total,
		Page:  env.Page,
		Limit: env.Limit,
		Pages: env.Pages,
	}, nil
}

// AllTransactions walks every page of the filter and returns the combined
// set, the snapshot fed to the aggregation layer.
func (c *Client) AllTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	f.Page = 1
	f.Limit = 100

	var all []models.Transaction
	for {
		page, err := c.ListTransactions(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if f.Page >= page.Pages {
			return all, nil
		}
		f.Page++
	}
}

// CreateTransaction records a new transaction.
func (c *Client) CreateTransaction(ctx context.Context, text string, amount float64, category string, date time.Time) (models.Transaction, error) {
	body := map[string]interface{}{
		"text":     text,
		"amount":   amount,
		"category": category,
	}
	if !date.IsZero() {
		body["date"] = date.UTC().Format(time.RFC3339)
	}
	env, err := c.do(ctx, http.MethodPost, "/api/v1/transactions", body)
	if err != nil {
		return models.Transaction{}, err
	}
	var tx models.Transaction
	if err := json.Unmarshal(env.Data, &tx); err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/transactions/"+id, nil)
	return err
}

// Budgets fetches the enriched budget list, optionally for one month.
func (c *Client) Budgets(ctx context.Context, month string) ([]models.BudgetStatus, error) {
	path := "/api/v1/budgets"
	if month != "" {
		path += "?month=" + url.QueryEscape(month)
	}
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var statuses []models.BudgetStatus
	if err := json.Unmarshal(env.Data, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

// CreateBudget stores a new monthly budget.
func (c *Client) CreateBudget(ctx context.Context, category string, limit float64, month string) (models.Budget, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/v1/budgets", map[string]interface{}{
		"category": category,
		"limit":    limit,
		"month":    month,
	})
	if err != nil {
		return models.Budget{}, err
	}
	var b models.Budget
	if err := json.Unmarshal(env.Data, &b); err != nil {
		return models.Budget{}, err
	}
	return b, nil
}
