// Package client talks to the budget REST API and keeps local draft
// state for the terminal client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elishgi/moneyPlusMinus/internal/core"
	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// Profile is the server's profile payload.
type Profile struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	AwarenessCompleted bool                   `json:"awarenessCompleted"`
	AwarenessData      json.RawMessage        `json:"awarenessData"`
	Budgets            []storage.BudgetRecord `json:"budgets"`
	LastSelectedMonth  string                 `json:"lastSelectedMonth"`
}

// BudgetForMonth returns the stored budget matching monthLabel, with
// its raw item arrays normalized into usable rows.
func (p Profile) BudgetForMonth(monthLabel string) (core.BudgetSnapshot, bool) {
	for _, b := range p.Budgets {
		if b.MonthLabel == monthLabel {
			return core.BudgetSnapshot{
				MonthLabel:     b.MonthLabel,
				Incomes:        core.NormalizeRawItems(b.Incomes, core.DefaultIncomeItems),
				Expenses:       core.NormalizeRawItems(b.Expenses, core.DefaultExpenseItems),
				PreviousCredit: core.NormalizeRawItems(b.PreviousCredit, core.DefaultCreditItems),
			}, true
		}
	}
	return core.BudgetSnapshot{}, false
}

// Client is a typed HTTP client for the budget API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Login creates or fetches the profile for the given name.
func (c *Client) Login(ctx context.Context, name string) (Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"name": name}, &profile)
	return profile, err
}

// GetProfile fetches a profile by ID.
func (c *Client) GetProfile(ctx context.Context, userID string) (Profile, error) {
	var profile Profile
	err := c.do(ctx, http.MethodGet, "/api/users/"+userID, nil, &profile)
	return profile, err
}

// SaveAwareness persists the wizard profile for a user.
func (c *Client) SaveAwareness(ctx context.Context, userID string, data any, completed bool) error {
	body := struct {
		AwarenessData any  `json:"awarenessData"`
		Completed     bool `json:"completed"`
	}{data, completed}
	return c.do(ctx, http.MethodPut, "/api/users/"+userID+"/awareness", body, nil)
}

// SaveBudget upserts one month's budget for a user.
func (c *Client) SaveBudget(ctx context.Context, userID string, budget core.BudgetSnapshot) error {
	return c.do(ctx, http.MethodPut, "/api/users/"+userID+"/budgets", budget, nil)
}

// SnapshotResult identifies a stored totals snapshot.
type SnapshotResult struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

// CreateSnapshot records the calculated totals for a month.
func (c *Client) CreateSnapshot(ctx context.Context, monthLabel string, income, expenses, remaining float64) (SnapshotResult, error) {
	body := struct {
		MonthLabel    string  `json:"monthLabel"`
		TotalIncome   float64 `json:"totalIncome"`
		TotalExpenses float64 `json:"totalExpenses"`
		Remaining     float64 `json:"remaining"`
	}{monthLabel, income, expenses, remaining}

	var result SnapshotResult
	err := c.do(ctx, http.MethodPost, "/api/budgets", body, &result)
	return result, err
}

// SendKeystrokes flushes a batch of typing events for a session.
func (c *Client) SendKeystrokes(ctx context.Context, log storage.KeystrokeLog) error {
	return c.do(ctx, http.MethodPost, "/api/keystrokes", log, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Detail = body.Error
	}
	return apiErr
}
