package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

type fakeStore struct {
	profiles       map[string]storage.UserProfile
	getCalls       int
	snapshots      []storage.Snapshot
	keystrokeLogs  map[string][]storage.KeystrokeLog
	failSnapshots  bool
	lastAwareness  json.RawMessage
	lastBudget     storage.BudgetRecord
	lastBudgetUser string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:      make(map[string]storage.UserProfile),
		keystrokeLogs: make(map[string][]storage.KeystrokeLog),
	}
}

func (f *fakeStore) LoginByName(_ context.Context, name string) (storage.UserProfile, error) {
	for _, p := range f.profiles {
		if p.Name == name {
			return p, nil
		}
	}
	p := storage.UserProfile{
		ID:            "user-" + name,
		Name:          name,
		AwarenessData: json.RawMessage(`{}`),
	}
	f.profiles[p.ID] = p
	return p, nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (storage.UserProfile, error) {
	f.getCalls++
	p, ok := f.profiles[userID]
	if !ok {
		return storage.UserProfile{}, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) SaveAwareness(_ context.Context, userID string, data json.RawMessage, completed bool) error {
	p, ok := f.profiles[userID]
	if !ok {
		return storage.ErrNotFound
	}
	p.AwarenessData = data
	p.AwarenessCompleted = completed
	f.profiles[userID] = p
	f.lastAwareness = data
	return nil
}

func (f *fakeStore) UpsertBudget(_ context.Context, userID string, budget storage.BudgetRecord) error {
	if _, ok := f.profiles[userID]; !ok {
		return storage.ErrNotFound
	}
	f.lastBudget = budget
	f.lastBudgetUser = userID
	return nil
}

func (f *fakeStore) AppendSnapshot(_ context.Context, s storage.Snapshot) (storage.Snapshot, error) {
	if f.failSnapshots {
		return storage.Snapshot{}, context.DeadlineExceeded
	}
	s.ID = "snap-1"
	s.ExportStatus = storage.ExportPending
	s.CreatedAt = time.Now()
	f.snapshots = append(f.snapshots, s)
	return s, nil
}

func (f *fakeStore) AppendKeystrokes(_ context.Context, log storage.KeystrokeLog) (storage.KeystrokeLog, error) {
	log.ID = "log-1"
	log.CreatedAt = time.Now()
	f.keystrokeLogs[log.SessionID] = append(f.keystrokeLogs[log.SessionID], log)
	return log, nil
}

func (f *fakeStore) ListKeystrokes(_ context.Context, sessionID string) ([]storage.KeystrokeLog, error) {
	return f.keystrokeLogs[sessionID], nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) PublishSnapshotExport(_ context.Context, snapshotID string) error {
	f.published = append(f.published, snapshotID)
	return nil
}

func newTestServer(t *testing.T, store Store, opts Options) *Server {
	t.Helper()
	s := NewServer(":0", store, opts)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store, Options{})

	rec := doJSON(s, http.MethodPost, "/api/auth/login", `{"name":"  dana  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var payload profilePayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Name != "dana" {
		t.Errorf("name = %q, want trimmed %q", payload.Name, "dana")
	}
	if string(payload.AwarenessData) != `{}` {
		t.Errorf("awarenessData = %s, want {}", payload.AwarenessData)
	}
	if payload.Budgets == nil {
		t.Error("budgets must serialize as [], not null")
	}
}

func TestLoginRequiresName(t *testing.T) {
	s := newTestServer(t, newFakeStore(), Options{})
	rec := doJSON(s, http.MethodPost, "/api/auth/login", `{"name":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "name is required") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	s := newTestServer(t, newFakeStore(), Options{})
	rec := doJSON(s, http.MethodGet, "/api/users/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User not found") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestGetProfileServedFromCache(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store, Options{})
	store.profiles["u1"] = storage.UserProfile{ID: "u1", Name: "dana"}

	for i := 0; i < 3; i++ {
		if rec := doJSON(s, http.MethodGet, "/api/users/u1", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	if store.getCalls != 1 {
		t.Errorf("store hit %d times, want 1 (cached afterwards)", store.getCalls)
	}
}

func TestUpdateAwarenessInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store, Options{})
	store.profiles["u1"] = storage.UserProfile{ID: "u1", Name: "dana"}

	doJSON(s, http.MethodGet, "/api/users/u1", "")

	rec := doJSON(s, http.MethodPut, "/api/users/u1/awareness",
		`{"awarenessData":{"isAware":true},"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "Awareness saved") {
		t.Errorf("body = %s", rec.Body)
	}

	// Next read must come from the store, seeing the new flag.
	rec = doJSON(s, http.MethodGet, "/api/users/u1", "")
	if !strings.Contains(rec.Body.String(), `"awarenessCompleted":true`) {
		t.Errorf("stale profile served after awareness update: %s", rec.Body)
	}
}

func TestSaveBudget(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store, Options{})
	store.profiles["u1"] = storage.UserProfile{ID: "u1", Name: "dana"}

	rec := doJSON(s, http.MethodPut, "/api/users/u1/budgets",
		`{"monthLabel":"  March 2025  ","incomes":[{"id":"1","label":"Salary","amount":"9000"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"lastSelectedMonth":"March 2025"`) {
		t.Errorf("body = %s", rec.Body)
	}
	if store.lastBudget.MonthLabel != "March 2025" {
		t.Errorf("stored month = %q, want trimmed", store.lastBudget.MonthLabel)
	}

	rec = doJSON(s, http.MethodPut, "/api/users/u1/budgets", `{"monthLabel":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank month status = %d", rec.Code)
	}

	rec = doJSON(s, http.MethodPut, "/api/users/ghost/budgets", `{"monthLabel":"March 2025"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user status = %d", rec.Code)
	}
}

func TestCreateSnapshot(t *testing.T) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	s := newTestServer(t, store, Options{Publisher: publisher})

	rec := doJSON(s, http.MethodPost, "/api/budgets",
		`{"monthLabel":"March 2025","totalIncome":10000,"totalExpenses":"4500","remaining":5500}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if len(store.snapshots) != 1 || store.snapshots[0].TotalExpenses != 4500 {
		t.Fatalf("snapshots = %+v", store.snapshots)
	}
	if len(publisher.published) != 1 || publisher.published[0] != "snap-1" {
		t.Errorf("published = %v", publisher.published)
	}

	rec = doJSON(s, http.MethodPost, "/api/budgets",
		`{"monthLabel":"March 2025","totalIncome":"abc","totalExpenses":1,"remaining":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Numeric totals are required") {
		t.Errorf("body = %s", rec.Body)
	}

	rec = doJSON(s, http.MethodPost, "/api/budgets", `{"totalIncome":1,"totalExpenses":1,"remaining":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing month status = %d", rec.Code)
	}
}

func TestKeystrokes(t *testing.T) {
	store := newFakeStore()
	s := newTestServer(t, store, Options{})

	rec := doJSON(s, http.MethodPost, "/api/keystrokes",
		`{"sessionId":"sess-1","userId":"u1","page":"budget","events":[{"key":"a","inputValue":"a"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(s, http.MethodPost, "/api/keystrokes", `{"sessionId":"sess-1","events":[]}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "non-empty array") {
		t.Fatalf("empty events status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(s, http.MethodPost, "/api/keystrokes", `{"events":[{"key":"a","inputValue":"a"}]}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "sessionId is required") {
		t.Fatalf("missing session status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(s, http.MethodGet, "/api/keystrokes/sess-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var logs []storage.KeystrokeLog
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].SessionID != "sess-1" {
		t.Errorf("logs = %+v", logs)
	}

	rec = doJSON(s, http.MethodGet, "/api/keystrokes/empty", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty session body = %q, want []", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, newFakeStore(), Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, newFakeStore(), Options{})
	rec := doJSON(s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}
