package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

// profilePayload is the profile shape served to clients.
type profilePayload struct {
	ID                 string                 `json:"id"`
	Name               string                 `json:"name"`
	AwarenessCompleted bool                   `json:"awarenessCompleted"`
	AwarenessData      json.RawMessage        `json:"awarenessData"`
	Budgets            []storage.BudgetRecord `json:"budgets"`
	LastSelectedMonth  string                 `json:"lastSelectedMonth"`
}

func toProfilePayload(p storage.UserProfile) profilePayload {
	data := p.AwarenessData
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	budgets := p.Budgets
	if budgets == nil {
		budgets = []storage.BudgetRecord{}
	}
	return profilePayload{
		ID:                 p.ID,
		Name:               p.Name,
		AwarenessCompleted: p.AwarenessCompleted,
		AwarenessData:      data,
		Budgets:            budgets,
		LastSelectedMonth:  p.LastSelectedMonth,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}

	profile, err := s.store.LoginByName(r.Context(), name)
	if err != nil {
		slog.ErrorContext(r.Context(), "Login failed", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to login or create profile", err)
		return
	}

	s.profileCache.Set(profile.ID, profile)
	writeJSON(w, http.StatusOK, toProfilePayload(profile))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	if profile, ok := s.profileCache.Get(userID); ok {
		writeJSON(w, http.StatusOK, toProfilePayload(profile))
		return
	}

	profile, err := s.store.GetProfile(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Profile fetch failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile", err)
		return
	}

	s.profileCache.Set(userID, profile)
	writeJSON(w, http.StatusOK, toProfilePayload(profile))
}

func (s *Server) handleUpdateAwareness(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	var req struct {
		AwarenessData json.RawMessage `json:"awarenessData"`
		Completed     bool            `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := s.store.SaveAwareness(r.Context(), userID, req.AwarenessData, req.Completed)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Awareness save failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save awareness", err)
		return
	}

	s.profileCache.Delete(userID)
	writeJSON(w, http.StatusOK, struct {
		Message   string `json:"message"`
		Completed bool   `json:"completed"`
	}{"Awareness saved", req.Completed})
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	var req struct {
		MonthLabel     string          `json:"monthLabel"`
		Incomes        json.RawMessage `json:"incomes"`
		Expenses       json.RawMessage `json:"expenses"`
		PreviousCredit json.RawMessage `json:"previousCredit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	monthLabel := strings.TrimSpace(req.MonthLabel)
	if monthLabel == "" {
		writeMessage(w, http.StatusBadRequest, "monthLabel is required")
		return
	}

	budget := storage.BudgetRecord{
		MonthLabel:     monthLabel,
		Incomes:        req.Incomes,
		Expenses:       req.Expenses,
		PreviousCredit: req.PreviousCredit,
	}
	err := s.store.UpsertBudget(r.Context(), userID, budget)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget save failed",
			"user_id", userID,
			"month", monthLabel,
			"error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save budget", err)
		return
	}

	s.profileCache.Delete(userID)
	writeJSON(w, http.StatusOK, struct {
		Message           string `json:"message"`
		LastSelectedMonth string `json:"lastSelectedMonth"`
	}{"Budget saved", monthLabel})
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MonthLabel    string `json:"monthLabel"`
		TotalIncome   any    `json:"totalIncome"`
		TotalExpenses any    `json:"totalExpenses"`
		Remaining     any    `json:"remaining"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	monthLabel := strings.TrimSpace(req.MonthLabel)
	if monthLabel == "" {
		writeMessage(w, http.StatusBadRequest, "monthLabel is required")
		return
	}

	totals := make([]float64, 3)
	for i, v := range []any{req.TotalIncome, req.TotalExpenses, req.Remaining} {
		n, ok := numericTotal(v)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "Numeric totals are required")
			return
		}
		totals[i] = n
	}

	snapshot, err := s.store.AppendSnapshot(r.Context(), storage.Snapshot{
		MonthLabel:    monthLabel,
		TotalIncome:   totals[0],
		TotalExpenses: totals[1],
		Remaining:     totals[2],
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot save failed", "month", monthLabel, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save budget snapshot", err)
		return
	}

	if s.metrics != nil {
		s.metrics.SnapshotsCreated.Inc()
	}

	// Fire-and-forget: a publish failure only delays the export until
	// the worker's pending sweep.
	if s.publisher != nil {
		if err := s.publisher.PublishSnapshotExport(r.Context(), snapshot.ID); err != nil {
			slog.WarnContext(r.Context(), "Snapshot export publish failed",
				"snapshot_id", snapshot.ID,
				"error", err)
		}
	}

	writeJSON(w, http.StatusCreated, struct {
		ID        string `json:"id"`
		CreatedAt string `json:"createdAt"`
	}{snapshot.ID, snapshot.CreatedAt.Format(timeFormat)})
}

func (s *Server) handleSaveKeystrokes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string                   `json:"sessionId"`
		UserID    string                   `json:"userId"`
		Page      string                   `json:"page"`
		Events    []storage.KeystrokeEvent `json:"events"`
		Metadata  map[string]string        `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.SessionID == "" {
		writeMessage(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if len(req.Events) == 0 {
		writeMessage(w, http.StatusBadRequest, "events must be a non-empty array")
		return
	}

	log, err := s.store.AppendKeystrokes(r.Context(), storage.KeystrokeLog{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Page:      req.Page,
		Events:    req.Events,
		Metadata:  req.Metadata,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Keystroke save failed",
			"session_id", req.SessionID,
			"error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save keystrokes", err)
		return
	}

	if s.metrics != nil {
		s.metrics.KeystrokeBatches.Inc()
	}
	writeJSON(w, http.StatusCreated, struct {
		ID        string `json:"id"`
		CreatedAt string `json:"createdAt"`
	}{log.ID, log.CreatedAt.Format(timeFormat)})
}

func (s *Server) handleGetKeystrokes(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")

	logs, err := s.store.ListKeystrokes(r.Context(), sessionID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Keystroke fetch failed",
			"session_id", sessionID,
			"error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch keystrokes", err)
		return
	}
	if logs == nil {
		logs = []storage.KeystrokeLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// numericTotal coerces a JSON value into a float the way a loosely
// typed client would send it: numbers pass through, numeric strings
// parse, everything else is rejected.
func numericTotal(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
