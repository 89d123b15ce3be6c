// Package storage persists user profiles, saved budgets, totals
// snapshots and keystroke logs in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the database at dbPath and
// brings the schema up to date.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoginByName returns the profile with the given trimmed name, creating
// it on first login and touching lastVisitedAt otherwise.
func (r *Repository) LoginByName(ctx context.Context, name string) (UserProfile, error) {
	now := time.Now().UTC()

	profile, err := r.profileByName(ctx, name)
	switch {
	case err == sql.ErrNoRows:
		profile = UserProfile{
			ID:            uuid.NewString(),
			Name:          name,
			AwarenessData: json.RawMessage(`{}`),
			LastVisitedAt: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO user_profiles (id, name, last_visited_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			profile.ID, profile.Name, now, now, now)
		if err != nil {
			return UserProfile{}, fmt.Errorf("create profile: %w", err)
		}
		slog.InfoContext(ctx, "Profile created", "user_id", profile.ID, "name", profile.Name)
		return profile, nil
	case err != nil:
		return UserProfile{}, fmt.Errorf("find profile by name: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE user_profiles SET last_visited_at = ?, updated_at = ? WHERE id = ?`,
		now, now, profile.ID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("touch profile: %w", err)
	}
	profile.LastVisitedAt = now

	if profile.Budgets, err = r.budgetsForUser(ctx, profile.ID); err != nil {
		return UserProfile{}, err
	}
	return profile, nil
}

// GetProfile loads a profile with its saved budgets. Returns
// ErrNotFound for an unknown id.
func (r *Repository) GetProfile(ctx context.Context, userID string) (UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, awareness_data, awareness_completed, last_selected_month,
		       last_visited_at, created_at, updated_at
		FROM user_profiles WHERE id = ?`, userID)

	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return UserProfile{}, ErrNotFound
	}
	if err != nil {
		return UserProfile{}, fmt.Errorf("get profile: %w", err)
	}

	if profile.Budgets, err = r.budgetsForUser(ctx, profile.ID); err != nil {
		return UserProfile{}, err
	}
	return profile, nil
}

// SaveAwareness replaces the awareness document and completion flag.
func (r *Repository) SaveAwareness(ctx context.Context, userID string, data json.RawMessage, completed bool) error {
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_profiles
		SET awareness_data = ?, awareness_completed = ?, updated_at = ?
		WHERE id = ?`,
		string(data), completed, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("save awareness: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	slog.InfoContext(ctx, "Awareness saved", "user_id", userID, "completed", completed)
	return nil
}

// UpsertBudget replaces the budget matching the month label exactly, or
// appends a new one after the existing budgets, and records the month
// as the user's last selection.
func (r *Repository) UpsertBudget(ctx context.Context, userID string, budget BudgetRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert budget: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_profiles WHERE id = ?)`, userID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check profile: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_budgets (id, user_id, month_label, position, incomes, expenses, previous_credit, created_at, updated_at)
		VALUES (?, ?, ?,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM user_budgets WHERE user_id = ?),
			?, ?, ?, ?, ?)
		ON CONFLICT(user_id, month_label) DO UPDATE SET
			incomes = excluded.incomes,
			expenses = excluded.expenses,
			previous_credit = excluded.previous_credit,
			updated_at = excluded.updated_at`,
		uuid.NewString(), userID, budget.MonthLabel, userID,
		rawOrEmptyArray(budget.Incomes), rawOrEmptyArray(budget.Expenses),
		rawOrEmptyArray(budget.PreviousCredit), now, now)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE user_profiles SET last_selected_month = ?, updated_at = ? WHERE id = ?`,
		budget.MonthLabel, now, userID)
	if err != nil {
		return fmt.Errorf("update last selected month: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget saved", "user_id", userID, "month", budget.MonthLabel)
	return nil
}

// AppendSnapshot stores a totals snapshot queued for export.
func (r *Repository) AppendSnapshot(ctx context.Context, s Snapshot) (Snapshot, error) {
	s.ID = uuid.NewString()
	s.ExportStatus = ExportPending
	s.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budget_snapshots (id, month_label, total_income, total_expenses, remaining, export_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.MonthLabel, s.TotalIncome, s.TotalExpenses, s.Remaining, s.ExportStatus, s.CreatedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("append snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved",
		"id", s.ID,
		"month", s.MonthLabel,
		"remaining", s.Remaining)
	return s, nil
}

// GetSnapshot loads one snapshot by id.
func (r *Repository) GetSnapshot(ctx context.Context, id string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, month_label, total_income, total_expenses, remaining, export_status, created_at
		FROM budget_snapshots WHERE id = ?`, id)

	var s Snapshot
	err := row.Scan(&s.ID, &s.MonthLabel, &s.TotalIncome, &s.TotalExpenses, &s.Remaining, &s.ExportStatus, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return s, nil
}

// PendingSnapshots returns the oldest snapshots still awaiting export.
func (r *Repository) PendingSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, month_label, total_income, total_expenses, remaining, export_status, created_at
		FROM budget_snapshots
		WHERE export_status = ?
		ORDER BY created_at ASC
		LIMIT ?`, ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.MonthLabel, &s.TotalIncome, &s.TotalExpenses, &s.Remaining, &s.ExportStatus, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkExported records a successful export.
func (r *Repository) MarkExported(ctx context.Context, id string) error {
	if err := r.setExportStatus(ctx, id, ExportDone); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Snapshot marked as exported", "id", id)
	return nil
}

// MarkExportError records a failed export so the sweep can report it.
func (r *Repository) MarkExportError(ctx context.Context, id string) error {
	if err := r.setExportStatus(ctx, id, ExportError); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Snapshot marked with export error", "id", id)
	return nil
}

func (r *Repository) setExportStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE budget_snapshots SET export_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set export status: %w", err)
	}
	return nil
}

// AppendKeystrokes stores one batch of input events.
func (r *Repository) AppendKeystrokes(ctx context.Context, log KeystrokeLog) (KeystrokeLog, error) {
	log.ID = uuid.NewString()
	log.CreatedAt = time.Now().UTC()

	events, err := json.Marshal(log.Events)
	if err != nil {
		return KeystrokeLog{}, fmt.Errorf("marshal events: %w", err)
	}
	metadata := log.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return KeystrokeLog{}, fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO keystroke_logs (id, session_id, user_id, page, events, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.SessionID, log.UserID, log.Page, string(events), string(meta), log.CreatedAt)
	if err != nil {
		return KeystrokeLog{}, fmt.Errorf("append keystrokes: %w", err)
	}
	return log, nil
}

// ListKeystrokes returns the newest 20 batches for a session.
func (r *Repository) ListKeystrokes(ctx context.Context, sessionID string) ([]KeystrokeLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, page, events, metadata, created_at
		FROM keystroke_logs
		WHERE session_id = ?
		ORDER BY created_at DESC
		LIMIT 20`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list keystrokes: %w", err)
	}
	defer rows.Close()

	var out []KeystrokeLog
	for rows.Next() {
		var (
			log    KeystrokeLog
			events string
			meta   string
		)
		if err := rows.Scan(&log.ID, &log.SessionID, &log.UserID, &log.Page, &events, &meta, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan keystroke log: %w", err)
		}
		if err := json.Unmarshal([]byte(events), &log.Events); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &log.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		out = append(out, log)
	}
	return out, rows.Err()
}

func (r *Repository) profileByName(ctx context.Context, name string) (UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, awareness_data, awareness_completed, last_selected_month,
		       last_visited_at, created_at, updated_at
		FROM user_profiles WHERE name = ?`, name)
	return scanProfile(row)
}

func (r *Repository) budgetsForUser(ctx context.Context, userID string) ([]BudgetRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month_label, incomes, expenses, previous_credit
		FROM user_budgets
		WHERE user_id = ?
		ORDER BY position ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []BudgetRecord
	for rows.Next() {
		var (
			b                          BudgetRecord
			incomes, expenses, credits string
		)
		if err := rows.Scan(&b.MonthLabel, &incomes, &expenses, &credits); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Incomes = json.RawMessage(incomes)
		b.Expenses = json.RawMessage(expenses)
		b.PreviousCredit = json.RawMessage(credits)
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanProfile(row *sql.Row) (UserProfile, error) {
	var (
		p         UserProfile
		awareness string
	)
	err := row.Scan(&p.ID, &p.Name, &awareness, &p.AwarenessCompleted, &p.LastSelectedMonth,
		&p.LastVisitedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return UserProfile{}, err
	}
	p.AwarenessData = json.RawMessage(awareness)
	return p, nil
}

func rawOrEmptyArray(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}
