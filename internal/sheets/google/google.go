// Package google appends totals snapshots to a Google Sheets
// spreadsheet using an OAuth client and stored token.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "github.com/elishgi/moneyPlusMinus/internal/sheets"
	"github.com/elishgi/moneyPlusMinus/internal/storage"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.SnapshotAppender = (*Client)(nil)

// Config carries spreadsheet coordinates and OAuth material. The
// client and token can be given inline as JSON or as file paths;
// inline wins when both are set.
type Config struct {
	SpreadsheetID string
	SheetName     string

	OAuthClientJSON string
	OAuthTokenJSON  string
	OAuthClientFile string
	OAuthTokenFile  string
}

// New creates a Sheets client from the config.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Snapshots"
	}

	clientJSON, err := materialJSON(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth client: %w", err)
	}
	tokenJSON, err := materialJSON(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}

	oauthCfg, err := googleoauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets sink ready",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// Append writes one snapshot row and returns the updated range as the
// row reference.
func (c *Client) Append(ctx context.Context, snap storage.Snapshot) (string, error) {
	values := &gsheet.ValueRange{
		Values: [][]interface{}{snapshotRow(snap)},
	}

	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.sheetName+"!A:F", values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append snapshot row: %w", err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Snapshot appended to Google Sheets",
		"snapshot_id", snap.ID,
		"range", ref)
	return ref, nil
}

// snapshotRow renders the spreadsheet columns: created-at, month,
// income, expenses, remaining, snapshot id.
func snapshotRow(snap storage.Snapshot) []interface{} {
	return []interface{}{
		snap.CreatedAt.Format(time.RFC3339),
		snap.MonthLabel,
		formatTotal(snap.TotalIncome),
		formatTotal(snap.TotalExpenses),
		formatTotal(snap.Remaining),
		snap.ID,
	}
}

func formatTotal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func materialJSON(inline, file string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if file == "" {
		return nil, errors.New("neither inline JSON nor file path provided")
	}
	return os.ReadFile(file)
}
