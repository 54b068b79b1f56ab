// Package sheets stores questionnaire rows in a Google Sheets worksheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/m3rciful/assetbot/core/logger"
	"github.com/m3rciful/assetbot/core/netutil"
)

// lastColumn bounds reads and appends to the fourteen row columns.
const lastColumn = "N"

// ErrSheetNotFound is returned by Check when the worksheet is missing.
var ErrSheetNotFound = errors.New("sheets: worksheet not found")

// Config selects the worksheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	// CredentialsJSON takes precedence over CredentialsFile when set.
	CredentialsJSON string
}

// Store appends rows to one worksheet.
type Store struct {
	svc   *gsheets.Service
	id    string
	sheet string
}

// New authenticates with the service account and returns a Store whose HTTP
// transport retries transient failures. Extra options replace the
// authenticated client, which tests use to point at a local server.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}
	if len(opts) == 0 {
		client, err := authClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = []option.ClientOption{option.WithHTTPClient(client)}
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: new service: %w", err)
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &Store{svc: svc, id: cfg.SpreadsheetID, sheet: sheet}, nil
}

func authClient(ctx context.Context, cfg Config) (*http.Client, error) {
	data := []byte(cfg.CredentialsJSON)
	if len(data) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, errors.New("sheets: credentials file or json is required")
		}
		raw, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("sheets: read credentials: %w", err)
		}
		data = raw
	}
	base := netutil.NewClient(netutil.ClientOptions{RetryStatus: true})
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	creds, err := google.CredentialsFromJSON(ctx, data, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse credentials: %w", err)
	}
	return oauth2.NewClient(ctx, creds.TokenSource), nil
}

func (s *Store) rowRange() string {
	return fmt.Sprintf("'%s'!A:%s", strings.ReplaceAll(s.sheet, "'", "''"), lastColumn)
}

// ReadAll returns every non-empty row of the worksheet as strings.
func (s *Store) ReadAll(ctx context.Context) ([][]string, error) {
	start := time.Now()
	resp, err := s.svc.Spreadsheets.Values.Get(s.id, s.rowRange()).Context(ctx).Do()
	logger.Debug(ctx, "store", "sheets.read",
		slog.String("sheet", s.sheet),
		slog.String("status", logger.Status(err)),
		slog.Duration("took", logger.Took(start)),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", s.sheet, err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRow adds row after the last filled row of the worksheet.
func (s *Store) AppendRow(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}
	start := time.Now()
	_, err := s.svc.Spreadsheets.Values.
		Append(s.id, s.rowRange(), &gsheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	logger.Debug(ctx, "store", "sheets.append",
		slog.String("sheet", s.sheet),
		slog.Int("cells", len(row)),
		slog.String("status", logger.Status(err)),
		slog.Duration("took", logger.Took(start)),
	)
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", s.sheet, err)
	}
	return nil
}

// Check verifies the spreadsheet is reachable and has the worksheet.
func (s *Store) Check(ctx context.Context) error {
	doc, err := s.svc.Spreadsheets.Get(s.id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: open spreadsheet: %w", err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheet {
			logger.Info(ctx, "store", "store.check",
				slog.String("backend", "sheets"),
				slog.String("sheet", s.sheet),
				slog.Int("sheets", len(doc.Sheets)),
			)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrSheetNotFound, s.sheet)
}
