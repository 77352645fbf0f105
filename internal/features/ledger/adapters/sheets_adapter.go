package adapter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dropship-reconciler/internal/core/config"
	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/core/resilience"
	"dropship-reconciler/internal/features/reconciliation/domain"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsAdapter implements the ledger ports on a Google Sheets worksheet.
type SheetsAdapter struct {
	values    *sheets.SpreadsheetsValuesService
	sheetKey  string
	worksheet string

	mu     sync.Mutex
	schema *Schema
	logger *zap.Logger
}

// NewSheetsAdapter creates a new SheetsAdapter. Without options it
// authenticates with the service account key in cfg.CredentialsFile.
func NewSheetsAdapter(ctx context.Context, cfg config.LedgerConfig, opts ...option.ClientOption) (*SheetsAdapter, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &SheetsAdapter{
		values:    srv.Spreadsheets.Values,
		sheetKey:  cfg.SheetKey,
		worksheet: cfg.Worksheet,
		logger:    logger.Named("ledger.sheets"),
	}, nil
}

// GetRows reads the whole worksheet. The header is parsed again on every
// read so column moves are picked up.
func (a *SheetsAdapter) GetRows(ctx context.Context) ([]domain.LedgerRow, error) {
	resp, err := a.values.Get(a.sheetKey, a.sheetRange("")).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("read worksheet", err)
	}

	schema, rows := Rows(toStrings(resp.Values))

	a.mu.Lock()
	a.schema = &schema
	a.mu.Unlock()

	a.logger.Debug("Worksheet read", zap.Int("rows", len(rows)))
	return rows, nil
}

// UpdateStatusCell writes one status cell.
func (a *SheetsAdapter) UpdateStatusCell(ctx context.Context, position int, status domain.LedgerStatus) error {
	if position < firstDataRow {
		return fmt.Errorf("row %d is not a data row", position)
	}

	schema, err := a.currentSchema(ctx)
	if err != nil {
		return err
	}

	cell := fmt.Sprintf("%s%d", columnLetter(schema.StatusColumn()), position)
	body := &sheets.ValueRange{Values: [][]interface{}{{string(status)}}}

	_, err = a.values.Update(a.sheetKey, a.sheetRange(cell), body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return classify("update cell "+cell, err)
	}
	return nil
}

// AppendRow adds a row after the last row of the worksheet table.
func (a *SheetsAdapter) AppendRow(ctx context.Context, row domain.LedgerRow) error {
	schema, err := a.currentSchema(ctx)
	if err != nil {
		return err
	}

	values := schema.Values(row)
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	_, err = a.values.Append(a.sheetKey, a.sheetRange(""), &sheets.ValueRange{Values: [][]interface{}{cells}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return classify("append row", err)
	}
	return nil
}

// currentSchema returns the cached schema, reading the header row if needed.
func (a *SheetsAdapter) currentSchema(ctx context.Context) (Schema, error) {
	a.mu.Lock()
	cached := a.schema
	a.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	resp, err := a.values.Get(a.sheetKey, a.sheetRange("1:1")).Context(ctx).Do()
	if err != nil {
		return Schema{}, classify("read header", err)
	}

	var header []string
	if values := toStrings(resp.Values); len(values) > 0 {
		header = values[0]
	}
	schema := ParseHeader(header)

	a.mu.Lock()
	a.schema = &schema
	a.mu.Unlock()
	return schema, nil
}

func (a *SheetsAdapter) sheetRange(cells string) string {
	if cells == "" {
		return fmt.Sprintf("'%s'", a.worksheet)
	}
	return fmt.Sprintf("'%s'!%s", a.worksheet, cells)
}

// classify marks quota and server errors as transient so the retrying ledger retries them.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.Code) {
		return resilience.NewTransientError(fmt.Errorf("sheets: %s: %w", op, err), apiErr.Code)
	}
	return fmt.Errorf("sheets: %s: %w", op, err)
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				out[i][j] = fmt.Sprint(v)
			}
		}
	}
	return out
}
