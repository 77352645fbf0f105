package adapter

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"dropship-reconciler/internal/core/logger"
	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// XLSXAdapter implements the ledger ports on a local workbook. The file is
// reopened on every call so edits made outside the process are seen.
type XLSXAdapter struct {
	path      string
	worksheet string

	mu     sync.Mutex
	logger *zap.Logger
}

// NewXLSXAdapter creates a new XLSXAdapter. A missing workbook is created
// with the canonical header.
func NewXLSXAdapter(path, worksheet string) (*XLSXAdapter, error) {
	a := &XLSXAdapter{
		path:      path,
		worksheet: worksheet,
		logger:    logger.Named("ledger.xlsx"),
	}
	if err := a.ensureWorkbook(); err != nil {
		return nil, err
	}
	return a, nil
}

// GetRows reads every data row of the worksheet.
func (a *XLSXAdapter) GetRows(ctx context.Context) ([]domain.LedgerRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, sheet, err := a.open()
	if err != nil {
		return nil, err
	}

	_, rows := Rows(sheetValues(sheet))
	return rows, nil
}

// UpdateStatusCell writes one status cell and saves the workbook.
func (a *XLSXAdapter) UpdateStatusCell(ctx context.Context, position int, status domain.LedgerStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if position < firstDataRow {
		return eris.Errorf("xlsx: row %d is not a data row", position)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	file, sheet, err := a.open()
	if err != nil {
		return err
	}
	if position > len(sheet.Rows) {
		return eris.Errorf("xlsx: row %d out of range (sheet has %d rows)", position, len(sheet.Rows))
	}

	schema := ParseHeader(rowToStrings(sheet.Rows[0]))
	cell(sheet, position-1, schema.StatusColumn()).SetString(string(status))

	if err := file.Save(a.path); err != nil {
		return eris.Wrap(err, "xlsx: save workbook")
	}
	a.logger.Debug("Status cell written", zap.Int("row", position), zap.String("status", string(status)))
	return nil
}

// AppendRow adds a row below the last row and saves the workbook.
func (a *XLSXAdapter) AppendRow(ctx context.Context, row domain.LedgerRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	file, sheet, err := a.open()
	if err != nil {
		return err
	}

	var header []string
	if len(sheet.Rows) > 0 {
		header = rowToStrings(sheet.Rows[0])
	}

	xrow := sheet.AddRow()
	for _, v := range ParseHeader(header).Values(row) {
		xrow.AddCell().SetString(v)
	}

	if err := file.Save(a.path); err != nil {
		return eris.Wrap(err, "xlsx: save workbook")
	}
	return nil
}

func (a *XLSXAdapter) open() (*xlsx.File, *xlsx.Sheet, error) {
	file, err := xlsx.OpenFile(a.path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "xlsx: open file")
	}
	sheet, ok := file.Sheet[a.worksheet]
	if !ok {
		return nil, nil, eris.Errorf("xlsx: sheet %q not found", a.worksheet)
	}
	return file, sheet, nil
}

// ensureWorkbook creates the workbook only when the file does not exist. An
// existing file that cannot be opened, or lacks the worksheet, is an error
// and is left untouched.
func (a *XLSXAdapter) ensureWorkbook() error {
	_, err := os.Stat(a.path)
	switch {
	case err == nil:
		_, _, err := a.open()
		return err
	case !errors.Is(err, fs.ErrNotExist):
		return eris.Wrap(err, "xlsx: stat workbook")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(a.worksheet)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	header := sheet.AddRow()
	for _, name := range CanonicalHeader {
		header.AddCell().SetString(name)
	}
	if err := file.Save(a.path); err != nil {
		return eris.Wrap(err, "xlsx: create workbook")
	}
	a.logger.Info("Ledger workbook created", zap.String("path", a.path))
	return nil
}

// cell returns the cell at 0-based row and col, growing the row as needed.
func cell(sheet *xlsx.Sheet, row, col int) *xlsx.Cell {
	r := sheet.Rows[row]
	for len(r.Cells) <= col {
		r.AddCell()
	}
	return r.Cells[col]
}

func sheetValues(sheet *xlsx.Sheet) [][]string {
	values := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		values = append(values, rowToStrings(row))
	}
	return values
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, c := range row.Cells {
		cells[j] = c.String()
	}
	return cells
}
