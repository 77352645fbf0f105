package adapter

import (
	"strings"

	"dropship-reconciler/internal/features/reconciliation/domain"
)

// Header names of the ledger worksheet, in their canonical column order.
const (
	HeaderMarketOrderNum = "마켓주문번호"
	HeaderStoreOrderNum  = "스토어주문번호"
	HeaderUsername       = "주문자"
	HeaderServiceNum     = "서비스번호"
	HeaderOrderLink      = "주문링크"
	HeaderEditLink       = "수정링크"
	HeaderQuantity       = "수량"
	HeaderServiceName    = "서비스명"
	HeaderOrderTime      = "주문시간"
	HeaderStatus         = "주문상태"
)

// CanonicalHeader is the header row a new ledger is created with.
var CanonicalHeader = []string{
	HeaderMarketOrderNum,
	HeaderStoreOrderNum,
	HeaderUsername,
	HeaderServiceNum,
	HeaderOrderLink,
	HeaderEditLink,
	HeaderQuantity,
	HeaderServiceName,
	HeaderOrderTime,
	HeaderStatus,
}

// firstDataRow is the worksheet row of the first order; row 1 is the header.
const firstDataRow = 2

// Schema maps ledger fields to 0-based column indexes.
type Schema struct {
	columns map[string]int
}

// ParseHeader locates each known column by name. Columns missing from the
// header keep their canonical position.
func ParseHeader(header []string) Schema {
	found := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := found[name]; name != "" && !dup {
			found[name] = i
		}
	}

	columns := make(map[string]int, len(CanonicalHeader))
	for i, name := range CanonicalHeader {
		if idx, ok := found[name]; ok {
			columns[name] = idx
		} else {
			columns[name] = i
		}
	}
	return Schema{columns: columns}
}

// StatusColumn returns the 0-based index of the status column.
func (s Schema) StatusColumn() int {
	return s.columns[HeaderStatus]
}

// Width is the number of cells a row needs to hold every known column.
func (s Schema) Width() int {
	width := 0
	for _, idx := range s.columns {
		if idx+1 > width {
			width = idx + 1
		}
	}
	return width
}

// Row converts raw cell values at the given worksheet position into a LedgerRow.
func (s Schema) Row(values []string, position int) domain.LedgerRow {
	get := func(name string) string {
		idx := s.columns[name]
		if idx >= len(values) {
			return ""
		}
		return strings.TrimSpace(values[idx])
	}

	return domain.LedgerRow{
		MarketOrderNum: get(HeaderMarketOrderNum),
		StoreOrderNum:  get(HeaderStoreOrderNum),
		Username:       get(HeaderUsername),
		ServiceNum:     get(HeaderServiceNum),
		OrderLink:      get(HeaderOrderLink),
		EditLink:       get(HeaderEditLink),
		Quantity:       get(HeaderQuantity),
		ServiceName:    get(HeaderServiceName),
		OrderTime:      get(HeaderOrderTime),
		Status:         domain.LedgerStatus(get(HeaderStatus)),
		Position:       position,
	}
}

// Rows converts a whole worksheet, header included, into ledger rows.
func Rows(values [][]string) (Schema, []domain.LedgerRow) {
	if len(values) == 0 {
		return ParseHeader(nil), []domain.LedgerRow{}
	}

	schema := ParseHeader(values[0])
	rows := make([]domain.LedgerRow, 0, len(values)-1)
	for i, raw := range values[1:] {
		rows = append(rows, schema.Row(raw, i+firstDataRow))
	}
	return schema, rows
}

// Values lays out a row's fields in worksheet column order.
func (s Schema) Values(row domain.LedgerRow) []string {
	out := make([]string, s.Width())
	set := func(name, value string) { out[s.columns[name]] = value }

	set(HeaderMarketOrderNum, row.MarketOrderNum)
	set(HeaderStoreOrderNum, row.StoreOrderNum)
	set(HeaderUsername, row.Username)
	set(HeaderServiceNum, row.ServiceNum)
	set(HeaderOrderLink, row.OrderLink)
	set(HeaderEditLink, row.EditLink)
	set(HeaderQuantity, row.Quantity)
	set(HeaderServiceName, row.ServiceName)
	set(HeaderOrderTime, row.OrderTime)
	set(HeaderStatus, string(row.Status))
	return out
}

// columnLetter converts a 0-based column index to A1 notation letters.
func columnLetter(idx int) string {
	letters := ""
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		letters = string(rune('A'+(n-1)%26)) + letters
	}
	return letters
}
