package service

import (
	"context"
	"errors"
	"sync"

	"dropship-reconciler/internal/features/reconciliation/domain"
)

// fakeProvider answers statuses from a table and records every call.
type fakeProvider struct {
	statuses map[string]string
	errs     map[string]error
	calls    []string
}

func newFakeProvider(statuses map[string]string) *fakeProvider {
	return &fakeProvider{statuses: statuses, errs: map[string]error{}}
}

func (p *fakeProvider) GetStatus(ctx context.Context, orderID string) (*domain.ProviderStatus, error) {
	p.calls = append(p.calls, orderID)
	if err, ok := p.errs[orderID]; ok {
		return nil, err
	}
	status, ok := p.statuses[orderID]
	if !ok {
		return &domain.ProviderStatus{Error: "Incorrect order ID"}, nil
	}
	return &domain.ProviderStatus{Status: status}, nil
}

// fakeLedger is an in-memory worksheet.
type fakeLedger struct {
	mu        sync.Mutex
	rows      []domain.LedgerRow
	getErr    error
	updateErr map[int]error
	gets      int
	updates   []int
}

func newFakeLedger(rows ...domain.LedgerRow) *fakeLedger {
	for i := range rows {
		if rows[i].Position == 0 {
			rows[i].Position = i + 2
		}
	}
	return &fakeLedger{rows: rows, updateErr: map[int]error{}}
}

func (l *fakeLedger) GetRows(ctx context.Context) ([]domain.LedgerRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gets++
	if l.getErr != nil {
		return nil, l.getErr
	}
	out := make([]domain.LedgerRow, len(l.rows))
	copy(out, l.rows)
	return out, nil
}

func (l *fakeLedger) UpdateStatusCell(ctx context.Context, position int, status domain.LedgerStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, ok := l.updateErr[position]; ok {
		return err
	}
	for i := range l.rows {
		if l.rows[i].Position == position {
			l.rows[i].Status = status
			l.updates = append(l.updates, position)
			return nil
		}
	}
	return errors.New("row out of range")
}

func (l *fakeLedger) status(position int) domain.LedgerStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.rows {
		if r.Position == position {
			return r.Status
		}
	}
	return ""
}

// fakeMarker counts checkbox selections.
type fakeMarker struct {
	selected int
	err      error
}

func (m *fakeMarker) Select(ctx context.Context) error {
	m.selected++
	return m.err
}

// fakeBulk records the calls made on the bulk ship control.
type fakeBulk struct {
	calls       []string
	activateErr error
	confirmErrs []error
}

func (b *fakeBulk) Activate(ctx context.Context) error {
	b.calls = append(b.calls, "activate")
	return b.activateErr
}

func (b *fakeBulk) Confirm(ctx context.Context) error {
	idx := 0
	for _, c := range b.calls {
		if c == "confirm" {
			idx++
		}
	}
	b.calls = append(b.calls, "confirm")
	if idx < len(b.confirmErrs) {
		return b.confirmErrs[idx]
	}
	return nil
}

func inTransit(market, store string) domain.LedgerRow {
	return domain.LedgerRow{MarketOrderNum: market, StoreOrderNum: store, Status: domain.LedgerStatusInTransit}
}

func scraped(nums ...string) []domain.ScrapedOrder {
	orders := make([]domain.ScrapedOrder, 0, len(nums))
	for _, n := range nums {
		orders = append(orders, domain.ScrapedOrder{MarketOrderNum: n, Marker: &fakeMarker{}})
	}
	return orders
}

func marketNums(orders []domain.ScrapedOrder) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.MarketOrderNum)
	}
	return out
}
