package adapter

import (
	"context"
	"sync"

	"dropship-reconciler/internal/features/reconciliation/domain"
)

// MemoryRunRepository keeps the last report in process memory. It is used
// when no Redis URL is configured.
type MemoryRunRepository struct {
	mu   sync.RWMutex
	last *domain.RunReport
}

// NewMemoryRunRepository creates a new MemoryRunRepository.
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{}
}

// Save implements ports.RunRepository.
func (r *MemoryRunRepository) Save(ctx context.Context, report *domain.RunReport) error {
	cp := *report
	cp.Completed = append([]string(nil), report.Completed...)

	r.mu.Lock()
	r.last = &cp
	r.mu.Unlock()
	return nil
}

// Last implements ports.RunRepository.
func (r *MemoryRunRepository) Last(ctx context.Context) (*domain.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil, nil
	}
	cp := *r.last
	return &cp, nil
}

// MemoryRunLock is a process-local ports.RunLock.
type MemoryRunLock struct {
	mu   sync.Mutex
	held bool
}

// NewMemoryRunLock creates a new MemoryRunLock.
func NewMemoryRunLock() *MemoryRunLock {
	return &MemoryRunLock{}
}

// Acquire implements ports.RunLock.
func (l *MemoryRunLock) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

// Release implements ports.RunLock.
func (l *MemoryRunLock) Release(ctx context.Context) error {
	l.mu.Lock()
	l.held = false
	l.mu.Unlock()
	return nil
}
