package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryLedger keeps submissions in process memory; records are lost on restart
type MemoryLedger struct {
	mu          sync.RWMutex
	submissions map[string]Submission
}

// NewMemoryLedger creates an empty in-memory ledger
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{submissions: make(map[string]Submission)}
}

// Save stores s, replacing any record with the same id
func (l *MemoryLedger) Save(_ context.Context, s Submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submissions[s.ID] = s
	return nil
}

// Get returns the submission with id or ErrNotFound
func (l *MemoryLedger) Get(_ context.Context, id string) (Submission, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.submissions[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return s, nil
}

// ListOrphaned returns orphaned submissions, newest first. limit <= 0 means no limit.
func (l *MemoryLedger) ListOrphaned(_ context.Context, limit int) ([]Submission, error) {
	l.mu.RLock()
	res := make([]Submission, 0)
	for _, s := range l.submissions {
		if s.Orphaned() {
			res = append(res, s)
		}
	}
	l.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// Close is a no-op
func (l *MemoryLedger) Close() error { return nil }
