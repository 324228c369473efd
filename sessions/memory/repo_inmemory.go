package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-frontdoor/sessions"
)

var _ sessions.Repo = (*InMemorySessionRepo)(nil)

type entry struct {
	record    sessions.Record
	expiresAt time.Time
}

// InMemorySessionRepo is an in-memory implementation of sessions.Repo with a sliding inactivity timeout
type InMemorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]entry // browserID -> record
	timeout  time.Duration
	nowTime  func() time.Time
}

// Option configures an InMemorySessionRepo
type Option func(*InMemorySessionRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(r *InMemorySessionRepo) {
		r.nowTime = nowFunc
	}
}

// NewInMemorySessionRepo creates a repository whose records expire after timeout without activity
func NewInMemorySessionRepo(timeout time.Duration, options ...Option) *InMemorySessionRepo {
	r := &InMemorySessionRepo{
		sessions: make(map[string]entry),
		timeout:  timeout,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Get retrieves the record for a browser and extends its expiry
func (r *InMemorySessionRepo) Get(ctx context.Context, browserID string) (sessions.Record, error) {
	if browserID == "" {
		return sessions.Record{}, fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[browserID]
	if !ok {
		return sessions.Record{}, nil
	}

	now := r.nowTime()
	if !now.Before(e.expiresAt) {
		delete(r.sessions, browserID)
		return sessions.Record{}, nil
	}

	e.expiresAt = now.Add(r.timeout)
	r.sessions[browserID] = e
	return e.record, nil
}

// Put creates, replaces or (for an empty record) deletes the record for a browser
func (r *InMemorySessionRepo) Put(ctx context.Context, browserID string, record sessions.Record) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if record.Empty() {
		delete(r.sessions, browserID)
		return nil
	}

	r.sessions[browserID] = entry{
		record:    record,
		expiresAt: r.nowTime().Add(r.timeout),
	}
	return nil
}

// Delete removes the record for a browser
func (r *InMemorySessionRepo) Delete(ctx context.Context, browserID string) error {
	if browserID == "" {
		return fmt.Errorf("browserID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, browserID) // Already doesn't exist, no error
	return nil
}

// DeleteExpired removes every expired record and returns how many were removed
func (r *InMemorySessionRepo) DeleteExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowTime()
	removed := 0
	for id, e := range r.sessions {
		if !now.Before(e.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanup removes expired records every interval until ctx is done
func (r *InMemorySessionRepo) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.DeleteExpired()
			}
		}
	}()
}

// Len returns the number of stored records, expired or not
func (r *InMemorySessionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
