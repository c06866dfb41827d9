package memory

import (
	"context"
	"sync"
	"time"

	"contact-form-service/internal/domain"
	"contact-form-service/pkg/apperror"
	"contact-form-service/pkg/logger"
)

// formEntry guards one session so its events run one at a time
type formEntry struct {
	mu      sync.Mutex
	session domain.FormSession
	deleted bool
}

type FormRepository struct {
	mu      sync.RWMutex
	entries map[string]*formEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewFormRepository keeps form sessions in process memory. Sessions idle for
// longer than ttl are treated as gone and removed by Sweep.
func NewFormRepository(ttl time.Duration) *FormRepository {
	return &FormRepository{
		entries: make(map[string]*formEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (r *FormRepository) Create(ctx context.Context, session *domain.FormSession) error {
	if session == nil || session.ID == "" {
		return apperror.BadRequest("Form session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[session.ID]; exists {
		return apperror.Conflict("Form session already exists")
	}
	r.entries[session.ID] = &formEntry{session: copySession(*session)}
	return nil
}

func (r *FormRepository) GetByID(ctx context.Context, id string) (*domain.FormSession, error) {
	entry := r.lookup(id)
	if entry == nil {
		return nil, notFound()
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.deleted || r.expired(entry) {
		return nil, notFound()
	}
	s := copySession(entry.session)
	return &s, nil
}

func (r *FormRepository) Update(ctx context.Context, id string, fn func(domain.FormState) domain.FormState) (*domain.FormSession, error) {
	entry := r.lookup(id)
	if entry == nil {
		return nil, notFound()
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.deleted || r.expired(entry) {
		return nil, notFound()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry.session.State = fn(entry.session.State)
	entry.session.UpdatedAt = r.now()

	s := copySession(entry.session)
	return &s, nil
}

func (r *FormRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	entry, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if !ok {
		return notFound()
	}

	entry.mu.Lock()
	entry.deleted = true
	entry.mu.Unlock()
	return nil
}

// Sweep removes expired sessions and reports how many were dropped
func (r *FormRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.entries {
		entry.mu.Lock()
		if r.expired(entry) {
			entry.deleted = true
			delete(r.entries, id)
			removed++
		}
		entry.mu.Unlock()
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done
func (r *FormRepository) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					logger.Log.Debug("Expired contact form sessions removed", "count", n)
				}
			}
		}
	}()
}

// Len returns the number of stored sessions, expired ones included
func (r *FormRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *FormRepository) lookup(id string) *formEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

// expired must be called with entry.mu held
func (r *FormRepository) expired(entry *formEntry) bool {
	return r.ttl > 0 && r.now().Sub(entry.session.UpdatedAt) > r.ttl
}

func notFound() error {
	return apperror.NotFound("Form session not found or expired")
}

// copySession detaches the caller from stored maps and pointers
func copySession(s domain.FormSession) domain.FormSession {
	s.State.Errors = s.State.Errors.Clone()
	if s.State.Submitted != nil {
		snapshot := *s.State.Submitted
		s.State.Submitted = &snapshot
	}
	return s
}
