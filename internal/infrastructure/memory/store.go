package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-email-otp/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// CodeStore keeps pending codes in process memory, keyed by identifier.
// Entries outlive their ExpiresAt by the retention window so a late verify
// can still be told the code expired; after that the janitor drops them.
type CodeStore struct {
	c         *gocache.Cache
	retention time.Duration
	now       func() time.Time
}

// Option customizes a CodeStore.
type Option func(*CodeStore)

// WithClock overrides the time source used to compute ExpiresAt.
func WithClock(now func() time.Time) Option {
	return func(s *CodeStore) { s.now = now }
}

func NewCodeStore(retention time.Duration, opts ...Option) *CodeStore {
	if retention < 0 {
		retention = 0
	}
	s := &CodeStore{
		c:         gocache.New(gocache.NoExpiration, time.Minute),
		retention: retention,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Put stores code for identifier, replacing any previous one, and returns the written record.
func (s *CodeStore) Put(_ context.Context, identifier, code string, ttl time.Duration) (domain.PendingCode, error) {
	p := domain.PendingCode{
		Identifier: identifier,
		Code:       code,
		ExpiresAt:  s.now().Add(ttl),
	}
	keep := ttl + s.retention
	if keep <= 0 {
		// zero would mean "cache default", which is never
		keep = time.Nanosecond
	}
	s.c.Set(identifier, p, keep)
	return p, nil
}

func (s *CodeStore) Get(_ context.Context, identifier string) (*domain.PendingCode, error) {
	v, ok := s.c.Get(identifier)
	if !ok {
		return nil, fmt.Errorf("pending code not found: %w", domain.ErrNotFound)
	}
	p, ok := v.(domain.PendingCode)
	if !ok {
		return nil, fmt.Errorf("pending code not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

// Remove deletes the record for identifier. Removing a missing record is not an error.
func (s *CodeStore) Remove(_ context.Context, identifier string) error {
	s.c.Delete(identifier)
	return nil
}
