// internal/alert/store.go
package alert

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
)

// Store holds the alert lifecycle: CREATED → RESOLVED (a purchase order was
// created for the product, or an operator dismissed it) and CREATED → EXPIRED
// (TTL passed). Expired alerts are dropped on read.
type Store interface {
	// Save inserts alerts, replacing any unresolved alert for the same product.
	Save(ctx context.Context, alerts []*domain.Alert) error

	// List returns unexpired alerts sorted ascending by priority.
	// unresolvedOnly filters out resolved ones.
	List(ctx context.Context, unresolvedOnly bool) ([]*domain.Alert, error)

	// Resolve marks the alert resolved. Unknown ids yield domain.NotFoundError.
	Resolve(ctx context.Context, alertID string) error

	// ResolveByProduct resolves all unresolved alerts for a product. Called
	// when a purchase order is created for it. Returns how many were resolved.
	ResolveByProduct(ctx context.Context, productID int64) (int, error)
}

// memoryStore is the default in-process store. Alerts are intentionally not
// durable: a restart rescans the catalog and regenerates them.
type memoryStore struct {
	mu     sync.RWMutex
	alerts map[string]*domain.Alert
	now    func() time.Time
}

func NewMemoryStore() Store {
	return &memoryStore{
		alerts: make(map[string]*domain.Alert),
		now:    time.Now,
	}
}

func (s *memoryStore) Save(_ context.Context, alerts []*domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range alerts {
		for id, existing := range s.alerts {
			if existing.ProductID == a.ProductID && !existing.Resolved {
				delete(s.alerts, id)
			}
		}
		cp := *a
		s.alerts[a.ID] = &cp
	}

	return nil
}

func (s *memoryStore) List(_ context.Context, unresolvedOnly bool) ([]*domain.Alert, error) {
	now := s.now()

	s.mu.Lock()
	for id, a := range s.alerts {
		if a.Expired(now) {
			delete(s.alerts, id)
		}
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if unresolvedOnly && a.Resolved {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (s *memoryStore) Resolve(_ context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[alertID]
	if !ok {
		return &domain.NotFoundError{Entity: "alert", Key: alertID}
	}

	now := s.now()
	a.Resolved = true
	a.ResolvedAt = &now
	return nil
}

func (s *memoryStore) ResolveByProduct(_ context.Context, productID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int
	for _, a := range s.alerts {
		if a.ProductID == productID && !a.Resolved {
			a.Resolved = true
			a.ResolvedAt = &now
			n++
		}
	}

	return n, nil
}
