package usecase

import (
	"fmt"
	"sync"

	"DisruptionMonitor/internal/domain"
)

// Registry keeps the mapping from postal codes to their coordinators. It is
// passed explicitly to whatever composes multiple locations (web adapter,
// calendar projector); there is no ambient global state.
type Registry struct {
	mu           sync.RWMutex
	coordinators map[string]*RefreshCoordinator
	order        []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{coordinators: map[string]*RefreshCoordinator{}}
}

// Register adds or replaces the coordinator for its postal code.
func (r *Registry) Register(c *RefreshCoordinator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Location().PostalCode
	if _, exists := r.coordinators[key]; !exists {
		r.order = append(r.order, key)
	}
	r.coordinators[key] = c
}

// Resolve returns the coordinator for a postal code or an error if absent.
func (r *Registry) Resolve(postalCode string) (*RefreshCoordinator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.coordinators[postalCode]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("no coordinator registered for %s", postalCode)
}

// All returns the coordinators in registration order.
func (r *Registry) All() []*RefreshCoordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*RefreshCoordinator, 0, len(r.order))
	for _, key := range r.order {
		all = append(all, r.coordinators[key])
	}
	return all
}

// Snapshots returns the latest cached result of every coordinator, in
// registration order. Implements the calendar projector's source contract.
func (r *Registry) Snapshots() []domain.FetchResult {
	all := r.All()
	snapshots := make([]domain.FetchResult, 0, len(all))
	for _, c := range all {
		snapshots = append(snapshots, c.CurrentResult())
	}
	return snapshots
}

// Ready reports whether every registered coordinator has completed at least
// one successful refresh.
func (r *Registry) Ready() bool {
	for _, c := range r.All() {
		if !c.Ready() {
			return false
		}
	}
	return true
}
