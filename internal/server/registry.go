package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
)

// Registry holds the running flows of the service. When full, closed flows
// are evicted to make room before a new flow is refused
type Registry struct {
	flows map[api.FlowID]*wizard.Flow
	max   int
	mu    sync.Mutex
}

var (
	ErrTooManyFlows = errors.New("too many active wizards")
	ErrFlowNotFound = errors.New("wizard not found")
	ErrFlowExists   = errors.New("wizard already exists")
)

// NewRegistry creates a Registry holding at most limit flows
func NewRegistry(limit int) *Registry {
	return &Registry{
		flows: map[api.FlowID]*wizard.Flow{},
		max:   limit,
	}
}

// Add registers a flow
func (r *Registry) Add(f *wizard.Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.flows[f.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrFlowExists, f.ID())
	}
	if len(r.flows) >= r.max {
		r.evictClosed()
	}
	if len(r.flows) >= r.max {
		return ErrTooManyFlows
	}
	r.flows[f.ID()] = f
	return nil
}

// Get returns a registered flow
func (r *Registry) Get(id api.FlowID) (*wizard.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.flows[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, id)
}

// Remove forgets a flow
func (r *Registry) Remove(id api.FlowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, id)
}

// Len returns the number of registered flows
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

func (r *Registry) evictClosed() {
	for id, f := range r.flows {
		if f.State().Closed {
			delete(r.flows, id)
		}
	}
}
