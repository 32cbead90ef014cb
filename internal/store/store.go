// Package store keeps the current offer, lead set and last scoring result in
// memory and allows one scoring run at a time.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/spigell/lead-scorer/internal/leads"
	"github.com/spigell/lead-scorer/internal/scoring"
)

// ErrRunInProgress is returned by Score while another run holds the store.
var ErrRunInProgress = errors.New("a scoring run is already in progress")

// Runner executes a scoring run. *scoring.Scorer satisfies it.
type Runner interface {
	Run(ctx context.Context, input []leads.Lead, offer *leads.Offer) ([]scoring.ScoredLead, error)
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	offer   *leads.Offer
	leads   []leads.Lead
	results []scoring.ScoredLead
	running bool
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// SetOffer replaces the current offer.
func (s *Store) SetOffer(offer leads.Offer) {
	offer.ValueProps = slices.Clone(offer.ValueProps)
	offer.IdealUseCases = slices.Clone(offer.IdealUseCases)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.offer = &offer
}

// Offer returns a copy of the current offer, or nil if none was set.
func (s *Store) Offer() *leads.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.offer == nil {
		return nil
	}
	offer := *s.offer
	offer.ValueProps = slices.Clone(offer.ValueProps)
	offer.IdealUseCases = slices.Clone(offer.IdealUseCases)
	return &offer
}

// SetLeads replaces the current lead set.
func (s *Store) SetLeads(input []leads.Lead) {
	cp := slices.Clone(input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads = cp
}

// Leads returns a copy of the current lead set.
func (s *Store) Leads() []leads.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.leads)
}

// Results returns a copy of the last successful run's results. ok is false
// when no run has completed yet.
func (s *Store) Results() (results []scoring.ScoredLead, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.results == nil {
		return nil, false
	}
	return slices.Clone(s.results), true
}

// Running reports whether a scoring run is in progress.
func (s *Store) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Score runs runner against a snapshot of the current offer and leads. Results
// replace the stored ones only when the run succeeds. A second call while a
// run is in progress fails with ErrRunInProgress.
func (s *Store) Score(ctx context.Context, runner Runner) ([]scoring.ScoredLead, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.running = true

	var offer *leads.Offer
	if s.offer != nil {
		cp := *s.offer
		offer = &cp
	}
	input := slices.Clone(s.leads)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	results, err := runner.Run(ctx, input, offer)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.results = slices.Clone(results)
	if s.results == nil {
		s.results = []scoring.ScoredLead{}
	}
	s.mu.Unlock()

	return results, nil
}
