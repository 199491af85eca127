// Package memory is the in-memory source store used by unit tests and the
// single-process deployment.
package memory

import (
	"context"
	"sync"

	"helix/internal/dna"
	"helix/internal/player"
	id "helix/pkg/domain"
)

type Store struct {
	mu     sync.RWMutex
	drills map[id.UserID][]dna.DrillSample
	inputs map[id.UserID]map[player.Axis]dna.AxisInput
}

func New() *Store {
	return &Store{
		drills: make(map[id.UserID][]dna.DrillSample),
		inputs: make(map[id.UserID]map[player.Axis]dna.AxisInput),
	}
}

func (s *Store) AppendDrill(_ context.Context, sample dna.DrillSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drills[sample.UserID] = append(s.drills[sample.UserID], sample)
	return nil
}

// RecentDrills returns up to limit samples, most recent first. Appends arrive
// in chronological order, so the tail of the slice is the window.
func (s *Store) RecentDrills(_ context.Context, userID id.UserID, limit int) ([]dna.DrillSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.drills[userID]
	if limit > len(all) {
		limit = len(all)
	}
	out := make([]dna.DrillSample, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (s *Store) SetAxisInput(_ context.Context, input dna.AxisInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byAxis, ok := s.inputs[input.UserID]
	if !ok {
		byAxis = make(map[player.Axis]dna.AxisInput)
		s.inputs[input.UserID] = byAxis
	}
	if input.Secondary != nil {
		v := *input.Secondary
		input.Secondary = &v
	}
	byAxis[input.Axis] = input
	return nil
}

func (s *Store) AxisInputs(_ context.Context, userID id.UserID) (map[player.Axis]dna.AxisInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[player.Axis]dna.AxisInput, len(s.inputs[userID]))
	for axis, in := range s.inputs[userID] {
		if in.Secondary != nil {
			v := *in.Secondary
			in.Secondary = &v
		}
		out[axis] = in
	}
	return out, nil
}
