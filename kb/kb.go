package kb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/drwave-www/waveengine/model"
)

// ChangeType indicates what kind of change happened in the store.
type ChangeType int

const (
	ChangeEventAdded ChangeType = iota
	ChangeEventRemoved
)

// Change is emitted to subscribers when the event catalog changes.
type Change struct {
	Type       ChangeType
	Definition *model.EventDefinition
}

// EventStore is an in-memory, thread-safe catalog of event definitions.
// Observers look events up by ID and may subscribe to catalog changes;
// definitions themselves are immutable once stored.
type EventStore struct {
	mu     sync.RWMutex
	events map[string]*model.EventDefinition
	subs   []func(Change)
}

// NewEventStore constructs an empty store.
func NewEventStore() *EventStore {
	return &EventStore{
		events: make(map[string]*model.EventDefinition),
	}
}

// AddEvent adds a new definition. It returns an error if the ID is empty,
// already present, or the definition has no area.
func (s *EventStore) AddEvent(e *model.EventDefinition) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("event definition requires a non-empty ID")
	}
	if e.Area == nil {
		return fmt.Errorf("event %q has no area", e.ID)
	}

	s.mu.Lock()
	if _, exists := s.events[e.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("event with ID %q already exists", e.ID)
	}
	s.events[e.ID] = e
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Change{Type: ChangeEventAdded, Definition: e})
	}
	return nil
}

// GetEvent returns the definition with the given ID, or nil if not found.
func (s *EventStore) GetEvent(id string) *model.EventDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events[id]
}

// RemoveEvent deletes a definition and notifies subscribers. Removing an
// unknown ID is a no-op.
func (s *EventStore) RemoveEvent(id string) {
	s.mu.Lock()
	e, ok := s.events[id]
	if ok {
		delete(s.events, id)
	}
	subs := s.subs
	s.mu.Unlock()

	if !ok {
		return
	}
	for _, fn := range subs {
		fn(Change{Type: ChangeEventRemoved, Definition: e})
	}
}

// ListEvents returns a snapshot of all definitions, ordered by ID.
func (s *EventStore) ListEvents() []*model.EventDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*model.EventDefinition, 0, len(s.events))
	for _, e := range s.events {
		res = append(res, e)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Subscribe registers a callback invoked on every catalog change. The
// callback runs on the mutating goroutine and must not call back into the
// store.
func (s *EventStore) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
