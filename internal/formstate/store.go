package formstate

import "sync"

// Store is an injectable in-memory container for one kiosk session's
// FormState. All mutation goes through UpdateSection, which replaces the
// named section wholesale and synchronously notifies subscribers before
// returning, so a persistence subscriber completes its write before any
// route transition built on top of the update.
//
// Only one kiosk surface is active per session, so writes are effectively
// single-writer; the mutex guards against incidental concurrent reads.
type Store struct {
	mu    sync.RWMutex
	state FormState
	subs  []func(FormState)
}

// NewStore returns a Store holding the empty aggregate.
func NewStore() *Store {
	return &Store{}
}

// NewStoreFrom returns a Store rehydrated from a previously persisted state.
func NewStoreFrom(state FormState) *Store {
	return &Store{state: state}
}

// Read returns the current record for a section, or the section's empty
// record if it was never set.
func (s *Store) Read(section Section) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Record(section)
}

// Snapshot returns a copy of the whole aggregate.
func (s *Store) Snapshot() FormState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// UpdateSection replaces the named section's record with record and notifies
// subscribers with the resulting aggregate before returning. Callers wanting
// a partial update must read, modify, and submit the full record themselves.
func (s *Store) UpdateSection(section Section, record any) error {
	s.mu.Lock()
	if err := s.state.setRecord(section, record); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.state
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return nil
}

// Clear resets the aggregate to the empty form and notifies subscribers.
// Persistence subscribers treat the empty aggregate as key removal, so a
// cleared form leaves nothing behind in the session store.
func (s *Store) Clear() {
	s.mu.Lock()
	s.state = FormState{}
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(FormState{})
	}
}

// Subscribe registers fn to run synchronously after every state change.
func (s *Store) Subscribe(fn func(FormState)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}
