package session

import (
	"context"
	"sync"
	"time"
)

// Store holds at most one conversation state per identity.
//
// Thread-safety model:
//   - Get/Put/Delete: safe from any goroutine
//   - Lock(identity): serializes event handling per identity, so two
//     concurrent events from the same identity never race on one state slot
//   - Run(): janitor loop, call from one goroutine
type Store struct {
	mu      sync.Mutex
	states  map[string]*entry
	locks   map[string]*sync.Mutex
	idleTTL time.Duration
}

type entry struct {
	state   State
	touched time.Time
}

func New(idleTTL time.Duration) *Store {
	return &Store{
		states:  make(map[string]*entry),
		locks:   make(map[string]*sync.Mutex),
		idleTTL: idleTTL,
	}
}

// Lock acquires the per-identity handling lock and returns the unlock func.
func (s *Store) Lock(identity string) func() {
	s.mu.Lock()
	l, ok := s.locks[identity]
	if !ok {
		l = &sync.Mutex{}
		s.locks[identity] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Store) Get(identity string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.states[identity]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// Put stores the state and refreshes its idle clock.
func (s *Store) Put(identity string, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[identity] = &entry{state: st, touched: time.Now()}
}

func (s *Store) Delete(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, identity)
}

// Run expires states idle past the TTL until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	if s.idleTTL <= 0 {
		return
	}
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(now)
		}
	}
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.states {
		if now.Sub(e.touched) > s.idleTTL {
			delete(s.states, id)
		}
	}
}
