package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetDelete(t *testing.T) {
	s := New(time.Minute)

	_, ok := s.Get("u1")
	assert.False(t, ok)

	s.Put("u1", State{Step: StepOrderAddress})
	st, ok := s.Get("u1")
	require.True(t, ok)
	assert.Equal(t, StepOrderAddress, st.Step)

	// one slot per identity: a second Put replaces
	s.Put("u1", State{Step: StepOrderPhone, Address: "Main St 1"})
	st, ok = s.Get("u1")
	require.True(t, ok)
	assert.Equal(t, StepOrderPhone, st.Step)
	assert.Equal(t, "Main St 1", st.Address)

	s.Delete("u1")
	_, ok = s.Get("u1")
	assert.False(t, ok)
}

func TestStore_IdentitiesAreIndependent(t *testing.T) {
	s := New(time.Minute)
	s.Put("u1", State{Step: StepOrderAddress})
	s.Put("u2", State{Step: StepProductName})

	s.Delete("u1")
	_, ok := s.Get("u2")
	assert.True(t, ok)
}

func TestStore_SweepExpiresIdleStates(t *testing.T) {
	s := New(time.Minute)
	s.Put("idle", State{Step: StepOrderAddress})
	s.Put("fresh", State{Step: StepOrderAddress})

	// age only the idle entry
	s.mu.Lock()
	s.states["idle"].touched = time.Now().Add(-2 * time.Minute)
	s.mu.Unlock()

	s.sweep(time.Now())

	_, ok := s.Get("idle")
	assert.False(t, ok, "idle state expired")
	_, ok = s.Get("fresh")
	assert.True(t, ok, "fresh state kept")
}

func TestStore_LockSerializesPerIdentity(t *testing.T) {
	s := New(time.Minute)

	const workers = 16
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock("u1")
			defer unlock()
			counter++ // would race without the per-identity lock
		}()
	}
	wg.Wait()
	assert.Equal(t, workers, counter)
}

func TestStore_LockDoesNotBlockOtherIdentities(t *testing.T) {
	s := New(time.Minute)

	unlock := s.Lock("u1")
	defer unlock()

	done := make(chan struct{})
	go func() {
		u := s.Lock("u2")
		u()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on u2 blocked by lock on u1")
	}
}
