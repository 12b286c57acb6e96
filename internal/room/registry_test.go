package room

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeLifecycle struct {
	mu      sync.Mutex
	started []string
	ended   []string
}

func (f *fakeLifecycle) SessionStarted(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, name)
}

func (f *fakeLifecycle) SessionEnded(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = append(f.ended, name)
}

func TestRegistry_CreateOrGetIdempotent(t *testing.T) {
	r := NewRegistry(nil)

	s1 := r.CreateOrGet("standup", "alice")
	s2 := r.CreateOrGet("standup", "bob")

	if s1 != s2 {
		t.Error("expected both calls to return the same session")
	}
	if s1.CreatedBy != "alice" {
		t.Errorf("expected creator 'alice', got %s", s1.CreatedBy)
	}
	if s1.Status() != StatusActive {
		t.Errorf("expected active session, got %s", s1.Status())
	}
}

func TestRegistry_ConcurrentCreateOrGetSingleSession(t *testing.T) {
	r := NewRegistry(nil)

	const n = 20
	sessions := make([]*Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = r.CreateOrGet("standup", "racer")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("concurrent CreateOrGet produced distinct sessions")
		}
	}
}

func TestRegistry_JoinEndedSessionRejected(t *testing.T) {
	r := NewRegistry(nil)
	s := r.CreateOrGet("standup", "alice")

	if _, err := r.End(s.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Join(s, "late-joiner"); !errors.Is(err, ErrSessionInactive) {
		t.Errorf("expected ErrSessionInactive, got %v", err)
	}
}

func TestRegistry_CreateAfterEndYieldsNewSession(t *testing.T) {
	r := NewRegistry(nil)
	s1 := r.CreateOrGet("standup", "alice")
	if _, err := r.End(s1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s2 := r.CreateOrGet("standup", "bob")
	if s2 == s1 {
		t.Error("expected a fresh session after end")
	}
	if s2.ID == s1.ID {
		t.Error("expected a fresh session id after end")
	}
}

func TestRegistry_SessionForTracksMembership(t *testing.T) {
	r := NewRegistry(nil)
	s := r.CreateOrGet("standup", "alice")
	p, err := r.Join(s, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := r.SessionFor(p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != s {
		t.Error("SessionFor returned the wrong session")
	}

	byID, err := r.Get(s.ID)
	if err != nil || byID != s {
		t.Errorf("Get(%s) = %v, %v", s.ID, byID, err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}

	if err := r.Leave(s, p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.SessionFor(p.ID); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound after leave, got %v", err)
	}
}

func TestRegistry_LastLeaveEndsSession(t *testing.T) {
	lc := &fakeLifecycle{}
	r := NewRegistry(lc)
	s := r.CreateOrGet("standup", "alice")

	p1, _ := r.Join(s, "alice")
	p2, _ := r.Join(s, "bob")

	if err := r.Leave(s, p1.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status() != StatusActive {
		t.Error("session ended while a participant remained")
	}

	if err := r.Leave(s, p2.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status() != StatusEnded {
		t.Error("expected session to end when the last participant left")
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if len(lc.started) != 1 || len(lc.ended) != 1 {
		t.Errorf("expected 1 start and 1 end notification, got %d/%d", len(lc.started), len(lc.ended))
	}
}

func TestRegistry_LeaveUnknownParticipant(t *testing.T) {
	r := NewRegistry(nil)
	s := r.CreateOrGet("standup", "alice")

	if err := r.Leave(s, "nobody"); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("expected ErrParticipantNotFound, got %v", err)
	}
}

// stallLifecycle blocks inside the selected notification for the named
// session until released, so tests can hold a sink call mid-flight.
type stallLifecycle struct {
	slowName   string
	stallStart bool
	stallEnd   bool
	entered    chan struct{}
	release    chan struct{}
}

func (f *stallLifecycle) SessionStarted(id, name string) {
	if f.stallStart && name == f.slowName {
		close(f.entered)
		<-f.release
	}
}

func (f *stallLifecycle) SessionEnded(id, name string) {
	if f.stallEnd && name == f.slowName {
		close(f.entered)
		<-f.release
	}
}

func TestRegistry_SlowStartNotificationDoesNotBlockRegistry(t *testing.T) {
	lc := &stallLifecycle{
		slowName:   "room-a",
		stallStart: true,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	r := NewRegistry(lc)

	created := make(chan struct{})
	go func() {
		r.CreateOrGet("room-a", "alice")
		close(created)
	}()
	<-lc.entered

	// The sink call for room-a is still in flight; unrelated sessions must
	// not wait for it.
	done := make(chan struct{})
	go func() {
		s := r.CreateOrGet("room-b", "bob")
		if _, err := r.Join(s, "bob"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if _, err := r.Get(s.ID); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("registry operations blocked behind a slow lifecycle sink")
	}

	close(lc.release)
	<-created
}

func TestRegistry_SlowEndNotificationDoesNotBlockRegistry(t *testing.T) {
	lc := &stallLifecycle{
		slowName: "room-a",
		stallEnd: true,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	r := NewRegistry(lc)
	s := r.CreateOrGet("room-a", "alice")

	ended := make(chan struct{})
	go func() {
		if _, err := r.End(s.ID); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		close(ended)
	}()
	<-lc.entered

	done := make(chan struct{})
	go func() {
		r.CreateOrGet("room-b", "bob")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("CreateOrGet blocked behind a slow end notification")
	}

	close(lc.release)
	<-ended
}

func TestRegistry_EndIsIdempotent(t *testing.T) {
	lc := &fakeLifecycle{}
	r := NewRegistry(lc)
	s := r.CreateOrGet("standup", "alice")

	if _, err := r.End(s.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.End(s.ID); err != nil {
		t.Fatalf("second end failed: %v", err)
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if len(lc.ended) != 1 {
		t.Errorf("expected exactly 1 end notification, got %d", len(lc.ended))
	}
}
